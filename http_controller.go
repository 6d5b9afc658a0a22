package landing

import (
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"
)

const (
	formIDKey = "form_id"
	actionKey = "action"
	stepKey   = "step"

	ActionContinue = "continue"
	ActionBack     = "back"
	ActionSubmit   = "submit"
)

// RegisterLandingRoutes builds the default route table against the
// controller views and mounts it on app. A broken table is returned as is
// and should stop the process.
func RegisterLandingRoutes[T any](app router.Router[T], opts ...ControllerOption) (*LandingController, error) {
	controller := NewLandingController(opts...)

	nodes, err := BuildRouteTree(DefaultRouteTable(controller.Routes), controller.ViewRegistry())
	if err != nil {
		return nil, err
	}

	MountRouteTree(app, nodes, controller.Gate().Middleware())

	return controller, nil
}

type ControllerRoutes struct {
	Home      string
	Login     string
	Signup    string
	Resend    string
	Logout    string
	Dashboard string
}

type ControllerViews struct {
	Home          string
	Login         string
	Signup        string
	VerifyEmail   string
	LoginRequired string
	Dashboard     string
	Error         string
}

type LandingController struct {
	Debug        bool
	Logger       Logger
	Gateway      AuthGateway
	Cooldown     *ResendCooldown
	Session      *SessionCookies
	Routes       *ControllerRoutes
	Views        *ControllerViews
	ErrorHandler router.ErrorHandler
	guard        *InflightGuard
	featureGate  gate.FeatureGate
	newFormID    func() string
}

type ControllerOption func(*LandingController) *LandingController

func WithGateway(gateway AuthGateway) ControllerOption {
	return func(c *LandingController) *LandingController {
		c.Gateway = gateway
		return c
	}
}

func WithResendCooldown(cooldown *ResendCooldown) ControllerOption {
	return func(c *LandingController) *LandingController {
		c.Cooldown = cooldown
		return c
	}
}

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *LandingController) *LandingController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithSessionCookies(session *SessionCookies) ControllerOption {
	return func(c *LandingController) *LandingController {
		if session != nil {
			c.Session = session
		}
		return c
	}
}

// WithRoutes overrides the non empty paths in routes
func WithRoutes(routes ControllerRoutes) ControllerOption {
	return func(c *LandingController) *LandingController {
		setIfNotEmpty(&c.Routes.Home, routes.Home)
		setIfNotEmpty(&c.Routes.Login, routes.Login)
		setIfNotEmpty(&c.Routes.Signup, routes.Signup)
		setIfNotEmpty(&c.Routes.Resend, routes.Resend)
		setIfNotEmpty(&c.Routes.Logout, routes.Logout)
		setIfNotEmpty(&c.Routes.Dashboard, routes.Dashboard)
		return c
	}
}

func WithErrorHandler(handler router.ErrorHandler) ControllerOption {
	return func(c *LandingController) *LandingController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func WithFeatureGate(featureGate gate.FeatureGate) ControllerOption {
	return func(c *LandingController) *LandingController {
		c.featureGate = featureGate
		return c
	}
}

func WithDebug(debug bool) ControllerOption {
	return func(c *LandingController) *LandingController {
		c.Debug = debug
		return c
	}
}

func NewLandingController(opts ...ControllerOption) *LandingController {
	c := &LandingController{
		Logger:  defLogger{},
		Session: NewSessionCookies(DefaultSessionCookie, false),
		Routes: &ControllerRoutes{
			Home:      "/",
			Login:     "/login",
			Signup:    "/signup",
			Resend:    "/resend",
			Logout:    "/logout",
			Dashboard: "/dashboard",
		},
		Views: &ControllerViews{
			Home:          "home",
			Login:         "login",
			Signup:        "signup",
			VerifyEmail:   "verify_email",
			LoginRequired: "login_required",
			Dashboard:     "dashboard",
			Error:         "errors/500",
		},
		guard:     NewInflightGuard(),
		newFormID: uuid.NewString,
	}
	c.ErrorHandler = c.defaultErrHandler

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Gateway == nil {
		panic("Missing AuthGateway in landing controller...")
	}

	if c.Cooldown == nil {
		panic("Missing ResendCooldown in landing controller...")
	}

	return c
}

// ViewRegistry maps the route table views to controller handlers
func (a *LandingController) ViewRegistry() ViewRegistry {
	return ViewRegistry{
		ViewHome:      {Get: a.HomeShow},
		ViewLogin:     {Get: a.LoginShow, Post: a.LoginPost},
		ViewSignup:    {Get: a.SignupShow, Post: a.SignupPost},
		ViewResend:    {Get: a.VerificationShow, Post: a.VerificationResend},
		ViewLogout:    {Get: a.LogOutShow, Post: a.LogOut},
		ViewDashboard: {Get: a.DashboardShow},
	}
}

// Gate returns the login required gate for protected routes
func (a *LandingController) Gate() *LoginGate {
	return &LoginGate{
		Session: a.Session,
		Routes:  a.Routes,
		View:    a.Views.LoginRequired,
		Logger:  a.Logger,
	}
}

func (a *LandingController) HomeShow(ctx router.Context) error {
	return a.render(ctx, a.Views.Home, router.ViewContext{})
}

func (a *LandingController) DashboardShow(ctx router.Context) error {
	return a.render(ctx, a.Views.Dashboard, router.ViewContext{})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("email is required")),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
}

func (a *LandingController) LoginShow(ctx router.Context) error {
	return a.renderLogin(ctx, a.newFormID(), LoginRequest{}, map[string]string{}, "")
}

func (a *LandingController) LoginPost(ctx router.Context) error {
	payload := LoginRequest{
		Email:    ctx.FormValue("email"),
		Password: ctx.FormValue("password"),
	}

	formID := ctx.FormValue(formIDKey)
	if formID == "" {
		formID = a.newFormID()
	}

	if err := payload.Validate(); err != nil {
		return a.renderLogin(ctx, formID, payload, FormatValidationErrorToMap(err), GatewayMessage(ErrLoginIncomplete))
	}

	if a.Debug {
		fmt.Println("======= LANDING LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(map[string]string{"email": payload.Email, formIDKey: formID}))
		fmt.Println("============================")
	}

	release, ok := a.guard.Acquire(formID)
	if !ok {
		return a.renderLogin(ctx, formID, payload, map[string]string{}, GatewayMessage(ErrSubmissionInProgress))
	}
	defer release()

	session, err := a.Gateway.SignInWithPassword(ctx.Context(), payload.Email, payload.Password)
	if err == nil && session.IsEmpty() {
		err = ErrEmptySession
	}

	if err != nil {
		a.Logger.Warn("sign in rejected", "email", payload.Email, "error", err)
		return a.renderLogin(ctx, formID, payload, map[string]string{}, GatewayMessage(err))
	}

	a.Session.Set(ctx, session)

	redirect := a.Session.GetRedirect(ctx, a.Routes.Dashboard)
	a.Logger.Debug("sign in succeeded", "redirect", redirect)

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *LandingController) renderLogin(ctx router.Context, formID string, payload LoginRequest, errs map[string]string, message string) error {
	return a.render(ctx, a.Views.Login, router.ViewContext{
		formIDKey: formID,
		"record": map[string]string{
			"email": payload.Email,
		},
		"errors":  errs,
		"error":   message,
		"loading": false,
	})
}

// LogOutShow sends stray GET requests home. Signing out is a POST.
func (a *LandingController) LogOutShow(ctx router.Context) error {
	return ctx.Redirect(a.Routes.Home, router.StatusSeeOther)
}

func (a *LandingController) LogOut(ctx router.Context) error {
	a.Session.Clear(ctx)
	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "You have been signed out",
	}).Redirect(a.Routes.Home, router.StatusSeeOther)
}

func (a *LandingController) SignupShow(ctx router.Context) error {
	if err := requireSignupGate(ctx.Context(), a.featureGate); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	wizard := NewSignupWizard(a.newFormID(), a.guard)
	return a.renderSignup(ctx, wizard, map[string]string{}, "")
}

// SignupPost runs one wizard action. The wizard state travels with the form
// so each POST rebuilds it before applying the action.
func (a *LandingController) SignupPost(ctx router.Context) error {
	if err := requireSignupGate(ctx.Context(), a.featureGate); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	wizard := a.wizardFromForm(ctx)

	switch ctx.FormValue(actionKey) {
	case ActionBack:
		wizard.Back()
		return a.renderSignup(ctx, wizard, map[string]string{}, "")

	case ActionContinue:
		if err := wizard.Advance(); err != nil {
			return a.renderSignupError(ctx, wizard, err)
		}
		return a.renderSignup(ctx, wizard, map[string]string{}, "")

	case ActionSubmit:
		if err := wizard.Submit(ctx.Context(), a.Gateway); err != nil {
			if !IsValidationError(err) {
				a.Logger.Warn("sign up rejected", "email", wizard.Draft.Email, "error", err)
			}
			return a.renderSignupError(ctx, wizard, err)
		}

		countdown, err := a.Cooldown.Countdown(ctx.Context(), wizard.Draft.Email)
		if err != nil {
			a.Logger.Error("load verification countdown", "error", err)
			countdown = NewCountdown(0)
		}
		return a.renderVerification(ctx, wizard.Draft.Email, countdown, "", false)
	}

	return a.renderSignup(ctx, wizard, map[string]string{}, "")
}

func (a *LandingController) wizardFromForm(ctx router.Context) *SignupWizard {
	formID := ctx.FormValue(formIDKey)
	if formID == "" {
		formID = a.newFormID()
	}

	wizard := NewSignupWizard(formID, a.guard)
	wizard.Step = ParseWizardStep(ctx.FormValue(stepKey))
	wizard.Draft = SignupDraft{
		DisplayName:     ctx.FormValue("display_name"),
		Email:           ctx.FormValue("email"),
		Password:        ctx.FormValue("password"),
		ConfirmPassword: ctx.FormValue("confirm_password"),
	}

	if a.Debug {
		fmt.Println("======= LANDING SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(map[string]string{
			formIDKey:      wizard.ID,
			stepKey:        string(wizard.Step),
			"display_name": wizard.Draft.DisplayName,
			"email":        wizard.Draft.Email,
		}))
		fmt.Println("=============================")
	}

	return wizard
}

func (a *LandingController) renderSignupError(ctx router.Context, wizard *SignupWizard, err error) error {
	var fieldErr *FieldError
	if goerrors.As(err, &fieldErr) {
		return a.renderSignup(ctx, wizard, fieldErr.Fields, GatewayMessage(fieldErr.Err))
	}
	return a.renderSignup(ctx, wizard, map[string]string{}, GatewayMessage(err))
}

func (a *LandingController) renderSignup(ctx router.Context, wizard *SignupWizard, errs map[string]string, message string) error {
	return a.render(ctx, a.Views.Signup, router.ViewContext{
		formIDKey:    wizard.ID,
		stepKey:      string(wizard.Step),
		"record":     wizard.Draft.Record(),
		"errors":     errs,
		"error":      message,
		"submitting": wizard.Submitting(),
	})
}

// VerificationShow renders the verification page for the email in the query
func (a *LandingController) VerificationShow(ctx router.Context) error {
	email := ctx.Query("email", "")
	if email == "" {
		return ctx.Redirect(a.Routes.Signup, router.StatusSeeOther)
	}

	countdown, err := a.Cooldown.Countdown(ctx.Context(), email)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return a.renderVerification(ctx, email, countdown, "", false)
}

// VerificationResend asks the gateway for a new verification email unless
// the countdown is still running.
func (a *LandingController) VerificationResend(ctx router.Context) error {
	email := ctx.FormValue("email")
	if email == "" {
		return ctx.Redirect(a.Routes.Signup, router.StatusSeeOther)
	}

	countdown, err := a.Cooldown.Resend(ctx.Context(), email)
	if countdown == nil {
		countdown = NewCountdown(0)
	}

	if err != nil {
		return a.renderVerification(ctx, email, countdown, GatewayMessage(err), false)
	}

	return a.renderVerification(ctx, email, countdown, "", true)
}

func (a *LandingController) renderVerification(ctx router.Context, email string, countdown *Countdown, message string, sent bool) error {
	return a.render(ctx, a.Views.VerifyEmail, router.ViewContext{
		"email":      email,
		"countdown":  strconv.Itoa(countdown.Remaining()),
		"can_resend": countdown.CanResend(),
		"error":      message,
		"sent":       sent,
	})
}

func (a *LandingController) render(ctx router.Context, view string, data router.ViewContext) error {
	return ctx.Render(view, MergeTemplateData(ctx, a.Routes, a.Session, data))
}

func (a *LandingController) defaultErrHandler(ctx router.Context, err error) error {
	a.Logger.Error("landing handler error", "error", err)
	return a.render(ctx, a.Views.Error, router.ViewContext{
		"message": GatewayMessage(err),
	})
}

func setIfNotEmpty(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}
