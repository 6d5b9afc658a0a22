package landing

import (
	"context"
	"errors"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// WizardStep is the current page of the signup wizard
type WizardStep string

const (
	StepIdentity WizardStep = "identity"
	StepSecurity WizardStep = "security"
)

// ParseWizardStep maps a submitted step value, defaulting to StepIdentity
func ParseWizardStep(s string) WizardStep {
	switch WizardStep(strings.ToLower(strings.TrimSpace(s))) {
	case StepSecurity:
		return StepSecurity
	default:
		return StepIdentity
	}
}

// SignupDraft holds the values typed so far. It is never cleared by step
// navigation.
type SignupDraft struct {
	DisplayName     string `form:"display_name" json:"display_name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Record returns the draft keyed by form field name
func (d SignupDraft) Record() map[string]string {
	return map[string]string{
		"display_name":     d.DisplayName,
		"email":            d.Email,
		"password":         d.Password,
		"confirm_password": d.ConfirmPassword,
	}
}

// ValidateIdentity checks the fields needed to leave the identity step
func (d SignupDraft) ValidateIdentity() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.DisplayName, validation.Required.Error("display name is required")),
		validation.Field(&d.Email, validation.Required.Error("email is required")),
	)
}

// ValidateSecurity checks the fields needed to submit the wizard
func (d SignupDraft) ValidateSecurity() error {
	return validation.ValidateStruct(&d,
		validation.Field(
			&d.ConfirmPassword,
			validation.By(ValidateStringEquals(d.Password)),
		),
	)
}

// FieldError is a validation failure with per field messages. It unwraps to
// the sentinel describing the failed rule.
type FieldError struct {
	Err    error
	Fields map[string]string
}

func (e *FieldError) Error() string {
	return GatewayMessage(e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// SignupWizard is the two step signup state machine of a single form
// instance.
type SignupWizard struct {
	ID        string
	Step      WizardStep
	Draft     SignupDraft
	Submitted bool
	guard     *InflightGuard
}

// NewSignupWizard returns a wizard for the given form instance, starting at
// StepIdentity.
func NewSignupWizard(id string, guard *InflightGuard) *SignupWizard {
	if guard == nil {
		guard = NewInflightGuard()
	}
	return &SignupWizard{
		ID:    id,
		Step:  StepIdentity,
		guard: guard,
	}
}

// Advance moves from StepIdentity to StepSecurity. The step does not change
// when the identity fields are incomplete.
func (w *SignupWizard) Advance() error {
	if w.Step != StepIdentity {
		return ErrInvalidWizardStep
	}

	if err := w.Draft.ValidateIdentity(); err != nil {
		return &FieldError{
			Err:    ErrIdentityIncomplete,
			Fields: FormatValidationErrorToMap(err),
		}
	}

	w.Step = StepSecurity
	return nil
}

// Back returns to StepIdentity keeping the draft.
func (w *SignupWizard) Back() {
	w.Step = StepIdentity
}

// Submitting reports whether a submission for this wizard is in flight
func (w *SignupWizard) Submitting() bool {
	return w.guard.Busy(w.ID)
}

// Submit sends the draft to the gateway. It is only valid from
// StepSecurity. Incomplete identity fields send the wizard back to
// StepIdentity; any other failure leaves it in StepSecurity with the draft
// intact.
func (w *SignupWizard) Submit(ctx context.Context, gateway AuthGateway) error {
	if w.Step != StepSecurity {
		return ErrInvalidWizardStep
	}

	// the step is client supplied
	if err := w.Draft.ValidateIdentity(); err != nil {
		w.Step = StepIdentity
		return &FieldError{
			Err:    ErrIdentityIncomplete,
			Fields: FormatValidationErrorToMap(err),
		}
	}

	if err := w.Draft.ValidateSecurity(); err != nil {
		return &FieldError{
			Err:    ErrPasswordMismatch,
			Fields: FormatValidationErrorToMap(err),
		}
	}

	release, ok := w.guard.Acquire(w.ID)
	if !ok {
		return ErrSubmissionInProgress
	}
	defer release()

	err := gateway.SignUp(ctx, w.Draft.Email, w.Draft.Password, SignUpMetadata{
		DisplayName: w.Draft.DisplayName,
	})
	if err != nil {
		return err
	}

	w.Submitted = true
	return nil
}

// InflightGuard tracks form instances with a request in flight
type InflightGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewInflightGuard() *InflightGuard {
	return &InflightGuard{inflight: map[string]struct{}{}}
}

// Acquire marks id as busy. The returned release func must be called once
// the request is done; ok is false if id was already busy.
func (g *InflightGuard) Acquire(id string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[id]; busy {
		return func() {}, false
	}
	g.inflight[id] = struct{}{}

	return func() {
		g.mu.Lock()
		delete(g.inflight, id)
		g.mu.Unlock()
	}, true
}

func (g *InflightGuard) Busy(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[id]
	return busy
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors keyed by field
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if goerrors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["form"] = err.Error()
	return out
}
