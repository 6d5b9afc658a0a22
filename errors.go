package landing

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeUnresolvedView       = "ROUTE_UNRESOLVED_VIEW"
	TextCodeDuplicateRoute       = "ROUTE_DUPLICATE_PATH"
	TextCodeInvalidRoutePath     = "ROUTE_INVALID_PATH"
	TextCodeIdentityIncomplete   = "SIGNUP_IDENTITY_INCOMPLETE"
	TextCodePasswordMismatch     = "SIGNUP_PASSWORD_MISMATCH"
	TextCodeInvalidWizardStep    = "SIGNUP_INVALID_STEP"
	TextCodeSubmissionInProgress = "FORM_SUBMISSION_IN_PROGRESS"
	TextCodeSignupDisabled       = "SIGNUP_DISABLED"
	TextCodeResendCooldown       = "VERIFICATION_RESEND_COOLDOWN"
	TextCodeEmptySession         = "GATEWAY_EMPTY_SESSION"
	TextCodeLoginIncomplete      = "LOGIN_INCOMPLETE"
)

// ErrUnresolvedView is returned when a route entry references a view with no handlers.
var ErrUnresolvedView = goerrors.New("route references an unknown view", goerrors.CategoryInternal).
	WithTextCode(TextCodeUnresolvedView).
	WithCode(goerrors.CodeInternal)

// ErrDuplicateRoute is returned when two sibling route entries share a path.
var ErrDuplicateRoute = goerrors.New("duplicate route path among siblings", goerrors.CategoryInternal).
	WithTextCode(TextCodeDuplicateRoute).
	WithCode(goerrors.CodeInternal)

// ErrInvalidRoutePath is returned for route entries without a path.
var ErrInvalidRoutePath = goerrors.New("route path is empty", goerrors.CategoryInternal).
	WithTextCode(TextCodeInvalidRoutePath).
	WithCode(goerrors.CodeInternal)

// ErrIdentityIncomplete is returned when the identity step is missing a display name or email.
var ErrIdentityIncomplete = goerrors.New("display name and email are required", goerrors.CategoryValidation).
	WithTextCode(TextCodeIdentityIncomplete).
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordMismatch is returned when password and confirmation differ.
var ErrPasswordMismatch = goerrors.New("passwords do not match", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidWizardStep is returned when an action is not valid for the current step.
var ErrInvalidWizardStep = goerrors.New("action not allowed in the current signup step", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidWizardStep).
	WithCode(goerrors.CodeBadRequest)

// ErrSubmissionInProgress is returned while a form instance already has a request in flight.
var ErrSubmissionInProgress = goerrors.New("a submission for this form is already in progress", goerrors.CategoryConflict).
	WithTextCode(TextCodeSubmissionInProgress).
	WithCode(goerrors.CodeConflict)

// ErrSignupDisabled is returned when the signup feature gate is off.
var ErrSignupDisabled = goerrors.New("signup is currently disabled", goerrors.CategoryAuthz).
	WithTextCode(TextCodeSignupDisabled).
	WithCode(goerrors.CodeForbidden)

// ErrResendCooldown is returned when a verification email was sent too recently.
var ErrResendCooldown = goerrors.New("please wait before requesting another email", goerrors.CategoryValidation).
	WithTextCode(TextCodeResendCooldown).
	WithCode(goerrors.CodeBadRequest)

// ErrEmptySession is returned when the gateway answers a login without a session.
var ErrEmptySession = goerrors.New("no session returned by the identity provider", goerrors.CategoryAuth).
	WithTextCode(TextCodeEmptySession).
	WithCode(goerrors.CodeUnauthorized)

// ErrLoginIncomplete is returned when email or password are missing.
var ErrLoginIncomplete = goerrors.New("email and password are required", goerrors.CategoryValidation).
	WithTextCode(TextCodeLoginIncomplete).
	WithCode(goerrors.CodeBadRequest)

// GatewayMessage returns the user facing text for an error, keeping the
// message reported by the identity provider verbatim.
func GatewayMessage(err error) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}

	return err.Error()
}

// IsValidationError reports whether err was produced by local validation
func IsValidationError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryValidation
	}
	return false
}
