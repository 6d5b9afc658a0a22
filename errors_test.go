package landing

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestGatewayMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "plain gateway error kept verbatim",
			err:      errors.New("Email not confirmed"),
			expected: "Email not confirmed",
		},
		{
			name:     "rich error uses its message",
			err:      ErrPasswordMismatch,
			expected: "passwords do not match",
		},
		{
			name: "rich gateway error",
			err: goerrors.New("User already registered", goerrors.CategoryAuth).
				WithTextCode("USER_ALREADY_EXISTS"),
			expected: "User already registered",
		},
		{
			name:     "field error unwraps to sentinel",
			err:      &FieldError{Err: ErrIdentityIncomplete, Fields: map[string]string{"email": "email is required"}},
			expected: "display name and email are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GatewayMessage(tt.err))
		})
	}
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrPasswordMismatch))
	assert.True(t, IsValidationError(&FieldError{Err: ErrIdentityIncomplete}))
	assert.True(t, IsValidationError(fmt.Errorf("submit: %w", ErrLoginIncomplete)))

	assert.False(t, IsValidationError(nil))
	assert.False(t, IsValidationError(errors.New("Invalid login credentials")))
	assert.False(t, IsValidationError(ErrSubmissionInProgress))
	assert.False(t, IsValidationError(ErrEmptySession))
}

func TestSentinelTextCodes(t *testing.T) {
	tests := []struct {
		err      error
		textCode string
	}{
		{ErrUnresolvedView, TextCodeUnresolvedView},
		{ErrDuplicateRoute, TextCodeDuplicateRoute},
		{ErrIdentityIncomplete, TextCodeIdentityIncomplete},
		{ErrSignupDisabled, TextCodeSignupDisabled},
		{ErrResendCooldown, TextCodeResendCooldown},
		{ErrEmptySession, TextCodeEmptySession},
	}

	for _, tt := range tests {
		t.Run(tt.textCode, func(t *testing.T) {
			var richErr *goerrors.Error
			assert.True(t, goerrors.As(tt.err, &richErr))
			assert.Equal(t, tt.textCode, richErr.TextCode)
		})
	}
}
