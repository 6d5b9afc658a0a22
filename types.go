package landing

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session is the opaque credential returned by the AuthGateway after a
// successful password login. Only its presence drives navigation.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// IsEmpty reports whether the gateway returned no usable session
func (s *Session) IsEmpty() bool {
	return s == nil || s.AccessToken == ""
}

// SignUpMetadata is attached to the account created by the AuthGateway
type SignUpMetadata struct {
	DisplayName string `json:"display_name"`
}

// AuthGateway is the external identity provider consumed by the login and
// signup flows.
type AuthGateway interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, meta SignUpMetadata) error
	ResendVerificationEmail(ctx context.Context, email string) error
}

// ResendStore keeps track of the last verification email sent per address
type ResendStore interface {
	LastSent(ctx context.Context, email string) (*ResendRecord, error)
	MarkSent(ctx context.Context, record *ResendRecord) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] LANDING "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] LANDING "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] LANDING "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] LANDING "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
