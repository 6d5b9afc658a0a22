package landing

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ResendRecord is the last verification email sent to an address
type ResendRecord struct {
	bun.BaseModel `bun:"table:verification_resends,alias:vr"`

	Email    string    `bun:"email,pk" json:"email"`
	SentAt   time.Time `bun:"sent_at,notnull" json:"sent_at"`
	Attempts int       `bun:"attempts,notnull,default:0" json:"attempts"`
}

// ResendCooldown rebuilds the verification countdown from the last resend
// and forwards resend requests to the gateway once the countdown is over.
type ResendCooldown struct {
	store   ResendStore
	gateway AuthGateway
	now     func() time.Time
	logger  Logger
}

// ResendCooldownOption customizes a ResendCooldown
type ResendCooldownOption func(*ResendCooldown)

// WithCooldownClock injects the clock used to measure elapsed time
func WithCooldownClock(now func() time.Time) ResendCooldownOption {
	return func(rc *ResendCooldown) {
		if now != nil {
			rc.now = now
		}
	}
}

// WithCooldownLogger sets the logger
func WithCooldownLogger(logger Logger) ResendCooldownOption {
	return func(rc *ResendCooldown) {
		if logger != nil {
			rc.logger = logger
		}
	}
}

func NewResendCooldown(store ResendStore, gateway AuthGateway, opts ...ResendCooldownOption) *ResendCooldown {
	rc := &ResendCooldown{
		store:   store,
		gateway: gateway,
		now:     time.Now,
		logger:  defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rc)
		}
	}
	return rc
}

// Countdown returns the countdown for email as of now. Addresses that never
// got a resend start at zero.
func (rc *ResendCooldown) Countdown(ctx context.Context, email string) (*Countdown, error) {
	record, err := rc.store.LastSent(ctx, normalizeEmail(email))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load verification resend state")
	}

	countdown := NewCountdown(0)
	if record == nil {
		return countdown, nil
	}

	countdown.Resend()
	countdown.Advance(rc.now().Sub(record.SentAt))
	return countdown, nil
}

// Resend asks the gateway for a new verification email. It is rejected
// without calling the gateway while the countdown is running.
func (rc *ResendCooldown) Resend(ctx context.Context, email string) (*Countdown, error) {
	email = normalizeEmail(email)

	countdown, err := rc.Countdown(ctx, email)
	if err != nil {
		return nil, err
	}

	if !countdown.CanResend() {
		return countdown, ErrResendCooldown
	}

	if err := rc.gateway.ResendVerificationEmail(ctx, email); err != nil {
		rc.logger.Warn("verification resend rejected by gateway", "error", err)
		return countdown, err
	}

	attempts := 1
	if previous, err := rc.store.LastSent(ctx, email); err == nil && previous != nil {
		attempts = previous.Attempts + 1
	}

	record := &ResendRecord{
		Email:    email,
		SentAt:   rc.now().UTC(),
		Attempts: attempts,
	}
	if err := rc.store.MarkSent(ctx, record); err != nil {
		return countdown, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record verification resend")
	}

	countdown.Resend()
	return countdown, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
