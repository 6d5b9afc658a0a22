package repository

import (
	"context"
	"database/sql"
	"errors"

	landing "github.com/goliatone/go-landing"
	"github.com/uptrace/bun"
)

var resendModel = (*landing.ResendRecord)(nil)

// ResendRepository implements landing.ResendStore using Bun.
type ResendRepository struct {
	db *bun.DB
}

// NewResendRepository creates a new repository.
func NewResendRepository(db *bun.DB) *ResendRepository {
	return &ResendRepository{db: db}
}

// LastSent implements landing.ResendStore. It returns nil when the address
// never requested a resend.
func (r *ResendRepository) LastSent(ctx context.Context, email string) (*landing.ResendRecord, error) {
	record := new(landing.ResendRecord)
	err := r.db.NewSelect().
		Model(record).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// MarkSent implements landing.ResendStore.
func (r *ResendRepository) MarkSent(ctx context.Context, record *landing.ResendRecord) error {
	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (email) DO UPDATE").
		Set("sent_at = EXCLUDED.sent_at").
		Set("attempts = EXCLUDED.attempts").
		Exec(ctx)
	return err
}
