package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager groups the repositories backed by one bun database
type Manager struct {
	db      *bun.DB
	resends *ResendRepository
}

func NewRepositoryManager(db *bun.DB) *Manager {
	return &Manager{
		db:      db,
		resends: NewResendRepository(db),
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized")
	}

	if m.resends == nil {
		return errors.New("repository resends should be initialized")
	}

	return nil
}

func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

// Migrate creates the tables of every repository
func (m *Manager) Migrate(ctx context.Context) error {
	return m.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewCreateTable().
			Model(resendModel).
			IfNotExists().
			Exec(ctx)
		return err
	})
}

func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *Manager) Resends() *ResendRepository {
	return m.resends
}
