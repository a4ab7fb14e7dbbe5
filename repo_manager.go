package clinic

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	Prescriptions() Prescriptions
	Documents() Documents
}

type mngr struct {
	db            *bun.DB
	users         Users
	prescriptions Prescriptions
	documents     Documents
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		prescriptions: NewPrescriptionsRepository(db),
		documents:     NewDocumentsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.prescriptions == nil {
		return errors.New("repository prescriptions should be initialized")
	}

	if m.documents == nil {
		return errors.New("repository documents should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Prescriptions() Prescriptions {
	return m.prescriptions
}

func (m mngr) Documents() Documents {
	return m.documents
}
