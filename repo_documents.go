package clinic

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Documents stores upload metadata; the payload lives in the file store.
type Documents interface {
	Create(ctx context.Context, record *Document) (*Document, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error)
}

type documents struct {
	repo repository.Repository[*Document]
	db   *bun.DB
}

var _ Documents = (*documents)(nil)

func NewDocumentsRepository(db *bun.DB) Documents {
	repo := repository.NewRepository[*Document](db, repository.ModelHandlers[*Document]{
		NewRecord: func() *Document { return &Document{} },
		GetID: func(d *Document) uuid.UUID {
			if d == nil {
				return uuid.Nil
			}
			return d.ID
		},
		SetID: func(d *Document, id uuid.UUID) {
			if d != nil {
				d.ID = id
			}
		},
	})

	return &documents{
		repo: repo,
		db:   db,
	}
}

func (a *documents) Create(ctx context.Context, record *Document) (*Document, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.repo.CreateTx(ctx, a.db, record)
}

func (a *documents) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	records := []*Document{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.patient_id = ?", patientID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
