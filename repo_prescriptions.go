package clinic

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Prescriptions is append-only: create plus filtered reads by patient.
type Prescriptions interface {
	Create(ctx context.Context, record *Prescription) (*Prescription, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Prescription) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
}

type prescriptions struct {
	repo repository.Repository[*Prescription]
	db   *bun.DB
}

var _ Prescriptions = (*prescriptions)(nil)

func NewPrescriptionsRepository(db *bun.DB) Prescriptions {
	repo := repository.NewRepository[*Prescription](db, repository.ModelHandlers[*Prescription]{
		NewRecord: func() *Prescription { return &Prescription{} },
		GetID: func(p *Prescription) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Prescription, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &prescriptions{
		repo: repo,
		db:   db,
	}
}

func (a *prescriptions) Create(ctx context.Context, record *Prescription) (*Prescription, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *prescriptions) CreateTx(ctx context.Context, tx bun.IDB, record *Prescription) (*Prescription, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Medications == nil {
		record.Medications = []Medication{}
	}
	return a.repo.CreateTx(ctx, tx, record)
}

// ListByPatient returns the patient's prescriptions with the doctor's
// name and email joined in, newest first.
func (a *prescriptions) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	records := []*Prescription{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("Doctor", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("id", "name", "email")
		}).
		Where("?TableAlias.patient_id = ?", patientID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
