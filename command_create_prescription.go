package clinic

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CreatePrescriptionMessage struct {
	PatientID   uuid.UUID    `json:"patient_id"`
	DoctorID    uuid.UUID    `json:"doctor_id"`
	Diagnosis   string       `json:"diagnosis"`
	Medications []Medication `json:"medications"`
	Notes       string       `json:"notes"`
	FollowUp    *time.Time   `json:"follow_up"`
}

func (e CreatePrescriptionMessage) Type() string { return "prescription.create" }

type CreatePrescriptionHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewCreatePrescriptionHandler(repo RepositoryManager) *CreatePrescriptionHandler {
	return &CreatePrescriptionHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *CreatePrescriptionHandler) WithLogger(logger Logger) *CreatePrescriptionHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *CreatePrescriptionHandler) Execute(ctx context.Context, event CreatePrescriptionMessage) (*Prescription, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during prescription creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreatePrescriptionHandler) execute(ctx context.Context, event CreatePrescriptionMessage) (*Prescription, error) {
	record := &Prescription{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		patient, err := h.repo.Users().GetByID(ctx, event.PatientID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return NotFoundError("Patient not found")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load patient")
		}

		if patient.Role != RolePatient {
			return NotFoundError("Patient not found")
		}

		record.PatientID = event.PatientID
		record.DoctorID = event.DoctorID
		record.Diagnosis = event.Diagnosis
		record.Medications = event.Medications
		if record.Medications == nil {
			record.Medications = []Medication{}
		}
		record.Notes = event.Notes
		record.FollowUp = event.FollowUp

		if record, err = h.repo.Prescriptions().CreateTx(ctx, tx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create prescription")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "prescription transaction failed")
	}

	h.logger.Info("prescription created",
		"id", record.ID.String(),
		"patient", record.PatientID.String(),
		"doctor", record.DoctorID.String(),
	)

	return record, nil
}
