package clinic

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ClinicalController serves the doctor facing record routes: looking
// up patients, issuing prescriptions, and reading a patient's history.
type ClinicalController struct {
	Logger     Logger
	Repo       RepositoryManager
	Prescribe  *CreatePrescriptionHandler
	ContextKey string
}

func NewClinicalController(repo RepositoryManager, prescribe *CreatePrescriptionHandler) *ClinicalController {
	if repo == nil {
		panic("Missing RepositoryManager in clinical controller...")
	}

	if prescribe == nil {
		panic("Missing CreatePrescriptionHandler in clinical controller...")
	}

	return &ClinicalController{
		Logger:     defLogger{},
		Repo:       repo,
		Prescribe:  prescribe,
		ContextKey: "user",
	}
}

func (a *ClinicalController) WithLogger(logger Logger) *ClinicalController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

func (a *ClinicalController) WithContextKey(key string) *ClinicalController {
	if key != "" {
		a.ContextKey = key
	}
	return a
}

// PrescriptionCreatePayload is the prescription payload
type PrescriptionCreatePayload struct {
	PatientID   string       `form:"patient_id" json:"patient_id"`
	Diagnosis   string       `form:"diagnosis" json:"diagnosis"`
	Medications []Medication `form:"medications" json:"medications"`
	Notes       string       `form:"notes" json:"notes"`
	FollowUp    *time.Time   `form:"follow_up" json:"follow_up"`
}

// Validate will validate the payload
func (r PrescriptionCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PatientID, validation.Required, isUUID),
		validation.Field(&r.Diagnosis, validation.Required, validation.Length(1, 500)),
	)
}

var isUUID = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("must be a valid UUID")
	}
	return nil
})

// PrescriptionCreate records a prescription authored by the calling
// doctor. The doctor's identity comes from the verified token, never
// from the payload.
func (a *ClinicalController) PrescriptionCreate(c *fiber.Ctx) error {
	claims, ok := GetClaimsFiber(c, a.ContextKey)
	if !ok {
		return RespondError(c, ErrMissingToken)
	}

	doctorID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return RespondError(c, ErrTokenInvalid)
	}

	payload := new(PrescriptionCreatePayload)
	if err := c.BodyParser(payload); err != nil {
		return RespondError(c, ValidationError("Invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, ValidationError(err.Error()))
	}

	patientID, _ := uuid.Parse(payload.PatientID)

	record, err := a.Prescribe.Execute(c.UserContext(), CreatePrescriptionMessage{
		PatientID:   patientID,
		DoctorID:    doctorID,
		Diagnosis:   payload.Diagnosis,
		Medications: payload.Medications,
		Notes:       payload.Notes,
		FollowUp:    payload.FollowUp,
	})
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"prescription": record,
	})
}

// PatientShow returns a patient's profile without credential fields.
func (a *ClinicalController) PatientShow(c *fiber.Ctx) error {
	patient, err := a.loadPatient(c)
	if err != nil {
		return RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"patient": patientView(patient),
	})
}

// PatientByToken resolves a patient from an NFC card token. Tokens
// only ever match patient accounts.
func (a *ClinicalController) PatientByToken(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return RespondError(c, ValidationError("Missing card token"))
	}

	patient, err := a.Repo.Users().GetByNFCToken(c.UserContext(), token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(c, NotFoundError("Patient not found"))
		}
		a.Logger.Error("patient by token error", "error", err)
		return RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"patient": patientView(patient),
	})
}

// PatientPrescriptions lists a patient's prescriptions, newest first,
// with the issuing doctor's name and email attached.
func (a *ClinicalController) PatientPrescriptions(c *fiber.Ctx) error {
	patient, err := a.loadPatient(c)
	if err != nil {
		return RespondError(c, err)
	}

	records, err := a.Repo.Prescriptions().ListByPatient(c.UserContext(), patient.ID)
	if err != nil {
		a.Logger.Error("patient prescriptions error", "error", err)
		return RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"prescriptions": records,
	})
}

// PatientDocuments lists a patient's uploaded document metadata.
func (a *ClinicalController) PatientDocuments(c *fiber.Ctx) error {
	patient, err := a.loadPatient(c)
	if err != nil {
		return RespondError(c, err)
	}

	records, err := a.Repo.Documents().ListByPatient(c.UserContext(), patient.ID)
	if err != nil {
		a.Logger.Error("patient documents error", "error", err)
		return RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"documents": records,
	})
}

func (a *ClinicalController) loadPatient(c *fiber.Ctx) (*User, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, ValidationError("Invalid patient id")
	}

	user, err := a.Repo.Users().GetByID(c.UserContext(), id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFoundError("Patient not found")
		}
		a.Logger.Error("patient lookup error", "error", err)
		return nil, err
	}

	if user.Role != RolePatient {
		return nil, NotFoundError("Patient not found")
	}

	return user, nil
}

func patientView(u *User) fiber.Map {
	return fiber.Map{
		"id":     u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"mobile": u.Mobile,
		"role":   u.Role,
	}
}
