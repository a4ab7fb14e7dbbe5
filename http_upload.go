package clinic

import (
	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// UploadController accepts multipart document uploads for a patient.
// Any verified identity may upload; the uploader is recorded from the
// token, not the form.
type UploadController struct {
	Logger     Logger
	Repo       RepositoryManager
	Store      FileStore
	ContextKey string
}

func NewUploadController(repo RepositoryManager, store FileStore) *UploadController {
	if repo == nil {
		panic("Missing RepositoryManager in upload controller...")
	}

	if store == nil {
		panic("Missing FileStore in upload controller...")
	}

	return &UploadController{
		Logger:     defLogger{},
		Repo:       repo,
		Store:      store,
		ContextKey: "user",
	}
}

func (a *UploadController) WithLogger(logger Logger) *UploadController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

func (a *UploadController) WithContextKey(key string) *UploadController {
	if key != "" {
		a.ContextKey = key
	}
	return a
}

// DocumentUpload stores the payload on disk and records its metadata
// against the patient.
func (a *UploadController) DocumentUpload(c *fiber.Ctx) error {
	claims, ok := GetClaimsFiber(c, a.ContextKey)
	if !ok {
		return RespondError(c, ErrMissingToken)
	}

	patientID, err := uuid.Parse(c.Params("patientId"))
	if err != nil {
		return RespondError(c, ValidationError("Invalid patient id"))
	}

	patient, err := a.Repo.Users().GetByID(c.UserContext(), patientID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(c, NotFoundError("Patient not found"))
		}
		a.Logger.Error("upload patient lookup error", "error", err)
		return RespondError(c, err)
	}

	if patient.Role != RolePatient {
		return RespondError(c, NotFoundError("Patient not found"))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return RespondError(c, ValidationError("Missing file"))
	}

	stored, err := a.Store.Save(file)
	if err != nil {
		a.Logger.Error("upload store error", "error", err)
		return RespondError(c, err)
	}

	record := &Document{
		PatientID:  patient.ID,
		Filename:   stored.Filename,
		StoredPath: stored.Path,
		Mimetype:   file.Header.Get(fiber.HeaderContentType),
		Size:       stored.Size,
	}

	if uploader, err := uuid.Parse(claims.UserID()); err == nil {
		record.UploadedBy = &uploader
	}

	record, err = a.Repo.Documents().Create(c.UserContext(), record)
	if err != nil {
		a.Logger.Error("upload record error", "error", err)
		return RespondError(c, err)
	}

	a.Logger.Info("document uploaded",
		"patient", patient.ID.String(),
		"filename", record.Filename,
		"size", record.Size,
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"document": record,
	})
}
