package clinic

import (
	"github.com/gofiber/fiber/v2"
)

// RouterConfig collects everything route registration needs.
type RouterConfig struct {
	App    *fiber.App
	Repo   RepositoryManager
	Auther *Auther
	Store  FileStore
	Config Config
	Logger Logger
	Debug  bool
}

// RegisterRoutes wires the public auth endpoints and the protected
// surfaces: the admin approval queue, doctor prescription authoring,
// the patient record reads, and the shared upload endpoint. Role
// restrictions exist in exactly two places, prescription authoring and
// the approval queue, applied by composing the one token gate with a
// required role, never by per-handler checks.
func RegisterRoutes(cfg RouterConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	authenticated := Tokenware(TokenwareConfig{
		TokenService: cfg.Auther.TokenService(),
		ContextKey:   cfg.Config.GetContextKey(),
		AuthScheme:   cfg.Config.GetAuthScheme(),
		Logger:       logger,
	})

	adminOnly := Tokenware(TokenwareConfig{
		TokenService: cfg.Auther.TokenService(),
		ContextKey:   cfg.Config.GetContextKey(),
		AuthScheme:   cfg.Config.GetAuthScheme(),
		RequiredRole: RoleAdmin,
		Logger:       logger,
	})

	doctorOnly := Tokenware(TokenwareConfig{
		TokenService: cfg.Auther.TokenService(),
		ContextKey:   cfg.Config.GetContextKey(),
		AuthScheme:   cfg.Config.GetAuthScheme(),
		RequiredRole: RoleDoctor,
		Logger:       logger,
	})

	auth := NewAuthController(
		WithControllerAuther(cfg.Auther),
		WithControllerRegister(NewRegisterUserHandler(cfg.Repo).WithLogger(logger)),
		WithControllerLogger(logger),
		WithControllerDebug(cfg.Debug),
	)

	admin := NewAdminController(cfg.Repo).WithLogger(logger)

	clinical := NewClinicalController(
		cfg.Repo,
		NewCreatePrescriptionHandler(cfg.Repo).WithLogger(logger),
	).WithLogger(logger).WithContextKey(cfg.Config.GetContextKey())

	upload := NewUploadController(cfg.Repo, cfg.Store).
		WithLogger(logger).
		WithContextKey(cfg.Config.GetContextKey())

	app := cfg.App

	app.Post("/auth/register", auth.RegisterPost)
	app.Post("/auth/login", auth.LoginPost)

	app.Get("/admin/pending", adminOnly, admin.PendingList)
	app.Post("/admin/approve/:id", adminOnly, admin.Approve)
	app.Post("/admin/reject/:id", adminOnly, admin.Reject)

	app.Post("/doctor/prescription", doctorOnly, clinical.PrescriptionCreate)

	// patient reads only need a verified identity, not a specific role
	// by-token registers before :id so card tokens never parse as ids
	app.Get("/patient/by-token/:token", authenticated, clinical.PatientByToken)
	app.Get("/patient/:id", authenticated, clinical.PatientShow)
	app.Get("/patient/:id/prescriptions", authenticated, clinical.PatientPrescriptions)
	app.Get("/patient/:id/documents", authenticated, clinical.PatientDocuments)

	app.Post("/upload/patient/:patientId", authenticated, upload.DocumentUpload)
}
