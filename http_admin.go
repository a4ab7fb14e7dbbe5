package clinic

import (
	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// AdminController drives the approval queue. All routes sit behind the
// admin role gate.
type AdminController struct {
	Logger Logger
	Repo   RepositoryManager
}

func NewAdminController(repo RepositoryManager) *AdminController {
	if repo == nil {
		panic("Missing RepositoryManager in admin controller...")
	}

	return &AdminController{
		Logger: defLogger{},
		Repo:   repo,
	}
}

func (a *AdminController) WithLogger(logger Logger) *AdminController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// PendingList returns every account still waiting for approval,
// oldest first.
func (a *AdminController) PendingList(c *fiber.Ctx) error {
	records, err := a.Repo.Users().ListPending(c.UserContext())
	if err != nil {
		a.Logger.Error("admin pending list error", "error", err)
		return RespondError(c, err)
	}

	users := make([]fiber.Map, 0, len(records))
	for _, u := range records {
		users = append(users, fiber.Map{
			"id":         u.ID,
			"name":       u.Name,
			"email":      u.Email,
			"role":       u.Role,
			"created_at": u.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"pending": users,
	})
}

// Approve flips the account's pending flag so the user can log in.
func (a *AdminController) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return RespondError(c, ValidationError("Invalid user id"))
	}

	user, err := a.Repo.Users().Approve(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(c, NotFoundError("User not found"))
		}
		a.Logger.Error("admin approve error", "error", err, "id", id.String())
		return RespondError(c, err)
	}

	a.Logger.Info("user approved", "id", id.String(), "role", user.Role.String())

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":       user.ID,
			"name":     user.Name,
			"email":    user.Email,
			"role":     user.Role,
			"approved": user.Approved,
		},
	})
}

// Reject removes a registration. Rejecting an id that was already
// rejected succeeds, so retried requests stay safe.
func (a *AdminController) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return RespondError(c, ValidationError("Invalid user id"))
	}

	if err := a.Repo.Users().Remove(c.UserContext(), id); err != nil {
		a.Logger.Error("admin reject error", "error", err, "id", id.String())
		return RespondError(c, err)
	}

	a.Logger.Info("registration rejected", "id", id.String())

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Registration rejected",
	})
}
