package clinic

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// RespondError maps rich errors to an HTTP status and a stable JSON
// envelope. Unknown errors become opaque 500s so internals never leak
// to clients.
func RespondError(c *fiber.Ctx, err error) error {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		rich = goerrors.Wrap(err, goerrors.CategoryInternal, "Internal server error").
			WithCode(fiber.StatusInternalServerError).
			WithTextCode("INTERNAL_ERROR")
	}

	status := rich.Code
	if status == 0 {
		status = statusForCategory(rich.Category)
	}

	message := rich.Message
	if status == fiber.StatusInternalServerError {
		message = "Internal server error"
	}

	payload := fiber.Map{
		"success": false,
		"message": message,
	}
	if rich.TextCode != "" {
		payload["code"] = rich.TextCode
	}

	return c.Status(status).JSON(payload)
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryValidation, goerrors.CategoryConflict:
		return fiber.StatusBadRequest
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
