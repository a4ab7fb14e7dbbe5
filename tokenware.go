package clinic

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenwareConfig drives the HTTP token gate. Every protected route
// goes through the same handler; role restrictions compose on top of
// token verification instead of being re-implemented per route.
type TokenwareConfig struct {
	TokenService TokenService
	// ContextKey is the fiber.Locals key the verified claims are
	// stored under.
	ContextKey string
	// AuthScheme is the expected Authorization prefix, e.g. "Bearer".
	AuthScheme string
	// RequiredRole, when set, rejects verified identities whose role
	// does not match exactly. No role hierarchy: admin does not imply
	// doctor.
	RequiredRole UserRole
	Logger       Logger
}

func (c TokenwareConfig) withDefaults() TokenwareConfig {
	if c.ContextKey == "" {
		c.ContextKey = "user"
	}
	if c.AuthScheme == "" {
		c.AuthScheme = "Bearer"
	}
	if c.Logger == nil {
		c.Logger = defLogger{}
	}
	return c
}

// Tokenware returns a fiber handler that verifies the bearer token and
// optionally the caller's role, making the verified claims available
// through fiber.Locals and the request context.
func Tokenware(cfg TokenwareConfig) fiber.Handler {
	cfg = cfg.withDefaults()

	return func(c *fiber.Ctx) error {
		claims, err := verifyRequest(c, cfg)
		if err != nil {
			return RespondError(c, err)
		}

		if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole.String()) {
			cfg.Logger.Warn("tokenware role denied",
				"required", cfg.RequiredRole.String(),
				"actual", claims.Role(),
				"subject", claims.Subject(),
			)
			return RespondError(c, RoleDeniedError(cfg.RequiredRole))
		}

		c.Locals(cfg.ContextKey, claims)
		c.SetUserContext(WithClaimsContext(c.UserContext(), claims))

		return c.Next()
	}
}

func verifyRequest(c *fiber.Ctx, cfg TokenwareConfig) (AuthClaims, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, ErrMissingToken
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != cfg.AuthScheme || parts[1] == "" {
		return nil, ErrMalformedHeader
	}

	claims, err := cfg.TokenService.Validate(parts[1])
	if err != nil {
		cfg.Logger.Warn("tokenware token rejected", "error", err)
		return nil, err
	}

	return claims, nil
}
