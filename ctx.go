package clinic

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type contextKey string

const claimsContextKey contextKey = "clinic:claims"

// WithClaimsContext returns a copy of ctx carrying the verified claims.
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaimsContext retrieves verified claims from a context, if present.
func GetClaimsContext(ctx context.Context) (AuthClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(AuthClaims)
	return claims, ok
}

// GetClaimsFiber retrieves verified claims from a fiber request that
// went through the Tokenware gate.
func GetClaimsFiber(c *fiber.Ctx, contextKey string) (AuthClaims, bool) {
	claims, ok := c.Locals(contextKey).(AuthClaims)
	if ok {
		return claims, true
	}
	return GetClaimsContext(c.UserContext())
}
