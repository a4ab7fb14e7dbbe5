package clinic

import (
	"github.com/goliatone/go-errors"
)

// The full failure taxonomy of the auth gate. Every route handler is
// responsible for converting internal failures into one of these before
// the response leaves the boundary; nothing propagates uncaught.

// ErrMissingToken is returned when a protected request carries no
// authorization header at all.
var ErrMissingToken = errors.New("Missing token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("MISSING_TOKEN")

// ErrMalformedHeader is returned when the authorization header is not
// exactly a two part "Bearer <token>" value.
var ErrMalformedHeader = errors.New("Malformed auth header", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("MALFORMED_AUTH_HEADER")

// ErrTokenInvalid covers bad signatures, a non matching signing key and
// expired tokens alike; the verifier does not distinguish them.
var ErrTokenInvalid = errors.New("Invalid or expired token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_OR_EXPIRED_TOKEN")

// ErrInvalidCredentials merges unknown-email and wrong-password so the
// response cannot be used for account enumeration.
var ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrPendingApproval blocks login for registrations an admin has not
// yet approved. Deliberately distinguishable from ErrInvalidCredentials.
var ErrPendingApproval = errors.New("Account pending admin approval", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("PENDING_APPROVAL")

// ErrForbidden signals "authenticated but not permitted": the token was
// valid but its role does not satisfy the route policy.
var ErrForbidden = errors.New("Forbidden", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("FORBIDDEN")

// ErrEmailTaken surfaces the store's email uniqueness constraint.
// The original service answers 400 here, not 409.
var ErrEmailTaken = errors.New("Email already registered", errors.CategoryConflict).
	WithCode(errors.CodeBadRequest).
	WithTextCode("EMAIL_TAKEN")

// RoleDeniedError builds the Forbidden variant for a role gated route,
// e.g. "Doctor only" or "Admin only".
func RoleDeniedError(required UserRole) *errors.Error {
	e := ErrForbidden.Clone()
	switch required {
	case RoleAdmin:
		e.Message = "Admin only"
	case RoleDoctor:
		e.Message = "Doctor only"
	default:
		e.Message = "Forbidden"
	}
	return e
}

// NotFoundError reports a missing referenced entity (user, patient).
func NotFoundError(msg string) *errors.Error {
	return errors.New(msg, errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode("NOT_FOUND")
}

// ValidationError reports a request payload failing its rules.
func ValidationError(msg string) *errors.Error {
	return errors.New(msg, errors.CategoryValidation).
		WithCode(errors.CodeBadRequest).
		WithTextCode("VALIDATION_ERROR")
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == ErrTokenInvalid.TextCode
	}
	return false
}

// IsPendingApprovalError checks for the approval gate rejection
func IsPendingApprovalError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == ErrPendingApproval.TextCode
	}
	return false
}
