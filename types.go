package clinic

import (
	"context"
	"fmt"
	"strings"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Name() string
	Email() string
	Role() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, Identity, error)
}

// Config holds auth options. Issuer and verifier receive it at
// construction so tests can substitute values without touching
// process state.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetContextKey() string
	GetAuthScheme() string
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByID(ctx context.Context, id string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(formatLogLine("ERR", msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(formatLogLine("WRN", msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(formatLogLine("INF", msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println(formatLogLine("DBG", msg, args...))
}

// formatLogLine renders a message plus slog style key/value pairs. A
// trailing key with no value is printed bare.
func formatLogLine(level, msg string, args ...any) string {
	var b strings.Builder
	b.WriteString("[" + level + "] CLINIC " + msg)

	i := 0
	for ; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if i < len(args) {
		fmt.Fprintf(&b, " %v", args[i])
	}

	return b.String()
}
