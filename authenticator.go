package clinic

import (
	"context"
)

// Auther glues the identity provider to the token issuer.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator. The signing key and
// expiration travel in the Config object rather than being read from
// process globals, so tests can substitute both.
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	return &Auther{
		provider: provider,
		logger:   defLogger{},
		tokenService: NewTokenService(
			[]byte(opts.GetSigningKey()),
			opts.GetTokenExpiration(),
			opts.GetIssuer(),
			nil,
		),
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService sets a custom token service, mostly for tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies credentials and the approval gate, then mints a
// signed assertion of {id, role} valid for the configured window.
func (s *Auther) Login(ctx context.Context, email, password string) (string, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login verify identity error", "error", err)
		return "", nil, err
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return "", nil, err
	}

	return token, identity, nil
}

var _ Authenticator = (*Auther)(nil)
