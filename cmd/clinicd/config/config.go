package config

import (
	"fmt"
	"time"

	clinic "github.com/medikeep/clinic"
)

// BaseConfig is the application configuration container. Values load
// from config files and environment through go-config's koanf
// providers.
type BaseConfig struct {
	Server      Server      `koanf:"server" json:"server"`
	Auth        Auth        `koanf:"auth" json:"auth"`
	Persistence Persistence `koanf:"persistence" json:"persistence"`
	Uploads     Uploads     `koanf:"uploads" json:"uploads"`
	Debug       bool        `koanf:"debug" json:"debug"`
}

type Server struct {
	Address string `koanf:"address" json:"address"`
}

type Auth struct {
	SigningKey      string `koanf:"signing_key" json:"signing_key"`
	TokenExpiration int    `koanf:"token_expiration" json:"token_expiration"`
	Issuer          string `koanf:"issuer" json:"issuer"`
	ContextKey      string `koanf:"context_key" json:"context_key"`
	AuthScheme      string `koanf:"auth_scheme" json:"auth_scheme"`
}

type Persistence struct {
	Driver                string `koanf:"driver" json:"driver"`
	DSN                   string `koanf:"dsn" json:"dsn"`
	Debug                 bool   `koanf:"debug" json:"debug"`
	PingTimeoutExpression string `koanf:"ping_timeout" json:"ping_timeout"`
}

type Uploads struct {
	Dir string `koanf:"dir" json:"dir"`
}

func (a BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	return nil
}

func (a *BaseConfig) GetServer() Server {
	return a.Server
}

func (a *BaseConfig) GetAuth() Auth {
	return a.Auth
}

func (a *BaseConfig) GetPersistence() Persistence {
	return a.Persistence
}

func (a *BaseConfig) GetUploads() Uploads {
	return a.Uploads
}

func (a *BaseConfig) GetDebug() bool {
	return a.Debug
}

func (s Server) GetAddress() string {
	if s.Address == "" {
		return ":9191"
	}
	return s.Address
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetTokenExpiration() int {
	if a.TokenExpiration == 0 {
		return clinic.DefaultTokenExpiration
	}
	return a.TokenExpiration
}

func (a Auth) GetIssuer() string {
	if a.Issuer == "" {
		return "clinic"
	}
	return a.Issuer
}

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file:clinic.db?cache=shared&mode=rwc"
	}
	return p.DSN
}

func (p Persistence) GetServer() string {
	return p.GetDSN()
}

func (p Persistence) GetOtelIdentifier() string {
	return ""
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}

	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

func (u Uploads) GetDir() string {
	if u.Dir == "" {
		return "uploads"
	}
	return u.Dir
}

var _ clinic.Config = (*Auth)(nil)
