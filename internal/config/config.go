package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	apperrors "github.com/jrsteele09/go-auth-session/internal/errors"
)

type Config interface {
	EnvConfig
	CookieConfig
	CorsConfig
	ServerConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
	GetLogFile() string
	IsDev() bool
}

type CookieConfig interface {
	GetCookieName() string
	GetCookieSecrets() []string
	GetCookieSecure() bool
	GetCookieMode() string
	GetCookiePath() string
	GetCookieDomain() string
	GeneratedSecret() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type ServerConfig interface {
	GetLoginDelay() time.Duration
	GetReadTimeout() time.Duration
	GetWriteTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Cookie
	Cors
	Timings
}

// New reads an optional .env file and then the process environment.
func New() (Config, error) {
	// A missing .env file is the normal case outside local development
	_ = godotenv.Load()

	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, apperrors.Wrapf(err, "[config New] %w", apperrors.ErrInvalidConfig)
	}
	if err := c.Cookie.resolve(c.EnvVars.IsDev()); err != nil {
		return nil, apperrors.Wrapf(err, "[config New]")
	}
	return c, nil
}

// Cookie holds the identity cookie policy.
type Cookie struct {
	Name      string   `env:"COOKIE_NAME" envDefault:"auth-identity"`
	Secrets   []string `env:"COOKIE_SECRETS" envSeparator:","`
	SecureRaw string   `env:"COOKIE_SECURE"`
	Mode      string   `env:"COOKIE_MODE" envDefault:"sealed"`
	Path      string   `env:"COOKIE_PATH" envDefault:"/"`
	Domain    string   `env:"COOKIE_DOMAIN"`

	secure    bool
	generated bool
}

var _ CookieConfig = Cookie{}

const (
	CookieModeSealed = "sealed"
	CookieModeSigned = "signed"
)

func (c *Cookie) resolve(dev bool) error {
	switch c.Mode {
	case CookieModeSealed, CookieModeSigned:
	default:
		return fmt.Errorf("%w: COOKIE_MODE %q must be %q or %q", apperrors.ErrInvalidConfig, c.Mode, CookieModeSealed, CookieModeSigned)
	}

	c.secure = !dev
	if c.SecureRaw != "" {
		secure, err := strconv.ParseBool(c.SecureRaw)
		if err != nil {
			return apperrors.Wrapf(err, "%w: COOKIE_SECURE", apperrors.ErrInvalidConfig)
		}
		c.secure = secure
	}

	secrets := make([]string, 0, len(c.Secrets))
	for _, s := range c.Secrets {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	c.Secrets = secrets
	if len(c.Secrets) > 0 {
		return nil
	}
	if !dev {
		return apperrors.ErrNoSecret
	}
	secret, err := randomSecret()
	if err != nil {
		return err
	}
	c.Secrets = []string{secret}
	c.generated = true
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", apperrors.Wrapf(err, "generate cookie secret")
	}
	return hex.EncodeToString(b), nil
}

func (c Cookie) GetCookieName() string {
	return c.Name
}

func (c Cookie) GetCookieSecrets() []string {
	return c.Secrets
}

func (c Cookie) GetCookieSecure() bool {
	return c.secure
}

func (c Cookie) GetCookieMode() string {
	return c.Mode
}

func (c Cookie) GetCookiePath() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}

// GetCookieDomain is empty for a host-only cookie.
func (c Cookie) GetCookieDomain() string {
	return c.Domain
}

// GeneratedSecret reports whether the secret was made up at startup, which
// means cookies will not survive a restart.
func (c Cookie) GeneratedSecret() bool {
	return c.generated
}

type Timings struct {
	LoginDelay   time.Duration `env:"LOGIN_DELAY" envDefault:"0s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

var _ ServerConfig = Timings{}

// GetLoginDelay is an artificial pause before answering /auth/login. It only
// exists to reproduce slow logins locally.
func (t Timings) GetLoginDelay() time.Duration {
	return t.LoginDelay
}

func (t Timings) GetReadTimeout() time.Duration {
	return t.ReadTimeout
}

func (t Timings) GetWriteTimeout() time.Duration {
	return t.WriteTimeout
}
