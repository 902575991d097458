package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	apperrors "github.com/jrsteele09/go-auth-session/internal/errors"
)

// ClientConfig holds the defaults for the command line client. Flags override them.
type ClientConfig struct {
	ServerURL      string        `env:"AUTH_SERVER_URL" envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"5s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"warn"`
}

func NewClientConfig() (ClientConfig, error) {
	_ = godotenv.Load()

	var c ClientConfig
	if err := env.Parse(&c); err != nil {
		return ClientConfig{}, apperrors.Wrapf(err, "[config NewClientConfig] %w", apperrors.ErrInvalidConfig)
	}
	return c, nil
}
