package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-auth-session/client"
	"github.com/jrsteele09/go-auth-session/internal/config"
	"github.com/jrsteele09/go-auth-session/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	serverURL      string
	requestTimeout time.Duration
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "authclient",
	Short: "Command line client for the session auth server",
	Long: `authclient talks to the session auth server the way the browser client
does: Basic credentials on login, the identity cookie afterwards.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("authclient version {{.Version}}\n")

	defaults, err := config.NewClientConfig()
	if err != nil {
		defaults = config.ClientConfig{ServerURL: "http://localhost:8080", RequestTimeout: client.DefaultTimeout, LogLevel: "warn"}
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serverURL, "server", defaults.ServerURL, "auth server base URL (AUTH_SERVER_URL)")
	flags.DurationVar(&requestTimeout, "timeout", defaults.RequestTimeout, "per request timeout (AUTH_REQUEST_TIMEOUT)")
	flags.StringVar(&logLevel, "log-level", defaults.LogLevel, "log level (LOG_LEVEL)")
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func newLogger() zerolog.Logger {
	logger, _ := logging.New(os.Stderr, logging.Options{Level: logLevel, Console: true})
	return logger
}

func newTransport(logger zerolog.Logger) (*client.HTTPTransport, error) {
	return client.NewHTTPTransport(serverURL,
		client.WithTimeout(requestTimeout),
		client.WithTransportLogger(logger),
	)
}
