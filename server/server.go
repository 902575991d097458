package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-auth-session/auth"
	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/jrsteele09/go-auth-session/internal/config"
	apperrors "github.com/jrsteele09/go-auth-session/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	router    chi.Router
	routes    []string
	config    config.Config
	identity  *identity.CookiePolicy
	validator *auth.Validator
	metrics   *Metrics
	registry  *prometheus.Registry
	logger    zerolog.Logger
}

type Option func(*Server)

// WithLogger replaces the default no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRegistry collects the server metrics into registry instead of a private one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) { s.registry = registry }
}

func New(config config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		router:    chi.NewRouter(),
		config:    config,
		logger:    zerolog.Nop(),
		validator: auth.NewValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.env = config.GetEnv()

	metrics, err := NewMetrics(s.registry)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Server New] failed to register metrics")
	}
	s.metrics = metrics

	codec, err := identity.NewCodec(config.GetCookieMode(), config.GetCookieName(), config.GetCookieSecrets())
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Server New] failed to create identity codec")
	}
	s.identity = identity.NewCookiePolicy(codec,
		identity.WithName(config.GetCookieName()),
		identity.WithSecure(config.GetCookieSecure()),
		identity.WithPath(config.GetCookiePath()),
		identity.WithDomain(config.GetCookieDomain()),
		identity.WithLogger(s.logger),
	)
	s.warnOnCookiePolicy()

	s.router.Use(middleware.Recoverer, s.RequestIDMiddleware)
	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RegisterRouteHandler registers handler for a "METHOD /path" pattern.
func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		panic("route pattern must be \"METHOD /path\": " + pattern)
	}
	s.routes = append(s.routes, pattern)
	s.router.Method(method, path, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.RegisterRouteHandler(pattern, http.HandlerFunc(handler))
}

func (s *Server) warnOnCookiePolicy() {
	if s.config.GeneratedSecret() {
		s.logger.Warn().Msg("COOKIE_SECRETS not set, using a random secret: sessions end when the server restarts")
	}
	if !s.identity.Secure() && !s.config.IsDev() {
		s.logger.Warn().Str("env", s.env).Msg("Identity cookie is not marked Secure outside development")
	}
	if s.identity.Secure() && strings.HasPrefix(s.config.GetBaseURL(), "http://") {
		s.logger.Warn().Str("base_url", s.config.GetBaseURL()).Msg("Secure identity cookie will not be sent over plain http")
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}
