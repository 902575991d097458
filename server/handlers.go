package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-session/auth"
	"github.com/jrsteele09/go-auth-session/identity"
	apperrors "github.com/jrsteele09/go-auth-session/internal/errors"
)

// Request outcomes recorded in auth_requests_total.
const (
	outcomeAuthenticated = "authenticated"
	outcomeAnonymous     = "anonymous"
	outcomeBadRequest    = "bad_request"
	outcomeCancelled     = "cancelled"
	outcomeLoggedOut     = "logged_out"
	outcomeError         = "error"
)

// CheckHandler reports the username held in the identity cookie. An anonymous
// caller gets 200 with an empty body, not 401.
func (s *Server) CheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.FromContext(r.Context())
		if err != nil {
			s.internalError(w, r, "check", err)
			return
		}

		username, ok := id.Current()
		if ok {
			s.metrics.Observe("check", outcomeAuthenticated)
		} else {
			s.metrics.Observe("check", outcomeAnonymous)
		}
		writeText(w, http.StatusOK, username)
	}
}

// LoginHandler accepts any Basic credentials and remembers the username.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds, err := auth.ParseBasic(r.Header.Get("Authorization"))
		if err == nil {
			err = s.validator.Validate(creds)
		}
		if err != nil {
			s.logger.Debug().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg("Rejected login")
			s.metrics.Observe("login", outcomeBadRequest)
			http.Error(w, "400 - Bad Request: "+err.Error(), http.StatusBadRequest)
			return
		}

		if delay := s.config.GetLoginDelay(); delay > 0 {
			if !sleepContext(r, delay) {
				s.metrics.Observe("login", outcomeCancelled)
				return
			}
		}

		id, err := identity.FromContext(r.Context())
		if err != nil {
			s.internalError(w, r, "login", err)
			return
		}
		if err := id.Remember(creds.Username); err != nil {
			s.internalError(w, r, "login", err)
			return
		}

		s.logger.Info().Str("username", creds.Username).Str("request_id", RequestIDFromContext(r.Context())).Msg("User logged in")
		s.metrics.Observe("login", outcomeAuthenticated)
		writeText(w, http.StatusOK, creds.Username)
	}
}

// LogoutHandler clears the identity cookie. Logging out twice is not an error.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.FromContext(r.Context())
		if err != nil {
			s.internalError(w, r, "logout", err)
			return
		}
		id.Forget()
		s.metrics.Observe("logout", outcomeLoggedOut)
		w.WriteHeader(http.StatusOK)
	}
}

// IndexHandler renders the client entry point.
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{
			"AppName": s.config.GetAppName(),
			"BaseURL": s.config.GetBaseURL(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.logger.Error().Err(err).Msg("Failed to render index")
		}
	}
}

// FallbackHandler serves the entry point for unknown GET and HEAD paths so the
// client can route them. Any other method on an unknown path is a 404.
func (s *Server) FallbackHandler() http.HandlerFunc {
	index := s.IndexHandler()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		index(w, r)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "ok")
	}
}

// NoContentHandler answers CORS preflight requests once the middleware has set the headers.
func (s *Server) NoContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	err = apperrors.Wrapf(err, "%w: %s", apperrors.ErrInternal, endpoint)
	s.logger.Error().Err(err).Str("endpoint", endpoint).Str("request_id", RequestIDFromContext(r.Context())).Msg("Request failed")
	s.metrics.Observe(endpoint, outcomeError)
	http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// sleepContext waits for d and reports false if the client went away first.
func sleepContext(r *http.Request, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}
