package client

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStateViolation is returned by View for a dashboard shown to an anonymous
// client, which the machine never produces.
var ErrStateViolation = errors.New("state violation: dashboard without an authenticated user")

// View renders s as plain text.
func View(s Snapshot) (string, error) {
	var b strings.Builder
	switch page := s.Page.(type) {
	case LoginForm:
		renderLogin(&b, page)
	case Dashboard:
		switch status := s.Status.(type) {
		case Authenticated:
			renderDashboard(&b, status)
		case Pending:
			b.WriteString("Loading...\n")
		default:
			return "", fmt.Errorf("%w (status %T)", ErrStateViolation, s.Status)
		}
	case NotFound:
		fmt.Fprintf(&b, "Page not found: %s\n", s.URL)
	default:
		return "", fmt.Errorf("%w (page %T)", ErrStateViolation, s.Page)
	}

	if s.LastError != nil {
		fmt.Fprintf(&b, "Logout failed: %v\n", s.LastError)
	}
	return b.String(), nil
}

func renderLogin(b *strings.Builder, form LoginForm) {
	b.WriteString("Sign in\n")
	fmt.Fprintf(b, "  username: %s\n", form.Username)
	fmt.Fprintf(b, "  password: %s\n", strings.Repeat("*", len([]rune(form.Password))))
}

// renderDashboard only accepts an authenticated user, so an anonymous
// dashboard cannot be drawn by accident.
func renderDashboard(b *strings.Builder, user Authenticated) {
	fmt.Fprintf(b, "Dashboard\n  signed in as %s\n", user.Username)
}
