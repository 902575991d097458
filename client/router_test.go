package client_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-session/client"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	authed := client.Authenticated{Username: "alice"}

	tests := []struct {
		name   string
		base   string
		url    string
		status client.AuthStatus
		want   client.Page
	}{
		{"root", "http://localhost:8080", "http://localhost:8080/", authed, client.Dashboard{}},
		{"root without slash", "http://localhost:8080", "http://localhost:8080", authed, client.Dashboard{}},
		{"login", "http://localhost:8080", "http://localhost:8080/login", authed, client.LoginForm{}},
		{"login trailing slash", "http://localhost:8080", "http://localhost:8080/login/", authed, client.LoginForm{}},
		{"unknown", "http://localhost:8080", "http://localhost:8080/settings", authed, client.NotFound{}},
		{"login subpath", "http://localhost:8080", "http://localhost:8080/login/extra", authed, client.LoginForm{}},
		{"nested unknown", "http://localhost:8080", "http://localhost:8080/settings/login", authed, client.NotFound{}},
		{"query ignored", "http://localhost:8080", "http://localhost:8080/?next=x", authed, client.Dashboard{}},
		{"pending root", "http://localhost:8080", "http://localhost:8080/", client.Pending{}, client.Dashboard{}},
		{"pending unknown", "http://localhost:8080", "http://localhost:8080/x", client.Pending{}, client.NotFound{}},
		{"anonymous root", "http://localhost:8080", "http://localhost:8080/", client.Anonymous{}, client.LoginForm{}},
		{"anonymous unknown", "http://localhost:8080", "http://localhost:8080/x", client.Anonymous{}, client.LoginForm{}},
		{"base path root", "http://example.com/app/", "http://example.com/app/", authed, client.Dashboard{}},
		{"base path login", "http://example.com/app", "http://example.com/app/login", authed, client.LoginForm{}},
		{"outside base path", "http://example.com/app", "http://example.com/other/login", authed, client.NotFound{}},
		{"base path prefix only", "http://example.com/app", "http://example.com/application", authed, client.NotFound{}},
		{"other host", "http://example.com", "http://evil.example.com/", authed, client.NotFound{}},
		{"relative url", "http://example.com", "/login", authed, client.LoginForm{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, client.Resolve(tt.base, tt.url, tt.status))
		})
	}
}
