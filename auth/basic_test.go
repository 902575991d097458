package auth_test

import (
	"encoding/base64"
	"testing"

	"github.com/jrsteele09/go-auth-session/auth"
	"github.com/stretchr/testify/require"
)

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestParseBasic(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		creds, err := auth.ParseBasic("Basic " + encode("alice:secret"))
		require.NoError(t, err)
		require.Equal(t, auth.Credentials{Username: "alice", Password: "secret"}, creds)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		creds, err := auth.ParseBasic("basic " + encode("alice:x"))
		require.NoError(t, err)
		require.Equal(t, "alice", creds.Username)
	})

	t.Run("password keeps colons", func(t *testing.T) {
		creds, err := auth.ParseBasic("Basic " + encode("bob:a:b:c"))
		require.NoError(t, err)
		require.Equal(t, "a:b:c", creds.Password)
	})

	t.Run("empty password", func(t *testing.T) {
		creds, err := auth.ParseBasic("Basic " + encode("bob:"))
		require.NoError(t, err)
		require.Equal(t, "", creds.Password)
	})
}

func TestParseBasic_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "bearer scheme", header: "Bearer abc.def.ghi"},
		{name: "no token", header: "Basic"},
		{name: "bad base64", header: "Basic !!!not-base64!!!"},
		{name: "no separator", header: "Basic " + encode("alice")},
		{name: "empty username", header: "Basic " + encode(":secret")},
		{name: "invalid utf8", header: "Basic " + base64.StdEncoding.EncodeToString([]byte{0xff, ':', 'x'})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ParseBasic(tt.header)
			require.ErrorIs(t, err, auth.ErrMalformedCredentials)
			require.NotErrorIs(t, err, auth.ErrMissingCredentials)
		})
	}

	t.Run("missing header", func(t *testing.T) {
		_, err := auth.ParseBasic("  ")
		require.ErrorIs(t, err, auth.ErrMalformedCredentials)
		require.ErrorIs(t, err, auth.ErrMissingCredentials)
	})
}

func TestCredentials_HeaderRoundTrip(t *testing.T) {
	in := auth.Credentials{Username: "alice@example.com", Password: "p:ss word"}
	out, err := auth.ParseBasic(in.Header())
	require.NoError(t, err)
	require.Equal(t, in, out)
}
