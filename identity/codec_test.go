package identity_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-auth-session/identity"
	"github.com/stretchr/testify/require"
)

const (
	secretA = "this-is-a-very-long-secret-key-32-chars-long"
	secretB = "this-is-old-very-long-secret-key-32-chars-ok"
)

func codecs(t *testing.T, secrets ...string) map[string]identity.Codec {
	t.Helper()
	out := map[string]identity.Codec{}
	for _, mode := range []string{identity.ModeSealed, identity.ModeSigned} {
		c, err := identity.NewCodec(mode, "auth-identity", secrets)
		require.NoError(t, err)
		out[mode] = c
	}
	return out
}

func TestNewCodec_Secrets(t *testing.T) {
	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{name: "no secrets", secrets: nil, wantErr: identity.ErrNoSecret},
		{name: "empty secrets", secrets: []string{"", ""}, wantErr: identity.ErrNoSecret},
		{name: "too short", secrets: []string{"short"}, wantErr: identity.ErrSecretTooShort},
		{name: "valid", secrets: []string{secretA}},
		{name: "rotation", secrets: []string{secretA, secretB}},
	}

	for _, tt := range tests {
		for _, mode := range []string{identity.ModeSealed, identity.ModeSigned} {
			t.Run(mode+"/"+tt.name, func(t *testing.T) {
				_, err := identity.NewCodec(mode, "auth-identity", tt.secrets)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
			})
		}
	}

	t.Run("unknown mode", func(t *testing.T) {
		_, err := identity.NewCodec("rot13", "auth-identity", []string{secretA})
		require.Error(t, err)
	})
}

func TestCodec_EncodeDecode(t *testing.T) {
	for mode, c := range codecs(t, secretA) {
		t.Run(mode, func(t *testing.T) {
			value, err := c.Encode("alice")
			require.NoError(t, err)
			require.NotContains(t, value, ";")

			username, err := c.Decode(value)
			require.NoError(t, err)
			require.Equal(t, "alice", username)

			_, err = c.Encode("")
			require.ErrorIs(t, err, identity.ErrInvalidCookie)
		})
	}
}

func TestSealedCodec_Opaque(t *testing.T) {
	c, err := identity.NewSealedCodec("auth-identity", []string{secretA})
	require.NoError(t, err)

	first, err := c.Encode("alice")
	require.NoError(t, err)
	second, err := c.Encode("alice")
	require.NoError(t, err)

	require.NotEqual(t, first, second, "fresh nonce per cookie")
	require.NotContains(t, first, "alice")
}

func TestSealedCodec_BoundToCookieName(t *testing.T) {
	a, err := identity.NewSealedCodec("cookie-a", []string{secretA})
	require.NoError(t, err)
	b, err := identity.NewSealedCodec("cookie-b", []string{secretA})
	require.NoError(t, err)

	value, err := a.Encode("alice")
	require.NoError(t, err)

	_, err = b.Decode(value)
	require.ErrorIs(t, err, identity.ErrInvalidCookie)
}

func TestCodec_RejectsTampering(t *testing.T) {
	for mode, c := range codecs(t, secretA) {
		t.Run(mode, func(t *testing.T) {
			value, err := c.Encode("alice")
			require.NoError(t, err)

			flipped := []byte(value)
			i := len(flipped) / 2
			if flipped[i] == 'A' {
				flipped[i] = 'B'
			} else {
				flipped[i] = 'A'
			}

			for _, bad := range []string{"", "garbage", string(flipped), value[:len(value)-4]} {
				_, err := c.Decode(bad)
				require.ErrorIs(t, err, identity.ErrInvalidCookie, "value %q", bad)
			}
		})
	}
}

func TestCodec_KeyRotation(t *testing.T) {
	old := codecs(t, secretB)
	rotated := codecs(t, secretA, secretB)
	unrelated := codecs(t, strings.Repeat("z", 40))

	for mode := range old {
		t.Run(mode, func(t *testing.T) {
			value, err := old[mode].Encode("alice")
			require.NoError(t, err)

			username, err := rotated[mode].Decode(value)
			require.NoError(t, err)
			require.Equal(t, "alice", username)

			_, err = unrelated[mode].Decode(value)
			require.ErrorIs(t, err, identity.ErrInvalidCookie)
		})
	}
}
