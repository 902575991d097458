package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

const basicScheme = "Basic"

// Credentials is a username/password pair carried by HTTP Basic auth.
type Credentials struct {
	Username string
	Password string
}

// Header encodes the credentials as an Authorization header value.
func (c Credentials) Header() string {
	return basicScheme + " " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

// ParseBasic reads "Basic base64(username:password)". The scheme is matched
// case-insensitively, the password may contain colons and may be empty, the
// username may not.
func ParseBasic(header string) (Credentials, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Credentials{}, fmt.Errorf("%w: %w", ErrMalformedCredentials, ErrMissingCredentials)
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, basicScheme) {
		return Credentials{}, fmt.Errorf("%w: expected %s scheme", ErrMalformedCredentials, basicScheme)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", ErrMalformedCredentials, err)
	}
	if !utf8.Valid(decoded) {
		return Credentials{}, fmt.Errorf("%w: credentials are not valid UTF-8", ErrMalformedCredentials)
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Credentials{}, fmt.Errorf("%w: missing ':' separator", ErrMalformedCredentials)
	}
	if username == "" {
		return Credentials{}, fmt.Errorf("%w: empty username", ErrMalformedCredentials)
	}

	return Credentials{Username: username, Password: password}, nil
}
