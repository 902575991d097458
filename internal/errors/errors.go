package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session auth server and client
var (
	// Credential errors
	ErrMissingCredentials   = errors.New("missing credentials")
	ErrMalformedCredentials = errors.New("malformed credentials")

	// Identity cookie errors
	ErrNoIdentity     = errors.New("no identity")
	ErrInvalidCookie  = errors.New("invalid identity cookie")
	ErrNoSecret       = errors.New("no cookie secret configured")
	ErrSecretTooShort = errors.New("cookie secret too short")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf prefixes err with a formatted message, keeping it in the chain.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
