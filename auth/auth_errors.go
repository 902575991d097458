package auth

import apperrors "github.com/jrsteele09/go-auth-session/internal/errors"

var (
	// ErrMalformedCredentials is returned for any Authorization header that is
	// absent or cannot be read as Basic credentials. Handlers map it to 400.
	ErrMalformedCredentials = apperrors.ErrMalformedCredentials
	// ErrMissingCredentials additionally marks the header-absent case.
	ErrMissingCredentials = apperrors.ErrMissingCredentials
)
