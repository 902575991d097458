package auth

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MaxUsernameLength keeps the identity cookie well under the 4 KB browsers accept.
const MaxUsernameLength = 256

// Validator holds the rules applied to credentials after they have been parsed.
// Passwords are not checked: any password is accepted.
type Validator struct {
	maxUsernameLength int
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{maxUsernameLength: MaxUsernameLength}
}

// Validate checks creds and returns an error wrapping ErrMalformedCredentials.
func (v *Validator) Validate(creds Credentials) error {
	return v.ValidateUsername(creds.Username)
}

// ValidateUsername rejects names that are empty, too long or contain control
// characters, since the name is echoed back in response bodies.
func (v *Validator) ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: empty username", ErrMalformedCredentials)
	}
	if n := utf8.RuneCountInString(username); n > v.maxUsernameLength {
		return fmt.Errorf("%w: username is %d characters, the limit is %d", ErrMalformedCredentials, n, v.maxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: username contains control character %U", ErrMalformedCredentials, r)
		}
	}
	return nil
}
