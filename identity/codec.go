package identity

import (
	"crypto/sha256"
	"fmt"
	"io"

	apperrors "github.com/jrsteele09/go-auth-session/internal/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	minSecretLength = 32
	keyLength       = 32

	ModeSealed = "sealed"
	ModeSigned = "signed"
)

var (
	ErrNoSecret       = apperrors.ErrNoSecret
	ErrSecretTooShort = apperrors.ErrSecretTooShort
	ErrInvalidCookie  = apperrors.ErrInvalidCookie
	ErrNoIdentity     = apperrors.ErrNoIdentity
)

// Codec turns a username into an opaque cookie value and back. Decode must
// reject any value it did not produce.
type Codec interface {
	Encode(username string) (string, error)
	Decode(value string) (string, error)
}

// NewCodec builds the codec for mode. The first secret protects new cookies,
// the rest are only used to read cookies issued before a key rotation.
func NewCodec(mode, cookieName string, secrets []string) (Codec, error) {
	switch mode {
	case ModeSealed, "":
		return NewSealedCodec(cookieName, secrets)
	case ModeSigned:
		return NewSignedCodec(cookieName, secrets)
	default:
		return nil, fmt.Errorf("unsupported cookie mode: %s", mode)
	}
}

// deriveKeys stretches each secret into a fixed size key bound to purpose so
// the same secret never keys two different constructions.
func deriveKeys(secrets []string, purpose string) ([][]byte, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	keys := make([][]byte, 0, len(secrets))
	for i, s := range secrets {
		if s == "" {
			continue
		}
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		key := make([]byte, keyLength)
		if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(s), nil, []byte(purpose)), key); err != nil {
			return nil, fmt.Errorf("derive key %d: %w", i, err)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, ErrNoSecret
	}
	return keys, nil
}
