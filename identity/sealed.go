package identity

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealedCodec encrypts the username with XChaCha20-Poly1305. The cookie name
// is bound as additional data so a value cannot be replayed under another name.
type SealedCodec struct {
	aeads []cipher.AEAD
	ad    []byte
}

var _ Codec = (*SealedCodec)(nil)

func NewSealedCodec(cookieName string, secrets []string) (*SealedCodec, error) {
	keys, err := deriveKeys(secrets, "identity-cookie/sealed/v1")
	if err != nil {
		return nil, err
	}

	aeads := make([]cipher.AEAD, 0, len(keys))
	for _, key := range keys {
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create cipher: %w", err)
		}
		aeads = append(aeads, aead)
	}

	return &SealedCodec{aeads: aeads, ad: []byte(cookieName)}, nil
}

func (c *SealedCodec) Encode(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("%w: empty username", ErrInvalidCookie)
	}

	aead := c.aeads[0]
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(username)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(username), c.ad)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *SealedCodec) Decode(value string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCookie, err)
	}

	for _, aead := range c.aeads {
		if len(raw) < aead.NonceSize()+aead.Overhead() {
			return "", fmt.Errorf("%w: value too short", ErrInvalidCookie)
		}
		nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
		plaintext, err := aead.Open(nil, nonce, ciphertext, c.ad)
		if err == nil && len(plaintext) > 0 {
			return string(plaintext), nil
		}
	}
	return "", ErrInvalidCookie
}
