package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignedCodec stores the username as the subject of an HS256 JWT. The value
// is tamper proof but readable by anyone holding the cookie.
type SignedCodec struct {
	issuer string
	keys   map[string][]byte // kid -> key
	kids   []string          // kids[0] signs
	now    func() time.Time
}

var _ Codec = (*SignedCodec)(nil)

func NewSignedCodec(cookieName string, secrets []string) (*SignedCodec, error) {
	keys, err := deriveKeys(secrets, "identity-cookie/signed/v1")
	if err != nil {
		return nil, err
	}

	c := &SignedCodec{
		issuer: cookieName,
		keys:   make(map[string][]byte, len(keys)),
		now:    time.Now,
	}
	for _, key := range keys {
		sum := sha256.Sum256(key)
		kid := hex.EncodeToString(sum[:4])
		c.keys[kid] = key
		c.kids = append(c.kids, kid)
	}
	return c, nil
}

func (c *SignedCodec) Encode(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("%w: empty username", ErrInvalidCookie)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:   c.issuer,
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(c.now()),
	})
	token.Header["kid"] = c.kids[0]

	signed, err := token.SignedString(c.keys[c.kids[0]])
	if err != nil {
		return "", fmt.Errorf("failed to sign identity: %w", err)
	}
	return signed, nil
}

func (c *SignedCodec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, c.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCookie, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidCookie)
	}
	return claims.Subject, nil
}

func (c *SignedCodec) verificationKey(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	key, ok := c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}
