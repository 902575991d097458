// Package identity keeps the logged in username in a protected cookie. There
// is no server side session table: the cookie is the session.
package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Identity is the per-request view of the identity cookie.
type Identity interface {
	// Remember writes a cookie for username on the response.
	Remember(username string) error
	// Forget clears the cookie on the response.
	Forget()
	// Current returns the username carried by the request cookie, taking
	// any Remember/Forget earlier in the same request into account.
	Current() (string, bool)
}

// CookiePolicy decides how identity cookies are named, protected and scoped.
type CookiePolicy struct {
	codec    Codec
	name     string
	path     string
	domain   string
	secure   bool
	sameSite http.SameSite
	logger   zerolog.Logger
}

type Option func(*CookiePolicy)

func WithName(name string) Option {
	return func(p *CookiePolicy) { p.name = name }
}

func WithSecure(secure bool) Option {
	return func(p *CookiePolicy) { p.secure = secure }
}

// WithPath scopes the cookie to path. An empty path keeps "/".
func WithPath(path string) Option {
	return func(p *CookiePolicy) {
		if path != "" {
			p.path = path
		}
	}
}

// WithDomain shares the cookie with subdomains of domain. Empty means host-only.
func WithDomain(domain string) Option {
	return func(p *CookiePolicy) { p.domain = domain }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *CookiePolicy) { p.logger = logger }
}

// NewCookiePolicy defaults to a secure, HttpOnly, Lax cookie named
// "auth-identity" on path "/".
func NewCookiePolicy(codec Codec, opts ...Option) *CookiePolicy {
	p := &CookiePolicy{
		codec:    codec,
		name:     "auth-identity",
		path:     "/",
		secure:   true,
		sameSite: http.SameSiteLaxMode,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CookiePolicy) Name() string {
	return p.name
}

func (p *CookiePolicy) Secure() bool {
	return p.secure
}

// For binds the policy to one request/response pair.
func (p *CookiePolicy) For(w http.ResponseWriter, r *http.Request) Identity {
	return &cookieIdentity{policy: p, w: w, r: r}
}

// Middleware makes the request's Identity available through FromContext.
func (p *CookiePolicy) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := p.For(w, r)
		next(w, r.WithContext(NewContext(r.Context(), id)))
	}
}

func (p *CookiePolicy) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     p.name,
		Value:    value,
		Path:     p.path,
		Domain:   p.domain,
		Secure:   p.secure,
		HttpOnly: true,
		SameSite: p.sameSite,
	}
}

type cookieIdentity struct {
	policy   *CookiePolicy
	w        http.ResponseWriter
	r        *http.Request
	resolved bool
	username string
}

func (c *cookieIdentity) Remember(username string) error {
	value, err := c.policy.codec.Encode(username)
	if err != nil {
		return err
	}
	http.SetCookie(c.w, c.policy.cookie(value))
	c.resolved, c.username = true, username
	return nil
}

func (c *cookieIdentity) Forget() {
	cookie := c.policy.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(c.w, cookie)
	c.resolved, c.username = true, ""
}

func (c *cookieIdentity) Current() (string, bool) {
	if !c.resolved {
		c.resolved = true
		c.username = c.load()
	}
	return c.username, c.username != ""
}

func (c *cookieIdentity) load() string {
	cookie, err := c.r.Cookie(c.policy.name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	username, err := c.policy.codec.Decode(cookie.Value)
	if err != nil {
		// Tampered, expired key or foreign cookie: same as no session.
		c.policy.logger.Debug().Err(err).Str("cookie", c.policy.name).Msg("Ignoring undecodable identity cookie")
		return ""
	}
	return username
}

type contextKey struct{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the Identity installed by CookiePolicy.Middleware.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id == nil {
		return nil, ErrNoIdentity
	}
	return id, nil
}
