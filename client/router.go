package client

import (
	"net/url"
	"strings"
)

const loginPath = "login"

// Resolve maps a URL to the page shown for it. An anonymous client always
// sees the login form; otherwise the first path segment below baseURL decides.
func Resolve(baseURL, rawURL string, status AuthStatus) Page {
	if _, ok := status.(Anonymous); ok {
		return LoginForm{}
	}

	rel, ok := relativePath(baseURL, rawURL)
	if !ok {
		return NotFound{}
	}
	first, _, _ := strings.Cut(rel, "/")
	switch first {
	case "":
		return Dashboard{}
	case loginPath:
		return LoginForm{}
	default:
		return NotFound{}
	}
}

// relativePath strips baseURL from rawURL and reports false when rawURL is
// not below it.
func relativePath(baseURL, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	if u.Host != "" && base.Host != "" && !strings.EqualFold(u.Host, base.Host) {
		return "", false
	}

	prefix := strings.TrimSuffix(base.Path, "/")
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	rest := u.Path[len(prefix):]
	if rest != "" && rest[0] != '/' {
		return "", false
	}
	return strings.Trim(rest, "/"), true
}

// join builds an absolute client URL for path below baseURL.
func join(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + path
}
