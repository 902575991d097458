package client_test

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-session/auth"
	"github.com/jrsteele09/go-auth-session/client"
)

// stubTransport answers immediately from the configured functions.
type stubTransport struct {
	mu     sync.Mutex
	calls  []string
	creds  []auth.Credentials
	check  func() (string, error)
	login  func(auth.Credentials) (string, error)
	logout func() error
}

var _ client.Transport = (*stubTransport)(nil)

func (s *stubTransport) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *stubTransport) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubTransport) Check(context.Context) (string, error) {
	s.record("check")
	if s.check == nil {
		return "", nil
	}
	return s.check()
}

func (s *stubTransport) Login(_ context.Context, creds auth.Credentials) (string, error) {
	s.record("login")
	s.mu.Lock()
	s.creds = append(s.creds, creds)
	s.mu.Unlock()
	if s.login == nil {
		return creds.Username, nil
	}
	return s.login(creds)
}

func (s *stubTransport) Logout(context.Context) error {
	s.record("logout")
	if s.logout == nil {
		return nil
	}
	return s.logout()
}

// pendingCall is a request held by gateTransport until the test answers it.
type pendingCall struct {
	Name  string
	Creds auth.Credentials
	reply chan callResult
}

type callResult struct {
	body string
	err  error
}

func (c *pendingCall) Reply(body string, err error) {
	c.reply <- callResult{body: body, err: err}
}

// gateTransport blocks every request until the test replies, so completions
// can be delivered in any order.
type gateTransport struct {
	calls chan *pendingCall
}

var _ client.Transport = (*gateTransport)(nil)

func newGateTransport() *gateTransport {
	return &gateTransport{calls: make(chan *pendingCall, 16)}
}

func (g *gateTransport) wait(ctx context.Context, name string, creds auth.Credentials) (string, error) {
	call := &pendingCall{Name: name, Creds: creds, reply: make(chan callResult, 1)}
	select {
	case g.calls <- call:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case r := <-call.reply:
		return r.body, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *gateTransport) Check(ctx context.Context) (string, error) {
	return g.wait(ctx, "check", auth.Credentials{})
}

func (g *gateTransport) Login(ctx context.Context, creds auth.Credentials) (string, error) {
	return g.wait(ctx, "login", creds)
}

func (g *gateTransport) Logout(ctx context.Context) error {
	_, err := g.wait(ctx, "logout", auth.Credentials{})
	return err
}
