package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jrsteele09/go-auth-session/auth"
	"github.com/rs/zerolog"
)

var ErrAlreadyRunning = errors.New("machine already running")

// Cmd is a side effect requested by Update. It runs on its own goroutine and
// its result re-enters the machine as a message.
type Cmd func(ctx context.Context) Msg

// Machine keeps the client's idea of the session in step with the server.
// All state changes go through Update, one message at a time.
type Machine struct {
	transport Transport
	logger    zerolog.Logger
	observer  func(Snapshot)

	mu    sync.Mutex
	model model

	inboxMu sync.Mutex
	inbox   []Msg
	wake    chan struct{}
	queued  atomic.Int64 // dispatched but not yet applied

	running atomic.Bool
	started atomic.Bool // startup check issued
	wg      sync.WaitGroup
}

type Option func(*Machine)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// WithObserver registers fn to receive a snapshot after every applied message.
// fn runs on the loop goroutine and must not call Update.
func WithObserver(fn func(Snapshot)) Option {
	return func(m *Machine) { m.observer = fn }
}

// New returns a machine showing startURL with a pending auth status.
func New(transport Transport, baseURL, startURL string, opts ...Option) *Machine {
	m := &Machine{
		transport: transport,
		logger:    zerolog.Nop(),
		wake:      make(chan struct{}, 1),
		model: model{
			baseURL: baseURL,
			url:     startURL,
			status:  Pending{},
		},
	}
	m.model.page = Resolve(baseURL, startURL, m.model.status)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model.snapshot()
}

// Idle reports whether every dispatched message has been applied and no
// request is in flight.
func (m *Machine) Idle() bool {
	return m.queued.Load() == 0 && m.Snapshot().InFlight == 0
}

// Dispatch queues msg for the loop. It never blocks.
func (m *Machine) Dispatch(msg Msg) {
	if msg == nil {
		return
	}
	m.queued.Add(1)
	m.inboxMu.Lock()
	m.inbox = append(m.inbox, msg)
	m.inboxMu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Machine) next() (Msg, bool) {
	m.inboxMu.Lock()
	defer m.inboxMu.Unlock()
	if len(m.inbox) == 0 {
		return nil, false
	}
	msg := m.inbox[0]
	m.inbox[0] = nil
	m.inbox = m.inbox[1:]
	return msg, true
}

// Run applies queued messages until ctx is done. The first Run issues the
// startup auth check ahead of anything already queued. Run waits for
// outstanding requests before returning; messages still queued are kept for
// the next Run.
func (m *Machine) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer m.running.Store(false)
	defer m.wg.Wait()

	if m.started.CompareAndSwap(false, true) {
		m.queued.Add(1)
		m.inboxMu.Lock()
		m.inbox = append([]Msg{CheckAuth{}}, m.inbox...)
		m.inboxMu.Unlock()
	}

	for {
		for ctx.Err() == nil {
			msg, ok := m.next()
			if !ok {
				break
			}
			for _, cmd := range m.Update(msg) {
				m.spawn(ctx, cmd)
			}
			if m.observer != nil {
				m.observer(m.Snapshot())
			}
			m.queued.Add(-1)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-m.wake:
		}
	}
}

func (m *Machine) spawn(ctx context.Context, cmd Cmd) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		msg := cmd(ctx)
		if ctx.Err() != nil {
			m.release(msg)
			return
		}
		m.Dispatch(msg)
	}()
}

// release books in a completion dropped because the loop stopped, so neither
// Idle nor the mutation guard waits on it.
func (m *Machine) release(msg Msg) {
	var tag uint64
	switch msg := msg.(type) {
	case AuthChecked:
		tag = msg.Tag
	case LoginCompleted:
		tag = msg.Tag
	case LogoutCompleted:
		tag = msg.Tag
	default:
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s := &m.model
	if s.inFlight > 0 {
		s.inFlight--
	}
	if s.mutating == tag {
		s.mutating = 0
	}
	// Nothing has resolved the session yet, so the next Run checks again.
	if _, ok := s.status.(Pending); ok {
		m.started.Store(false)
	}
	m.logger.Debug().Str("msg", msg.msgName()).Uint64("tag", tag).Msg("Completion dropped")
}

// Update applies one message and returns the commands it wants run. It is
// exported so the transitions can be driven without the loop; callers are
// serialized by the model lock.
func (m *Machine) Update(msg Msg) []Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &m.model
	switch msg := msg.(type) {
	case URLChanged:
		s.navigate(msg.URL)
		return nil

	case CheckAuth:
		if s.mutating != 0 {
			m.logger.Debug().Uint64("outstanding", s.mutating).Msg("Auth check suppressed")
			return nil
		}
		tag := s.issue()
		return []Cmd{m.checkCmd(tag)}

	case AuthChecked:
		if !m.settle(msg.msgName(), msg.Tag) {
			return nil
		}
		if msg.Err != nil || msg.Username == "" {
			if msg.Err != nil {
				m.logger.Debug().Err(msg.Err).Msg("Auth check failed")
			}
			s.signOut()
			return nil
		}
		s.status = Authenticated{Username: msg.Username}
		return nil

	case EditUsername:
		if form, ok := s.page.(LoginForm); ok {
			form.Username = msg.Text
			s.page = form
		}
		return nil

	case EditPassword:
		if form, ok := s.page.(LoginForm); ok {
			form.Password = msg.Text
			s.page = form
		}
		return nil

	case SubmitLogin:
		form, ok := s.page.(LoginForm)
		if !ok {
			return nil
		}
		tag := s.issue()
		s.mutating = tag
		creds := auth.Credentials{Username: form.Username, Password: form.Password}
		return []Cmd{m.loginCmd(tag, creds)}

	case LoginCompleted:
		if !m.settle(msg.msgName(), msg.Tag) {
			return nil
		}
		if msg.Err != nil || msg.Username == "" {
			if msg.Err != nil {
				m.logger.Debug().Err(msg.Err).Msg("Login failed")
			}
			s.signOut()
			return nil
		}
		s.status = Authenticated{Username: msg.Username}
		s.navigate(join(s.baseURL, ""))
		return nil

	case SubmitLogout:
		tag := s.issue()
		s.mutating = tag
		s.lastErr = nil
		return []Cmd{m.logoutCmd(tag)}

	case LogoutCompleted:
		if !m.settle(msg.msgName(), msg.Tag) {
			return nil
		}
		if msg.Err != nil {
			m.logger.Warn().Err(msg.Err).Msg("Logout failed")
			s.lastErr = msg.Err
			return nil
		}
		s.signOut()
		return nil

	default:
		m.logger.Warn().Str("type", msg.msgName()).Msg("Unhandled message")
		return nil
	}
}

// settle books a completion in and reports whether it is still current.
// Only the most recently issued request may change the model.
func (m *Machine) settle(name string, tag uint64) bool {
	s := &m.model
	if s.inFlight > 0 {
		s.inFlight--
	}
	if s.mutating == tag {
		s.mutating = 0
	}
	if tag != s.seq {
		m.logger.Debug().Str("msg", name).Uint64("tag", tag).Uint64("current", s.seq).Msg("Stale completion discarded")
		return false
	}
	m.logger.Debug().Str("msg", name).Uint64("tag", tag).Msg("Completion applied")
	return true
}

func (m *Machine) checkCmd(tag uint64) Cmd {
	return func(ctx context.Context) Msg {
		username, err := m.transport.Check(ctx)
		return AuthChecked{Tag: tag, Username: username, Err: err}
	}
}

func (m *Machine) loginCmd(tag uint64, creds auth.Credentials) Cmd {
	return func(ctx context.Context) Msg {
		username, err := m.transport.Login(ctx, creds)
		return LoginCompleted{Tag: tag, Username: username, Err: err}
	}
}

func (m *Machine) logoutCmd(tag uint64) Cmd {
	return func(ctx context.Context) Msg {
		return LogoutCompleted{Tag: tag, Err: m.transport.Logout(ctx)}
	}
}

// issue allocates the tag for a new request.
func (s *model) issue() uint64 {
	s.seq++
	s.inFlight++
	return s.seq
}

func (s *model) navigate(url string) {
	s.url = url
	page := Resolve(s.baseURL, url, s.status)
	// Staying on the login form keeps what has been typed so far.
	if _, ok := page.(LoginForm); ok {
		if form, ok := s.page.(LoginForm); ok {
			page = form
		}
	}
	s.page = page
}

func (s *model) signOut() {
	s.status = Anonymous{}
	s.navigate(join(s.baseURL, loginPath))
}
