package client_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-session/client"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type loopFixture struct {
	machine *client.Machine
	gate    *gateTransport
	stop    func()
}

func startLoop(t *testing.T, startURL string, opts ...client.Option) *loopFixture {
	t.Helper()
	gate := newGateTransport()
	m := client.New(gate, base, startURL, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(waitFor):
				t.Fatal("Run did not return after cancel")
			}
		})
	}
	t.Cleanup(stop)
	return &loopFixture{machine: m, gate: gate, stop: stop}
}

func (f *loopFixture) nextCall(t *testing.T, name string) *pendingCall {
	t.Helper()
	select {
	case call := <-f.gate.calls:
		require.Equal(t, name, call.Name)
		return call
	case <-time.After(waitFor):
		t.Fatalf("no %s request issued", name)
		return nil
	}
}

func (f *loopFixture) noCall(t *testing.T) {
	t.Helper()
	select {
	case call := <-f.gate.calls:
		t.Fatalf("unexpected %s request", call.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func (f *loopFixture) eventually(t *testing.T, cond func(client.Snapshot) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(f.machine.Snapshot()) }, waitFor, 5*time.Millisecond)
}

func TestRun_SingleStartupCheck(t *testing.T) {
	f := startLoop(t, base+"/")

	call := f.nextCall(t, "check")
	f.noCall(t)

	call.Reply("alice", nil)
	f.eventually(t, func(s client.Snapshot) bool {
		return s.Status == client.Authenticated{Username: "alice"} && s.InFlight == 0
	})
	require.Equal(t, client.Dashboard{}, f.machine.Snapshot().Page)
}

func TestRun_AlreadyRunning(t *testing.T) {
	f := startLoop(t, base+"/")
	f.nextCall(t, "check").Reply("", nil)

	require.ErrorIs(t, f.machine.Run(context.Background()), client.ErrAlreadyRunning)
}

func TestRun_LoginBeatsConcurrentCheck(t *testing.T) {
	f := startLoop(t, base+"/login")
	check := f.nextCall(t, "check")

	f.machine.Dispatch(client.EditUsername{Text: "alice"})
	f.machine.Dispatch(client.EditPassword{Text: "secret"})
	f.machine.Dispatch(client.SubmitLogin{})
	login := f.nextCall(t, "login")
	require.Equal(t, "alice", login.Creds.Username)
	require.Equal(t, "secret", login.Creds.Password)

	f.machine.Dispatch(client.CheckAuth{})
	f.noCall(t)

	check.Reply("", nil)
	f.eventually(t, func(s client.Snapshot) bool { return s.InFlight == 1 })
	require.Equal(t, client.Pending{}, f.machine.Snapshot().Status, "stale check must be discarded")

	login.Reply("alice", nil)
	f.eventually(t, func(s client.Snapshot) bool {
		return s.Status == client.Authenticated{Username: "alice"}
	})
	require.Equal(t, client.Dashboard{}, f.machine.Snapshot().Page)
	require.Equal(t, base+"/", f.machine.Snapshot().URL)
}

func TestRun_CancelWithRequestsOutstanding(t *testing.T) {
	f := startLoop(t, base+"/")
	f.nextCall(t, "check")

	f.stop()
	require.Equal(t, client.Pending{}, f.machine.Snapshot().Status)
}

func TestRun_Observer(t *testing.T) {
	var mu sync.Mutex
	var seen []client.Snapshot
	observer := func(s client.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	}

	f := startLoop(t, base+"/", client.WithObserver(observer))
	f.nextCall(t, "check").Reply("", nil)
	f.eventually(t, func(s client.Snapshot) bool { return s.Status == client.Anonymous{} })
	f.stop()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(seen), 2)
	require.Equal(t, client.Pending{}, seen[0].Status)
	require.Equal(t, client.Anonymous{}, seen[len(seen)-1].Status)
}

func TestRun_QueuedBeforeStart(t *testing.T) {
	gate := newGateTransport()
	m := client.New(gate, base, base+"/login")
	m.Dispatch(client.EditUsername{Text: "early"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	call := <-gate.calls
	require.Equal(t, "check", call.Name)
	require.Eventually(t, func() bool {
		return m.Snapshot().Page == client.LoginForm{Username: "early"}
	}, waitFor, 5*time.Millisecond)
}

func TestRun_RestartSkipsStartupCheck(t *testing.T) {
	f := startLoop(t, base+"/login")
	f.nextCall(t, "check").Reply("alice", nil)
	f.eventually(t, func(s client.Snapshot) bool { return s.Status == client.Authenticated{Username: "alice"} })
	f.stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.machine.Run(ctx) }()

	f.machine.Dispatch(client.URLChanged{URL: base + "/"})
	require.Eventually(t, f.machine.Idle, waitFor, 5*time.Millisecond)
	f.noCall(t)
	require.Equal(t, client.Dashboard{}, f.machine.Snapshot().Page)

	cancel()
	require.NoError(t, <-done)
}

func TestRun_CancelMidDrainKeepsQueue(t *testing.T) {
	gate := newGateTransport()
	first, stopFirst := context.WithCancel(context.Background())
	defer stopFirst()
	m := client.New(gate, base, base+"/login", client.WithObserver(func(client.Snapshot) { stopFirst() }))
	m.Dispatch(client.EditUsername{Text: "a"})
	m.Dispatch(client.EditUsername{Text: "b"})

	// The observer stops the loop right after the startup check is applied.
	require.NoError(t, m.Run(first))
	s := m.Snapshot()
	require.Zero(t, s.InFlight, "the abandoned check is released")
	require.Equal(t, client.Pending{}, s.Status)
	require.Equal(t, client.LoginForm{}, s.Page)
	require.False(t, m.Idle(), "both edits are still queued")
	for len(gate.calls) > 0 {
		<-gate.calls
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	call := <-gate.calls
	require.Equal(t, "check", call.Name)
	call.Reply("", nil)
	require.Eventually(t, m.Idle, waitFor, 5*time.Millisecond)
	s = m.Snapshot()
	require.Equal(t, client.Anonymous{}, s.Status)
	require.Equal(t, client.LoginForm{Username: "b"}, s.Page)
}
