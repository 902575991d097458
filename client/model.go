package client

// AuthStatus is what the client believes about the session. It is one of
// Anonymous, Pending or Authenticated.
type AuthStatus interface {
	isAuthStatus()
}

// Anonymous means the server has no identity for this client.
type Anonymous struct{}

// Pending means the answer to the startup check has not arrived yet.
type Pending struct{}

type Authenticated struct {
	Username string
}

func (Anonymous) isAuthStatus()     {}
func (Pending) isAuthStatus()       {}
func (Authenticated) isAuthStatus() {}

// Page is the screen the client shows. It is one of LoginForm, Dashboard or
// NotFound.
type Page interface {
	isPage()
}

// LoginForm carries the unsent credential drafts.
type LoginForm struct {
	Username string
	Password string
}

type Dashboard struct{}

type NotFound struct{}

func (LoginForm) isPage() {}
func (Dashboard) isPage() {}
func (NotFound) isPage()  {}

// Snapshot is a copy of the machine state at one point in time.
type Snapshot struct {
	BaseURL  string
	URL      string
	Page     Page
	Status   AuthStatus
	InFlight int
	// LastError is the most recent logout failure, cleared by the next logout.
	LastError error
}

// Username returns the authenticated user, or "" otherwise.
func (s Snapshot) Username() string {
	if a, ok := s.Status.(Authenticated); ok {
		return a.Username
	}
	return ""
}

type model struct {
	baseURL  string
	url      string
	page     Page
	status   AuthStatus
	seq      uint64
	mutating uint64 // tag of the outstanding login or logout, 0 when none
	inFlight int
	lastErr  error
}

func (m *model) snapshot() Snapshot {
	return Snapshot{
		BaseURL:   m.baseURL,
		URL:       m.url,
		Page:      m.page,
		Status:    m.status,
		InFlight:  m.inFlight,
		LastError: m.lastErr,
	}
}
