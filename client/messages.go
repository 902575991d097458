package client

// Msg is an input to the machine. Every UI event and every network
// completion is one of the types below.
type Msg interface {
	msgName() string
}

// URLChanged reports that the browser location moved to URL.
type URLChanged struct {
	URL string
}

// CheckAuth asks the server who we are.
type CheckAuth struct{}

type AuthChecked struct {
	Tag      uint64
	Username string
	Err      error
}

type EditUsername struct {
	Text string
}

type EditPassword struct {
	Text string
}

type SubmitLogin struct{}

type LoginCompleted struct {
	Tag      uint64
	Username string
	Err      error
}

type SubmitLogout struct{}

type LogoutCompleted struct {
	Tag uint64
	Err error
}

func (URLChanged) msgName() string      { return "UrlChanged" }
func (CheckAuth) msgName() string       { return "CheckAuth" }
func (AuthChecked) msgName() string     { return "AuthChecked" }
func (EditUsername) msgName() string    { return "EditUsername" }
func (EditPassword) msgName() string    { return "EditPassword" }
func (SubmitLogin) msgName() string     { return "SubmitLogin" }
func (LoginCompleted) msgName() string  { return "LoginCompleted" }
func (SubmitLogout) msgName() string    { return "SubmitLogout" }
func (LogoutCompleted) msgName() string { return "LogoutCompleted" }
