package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-session/auth"
	apperrors "github.com/jrsteele09/go-auth-session/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout = 5 * time.Second

	EndpointCheck  = "/auth/check"
	EndpointLogin  = "/auth/login"
	EndpointLogout = "/auth/logout"

	maxBodySize = 64 << 10
)

// Transport performs the three identity round trips. Implementations must be
// safe for concurrent use.
type Transport interface {
	Check(ctx context.Context) (string, error)
	Login(ctx context.Context, creds auth.Credentials) (string, error)
	Logout(ctx context.Context) error
}

type ErrorKind int

const (
	Timeout ErrorKind = iota + 1
	NetworkFailure
	HTTPStatus
)

func (k ErrorKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case NetworkFailure:
		return "network failure"
	case HTTPStatus:
		return "http status"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// TransportError is the only error HTTPTransport returns.
type TransportError struct {
	Kind       ErrorKind
	StatusCode int // set for HTTPStatus
	Endpoint   string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == HTTPStatus {
		return fmt.Sprintf("%s: http status %d", e.Endpoint, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Kind)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportKind reports whether err is a TransportError of the given kind.
func IsTransportKind(err error, kind ErrorKind) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == kind
}

type RequestOptions struct {
	Method  string
	Header  http.Header
	Timeout time.Duration
}

type HTTPTransport struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

var _ Transport = (*HTTPTransport)(nil)

type TransportOption func(*HTTPTransport)

// WithTimeout changes the per request deadline.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithHTTPClient replaces the client. Its Jar must be set for the identity
// cookie to survive between requests.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) { t.client = c }
}

func WithTransportLogger(logger zerolog.Logger) TransportOption {
	return func(t *HTTPTransport) { t.logger = logger }
}

// NewHTTPTransport talks to the server at baseURL, keeping its cookies in a
// private jar.
func NewHTTPTransport(baseURL string, opts ...TransportOption) (*HTTPTransport, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, apperrors.Wrapf(err, "[client NewHTTPTransport] cookie jar")
	}
	t := &HTTPTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Jar: jar},
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// CloseIdleConnections drops kept-alive connections to the server.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

func (t *HTTPTransport) Check(ctx context.Context) (string, error) {
	return t.Send(ctx, EndpointCheck, RequestOptions{})
}

func (t *HTTPTransport) Login(ctx context.Context, creds auth.Credentials) (string, error) {
	header := http.Header{}
	header.Set("Authorization", creds.Header())
	return t.Send(ctx, EndpointLogin, RequestOptions{Header: header})
}

func (t *HTTPTransport) Logout(ctx context.Context) error {
	_, err := t.Send(ctx, EndpointLogout, RequestOptions{})
	return err
}

// Send performs one request and returns the body of a 2xx answer. Anything
// else comes back as a *TransportError.
func (t *HTTPTransport) Send(ctx context.Context, endpoint string, opts RequestOptions) (string, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = t.timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+endpoint, nil)
	if err != nil {
		return "", &TransportError{Kind: NetworkFailure, Endpoint: endpoint, Err: err}
	}
	for k, v := range opts.Header {
		req.Header[k] = v
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return "", t.classify(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", t.classify(ctx, endpoint, err)
	}

	t.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("Round trip")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Kind: HTTPStatus, StatusCode: resp.StatusCode, Endpoint: endpoint}
	}
	return string(body), nil
}

func (t *HTTPTransport) classify(ctx context.Context, endpoint string, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TransportError{Kind: Timeout, Endpoint: endpoint, Err: err}
	}
	return &TransportError{Kind: NetworkFailure, Endpoint: endpoint, Err: err}
}
