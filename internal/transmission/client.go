package transmission

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultURL is the daemon's stock RPC endpoint.
	DefaultURL = "http://127.0.0.1:9091/transmission/rpc"

	// SessionHeader carries the session token in both directions.
	SessionHeader = "X-Transmission-Session-Id"

	defaultUserAgent = "trflyer/0.1"
	defaultTimeout   = 10 * time.Second
	contentType      = "application/json; charset=utf-8"
	maxBodyBytes     = 64 << 20
)

// Doer is the blocking HTTP primitive the client runs on. *http.Client
// satisfies it; timeouts and cancellation belong to the Doer and the ctx.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TorrentController is implemented by *Client and lets the UI and poller be
// tested against fakes.
type TorrentController interface {
	GetTorrents(ctx context.Context, req TorrentGet) (TorrentList, error)
	AddTorrent(ctx context.Context, req TorrentAdd) (TorrentAdded, error)
	SetTorrents(ctx context.Context, req TorrentSet) error
	RunAction(ctx context.Context, action Action, s Selector) error
	RemoveTorrents(ctx context.Context, req TorrentRemove) error
	GetSession(ctx context.Context) (SessionInfo, error)
}

// Ensure Client implements TorrentController at compile time.
var _ TorrentController = (*Client)(nil)

// SessionState describes whether the client holds a session token.
type SessionState int

const (
	Unauthenticated SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Client talks to the daemon's RPC endpoint and keeps the session token the
// daemon hands out. A Client may be shared between goroutines; two calls
// rejected at the same time may each renegotiate, and whichever stores its
// token last wins. A stale token only costs one extra round trip later.
type Client struct {
	url       *url.URL
	http      Doer
	userAgent string
	username  string
	password  string
	hasAuth   bool
	limiter   *rate.Limiter
	log       zerolog.Logger

	mu      sync.Mutex
	session string
}

// Option configures a Client.
type Option func(*Client) error

// WithURL overrides the RPC endpoint. A bare host:port gets the default
// scheme and path.
func WithURL(raw string) Option {
	return func(c *Client) error {
		u, err := parseRPCURL(raw)
		if err != nil {
			return err
		}
		c.url = u
		return nil
	}
}

// WithAuth enables HTTP basic authentication.
func WithAuth(username, password string) Option {
	return func(c *Client) error {
		c.username = username
		c.password = password
		c.hasAuth = true
		return nil
	}
}

// WithHTTPClient swaps the transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) error {
		if d == nil {
			return fmt.Errorf("http client is nil")
		}
		c.http = d
		return nil
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l.With().Str("component", "rpc").Logger()
		return nil
	}
}

// WithRateLimit throttles logical calls to r per second with the given
// burst. Zero or negative r disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) error {
		if r <= 0 {
			c.limiter = nil
			return nil
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
		return nil
	}
}

// NewClient builds a Client for DefaultURL with no authentication unless
// options say otherwise.
func NewClient(opts ...Option) (*Client, error) {
	base, err := parseRPCURL("")
	if err != nil {
		return nil, err
	}
	c := &Client{
		url:       base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string { return c.url.String() }

// SessionID returns the cached session token, empty before the first
// renegotiation.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SessionState reports whether a session token is cached.
func (c *Client) SessionState() SessionState {
	if c.SessionID() == "" {
		return Unauthenticated
	}
	return Authenticated
}

func (c *Client) setSession(token string) {
	c.mu.Lock()
	c.session = token
	c.mu.Unlock()
}

// Send performs one logical call: encode req, post it, renegotiate the
// session once if the daemon rejects the token, and decode the reply's
// arguments into resp. resp may be nil when the caller ignores the reply.
func (c *Client) Send(ctx context.Context, req Request, resp Response) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	method := req.Method()
	args, err := req.Arguments()
	if err != nil {
		return &EncodeError{Method: method, Err: err}
	}
	body, err := encodeEnvelope(method, args)
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Op: "rate limit", Err: err}
		}
	}

	start := time.Now()
	status, payload, err := c.exchange(ctx, method, body)
	if err != nil {
		c.log.Debug().Str("method", method).Err(err).Msg("rpc failed")
		return err
	}
	c.log.Debug().
		Str("method", method).
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("rpc exchange")

	if status != http.StatusOK {
		return &DaemonError{StatusCode: status}
	}
	rep, err := parseEnvelope(payload)
	if err != nil {
		return err
	}
	arguments, err := rep.arguments()
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return resp.DecodeArguments(arguments)
}

// exchange posts body, handling the 409 session handshake. It makes at most
// two HTTP requests and returns the final status and body.
func (c *Client) exchange(ctx context.Context, method string, body []byte) (int, []byte, error) {
	status, header, payload, err := c.post(ctx, body)
	if err != nil {
		return 0, nil, err
	}
	if status != http.StatusConflict {
		return status, payload, nil
	}

	token := strings.TrimSpace(header.Get(SessionHeader))
	if token == "" {
		return 0, nil, &TransportError{Op: "renegotiate session", Err: ErrMissingSessionHeader}
	}
	c.setSession(token)
	c.log.Debug().Str("method", method).Msg("session renegotiated, retrying")

	status, _, payload, err = c.post(ctx, body)
	if err != nil {
		return 0, nil, err
	}
	return status, payload, nil
}

func (c *Client) post(ctx context.Context, body []byte) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.String(), bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, &TransportError{Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token := c.SessionID(); token != "" {
		req.Header.Set(SessionHeader, token)
	}
	if c.hasAuth {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, &TransportError{Op: "execute request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, nil, &TransportError{Op: "read response", Err: err}
	}
	return resp.StatusCode, resp.Header, payload, nil
}

// GetTorrents runs a torrent-get query.
func (c *Client) GetTorrents(ctx context.Context, req TorrentGet) (TorrentList, error) {
	var list TorrentList
	if err := c.Send(ctx, req, &list); err != nil {
		return TorrentList{}, err
	}
	return list, nil
}

// AddTorrent adds a torrent; the result reports whether it was a duplicate.
func (c *Client) AddTorrent(ctx context.Context, req TorrentAdd) (TorrentAdded, error) {
	var added TorrentAdded
	if err := c.Send(ctx, req, &added); err != nil {
		return TorrentAdded{}, err
	}
	return added, nil
}

// SetTorrents applies a torrent-set.
func (c *Client) SetTorrents(ctx context.Context, req TorrentSet) error {
	return c.Send(ctx, req, &Ack{})
}

// RunAction performs a start/stop/verify/reannounce on the selected torrents.
func (c *Client) RunAction(ctx context.Context, action Action, s Selector) error {
	return c.Send(ctx, NewTorrentAction(action, s), &Ack{})
}

// StartTorrents starts the selected torrents.
func (c *Client) StartTorrents(ctx context.Context, s Selector) error {
	return c.RunAction(ctx, ActionStart, s)
}

// StopTorrents stops the selected torrents.
func (c *Client) StopTorrents(ctx context.Context, s Selector) error {
	return c.RunAction(ctx, ActionStop, s)
}

// VerifyTorrents queues a hash check of the selected torrents.
func (c *Client) VerifyTorrents(ctx context.Context, s Selector) error {
	return c.RunAction(ctx, ActionVerify, s)
}

// ReannounceTorrents asks trackers for more peers now.
func (c *Client) ReannounceTorrents(ctx context.Context, s Selector) error {
	return c.RunAction(ctx, ActionReannounce, s)
}

// RemoveTorrents removes the selected torrents.
func (c *Client) RemoveTorrents(ctx context.Context, req TorrentRemove) error {
	return c.Send(ctx, req, &Ack{})
}

// GetSession reads the daemon's session settings.
func (c *Client) GetSession(ctx context.Context) (SessionInfo, error) {
	var info SessionInfo
	if err := c.Send(ctx, SessionGet{}, &info); err != nil {
		return SessionInfo{}, err
	}
	return info, nil
}

// parseRPCURL accepts a full URL, a host:port, or empty for DefaultURL.
// Missing scheme defaults to http and a missing path to /transmission/rpc.
func parseRPCURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse rpc url %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/transmission/rpc"
	}
	u.Fragment = ""
	return u, nil
}
