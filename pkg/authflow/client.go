package authflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Client is the authenticated request client. It is safe for concurrent use.
type Client struct {
	cfg       Config
	http      *http.Client
	creds     CredentialStore
	verifiers VerifierStore
	navigator Navigator
	location  LocationFunc
	public    PublicPaths
	log       *slog.Logger

	redirector *Redirector
	exchanger  *Exchanger
	coord      refreshCoordinator
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout, in-memory cookie
// jar). In ModeCookie its Jar must implement ClearableJar; a nil Jar is
// replaced with a MemoryJar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithCredentialStore(s CredentialStore) Option {
	return func(c *Client) { c.creds = s }
}

func WithVerifierStore(s VerifierStore) Option {
	return func(c *Client) { c.verifiers = s }
}

// WithNavigator sets where login redirects go after a failed refresh.
// Without one, no redirect happens.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithLocationFunc overrides LocationFromContext.
func WithLocationFunc(fn LocationFunc) Option {
	return func(c *Client) { c.location = fn }
}

func WithPublicPaths(p PublicPaths) Option {
	return func(c *Client) { c.public = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.Mode = cfg.mode()

	c := &Client{
		cfg:      cfg,
		location: LocationFromContext,
		public:   DefaultPublicPaths,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.verifiers == nil {
		c.verifiers = NewMemoryVerifiers()
	}

	switch cfg.Mode {
	case ModeCookie:
		if c.http.Jar == nil {
			hc := *c.http
			hc.Jar = NewMemoryJar()
			c.http = &hc
		}
		if c.creds == nil {
			jar, ok := c.http.Jar.(ClearableJar)
			if !ok {
				return nil, ErrJarNotClearable
			}
			c.creds = JarCredentials{Jar: jar}
		}
	case ModeToken:
		if c.creds == nil {
			c.creds = NewMemoryCredentials()
		}
	}

	c.redirector = NewRedirector(cfg, c.verifiers)
	c.exchanger = NewExchanger(cfg, c.http, c.creds, c.verifiers, c.log)
	return c, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config { return c.cfg }

// HTTPClient is the raw client without refresh handling, for public calls.
func (c *Client) HTTPClient() *http.Client { return c.http }

func (c *Client) BuildLoginURL(ctx context.Context) (string, error) {
	return c.redirector.BuildLoginURL(ctx)
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (Credentials, error) {
	return c.exchanger.ExchangeCode(ctx, code)
}

func (c *Client) Refresh(ctx context.Context) (Credentials, bool) {
	return c.exchanger.Refresh(ctx)
}

func (c *Client) Logout(ctx context.Context) LogoutResult {
	return c.exchanger.Logout(ctx)
}

// Session reports which credentials are present without calling the backend.
func (c *Client) Session(ctx context.Context) SessionState {
	if c.cfg.Mode == ModeCookie {
		return jarState(c.http.Jar, c.cfg.APIURL)
	}

	creds, err := c.creds.Get(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "read credentials", "err", err)
		return SessionState{}
	}
	return SessionState{HasAccess: creds.AccessToken != "", HasRefresh: creds.RefreshToken != ""}
}

type retriedKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// Do sends req with the session credentials. A 401 triggers one refresh and
// one replay of req; see the package documentation for the full contract.
// The request body is buffered so the replay sends identical bytes.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	gen := c.coord.current()
	resp, err := c.send(req, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isRetried(req.Context()) {
		return resp, nil
	}

	// Release the connection before possibly waiting on a refresh.
	if err := bufferResponse(resp); err != nil {
		return nil, err
	}
	return c.handleUnauthorized(req, body, resp, gen)
}

func (c *Client) handleUnauthorized(req *http.Request, body []byte, unauthorized *http.Response, gen uint64) (*http.Response, error) {
	ctx := req.Context()
	retry := req.Clone(markRetried(ctx))

	wait, leader := c.coord.begin(gen)
	if !leader {
		select {
		case ok := <-wait:
			if !ok {
				return unauthorized, nil
			}
			c.log.DebugContext(ctx, "replaying after queued refresh", "path", req.URL.Path)
			return c.send(retry, body)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !c.leadRefresh(ctx) {
		c.redirectToLogin(ctx)
		return unauthorized, nil
	}
	return c.send(retry, body)
}

// leadRefresh runs the single refresh and always settles the coordinator.
// The refresh is detached from the leader's cancellation so a caller giving
// up cannot end the session for every waiter; the HTTP client timeout still
// bounds it.
func (c *Client) leadRefresh(ctx context.Context) (ok bool) {
	defer func() { c.coord.settle(ok) }()

	_, ok = c.exchanger.Refresh(context.WithoutCancel(ctx))
	return ok
}

func (c *Client) redirectToLogin(ctx context.Context) {
	if c.navigator == nil {
		return
	}

	loc := c.location(ctx)
	if c.public.Match(loc) {
		c.log.DebugContext(ctx, "session ended on public page, not redirecting", "location", loc)
		return
	}

	loginURL, err := c.redirector.BuildLoginURL(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "build login url", "err", err)
		return
	}
	if err := c.navigator.RedirectTo(ctx, loginURL); err != nil {
		c.log.WarnContext(ctx, "redirect to login", "err", err)
	}
}

// send performs one attempt with the current credentials.
func (c *Client) send(req *http.Request, body []byte) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)
	if body != nil {
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		out.ContentLength = int64(len(body))
	}

	if out.Header.Get("Accept") == "" {
		out.Header.Set("Accept", "application/json")
	}
	setRequestID(out)

	if c.cfg.Mode == ModeToken {
		creds, err := c.creds.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		if creds.AccessToken != "" {
			out.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		} else {
			out.Header.Del("Authorization")
		}
	}

	resp, err := c.http.Do(out)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// bufferBody reads and closes req.Body so it can be sent more than once.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()

	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	return b, nil
}

func bufferResponse(resp *http.Response) error {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read 401 response: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(b))
	return nil
}
