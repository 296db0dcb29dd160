package spoutbreeze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/idx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
)

// maxBody bounds how much of an API response is read.
const maxBody = 8 << 20

// DefaultUserCacheTTL is how long Users.Get keeps a looked up user.
const DefaultUserCacheTTL = time.Minute

// Doer sends an HTTP request. *authflow.Client and *http.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the SpoutBreeze platform API.
//
// Authenticated calls go through the configured Doer, normally an
// *authflow.Client which attaches credentials and recovers from expired
// access tokens. The public join endpoint goes through a plain HTTP client.
type Client struct {
	baseURL  string
	api      Doer
	public   Doer
	log      *slog.Logger
	validate *validator.Validate
	userTTL  time.Duration

	Channels        *ChannelService
	Events          *EventService
	StreamEndpoints *StreamEndpointService
	Users           *UserService
	Recordings      *RecordingService
}

// Option configures a Client.
type Option func(*Client)

// WithPublicClient sets the client used for unauthenticated calls.
func WithPublicClient(d Doer) Option {
	return func(c *Client) { c.public = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithUserCacheTTL sets how long looked up users are cached. Zero disables
// the cache; concurrent lookups are still de-duplicated.
func WithUserCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.userTTL = d }
}

// New creates a client for the API at baseURL that sends authenticated
// requests through api.
func New(baseURL string, api Doer, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		api:      api,
		public:   &http.Client{Timeout: authflow.DefaultTimeout},
		log:      slog.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		userTTL:  DefaultUserCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Channels = &ChannelService{c: c}
	c.Events = &EventService{c: c}
	c.StreamEndpoints = &StreamEndpointService{c: c}
	c.Users = newUserService(c, c.userTTL)
	c.Recordings = &RecordingService{c: c}
	return c
}

// NewFromAuth creates a client that talks to the API configured on ac.
func NewFromAuth(ac *authflow.Client, opts ...Option) *Client {
	return New(ac.Config().APIURL, ac, opts...)
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ============================================================================
// Request helpers
// ============================================================================

// call sends a request through d and decodes a 2xx JSON body into out.
// Non-2xx responses come back as *APIError. out may be nil.
func (c *Client) call(ctx context.Context, d Doer, method, path string, payload, out any) error {
	status, data, err := c.roundTrip(ctx, d, method, path, payload)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		apiErr := newAPIError(status, data)
		c.log.DebugContext(ctx, "api call failed",
			"method", method,
			"path", path,
			"status", status,
			"detail", apiErr.Detail,
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// roundTrip performs the request and returns the status and body. payload
// may be nil, pre-encoded JSON as []byte, or any value to marshal.
func (c *Client) roundTrip(ctx context.Context, d Doer, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(p)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	id := slogx.RequestID(ctx)
	if id == "" {
		id = idx.New().String()
	}
	req.Header.Set(slogx.RequestIDHeader, id)

	resp, err := d.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

// check validates a request struct, reporting failures as ErrValidation.
func (c *Client) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return classify(ErrValidation, err)
	}
	return nil
}

// fullName joins a first and last name the way the platform displays them.
func fullName(first, last string) string {
	return first + " " + last
}
