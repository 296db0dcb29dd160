package authflow

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBackend imitates the SpoutBreeze auth endpoints plus one protected
// resource at /api/data.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	access   string
	refresh  string
	verifier string // expected code_verifier, empty accepts any
	rotation int

	// onRefresh, when set, runs before the refresh endpoint answers and may
	// write its own response (returning true).
	onRefresh func(w http.ResponseWriter, r *http.Request) bool
	// onData, when set, runs before /api/data answers.
	onData func(r *http.Request)
	// alwaysReject makes /api/data answer 401 even with valid credentials.
	alwaysReject atomic.Bool
	logoutStatus atomic.Int32

	refreshCalls atomic.Int32
	dataCalls    atomic.Int32
	lastBodies   chan string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{t: t, access: "access-0", refresh: "refresh-0", lastBodies: make(chan string, 16)}
	b.logoutStatus.Store(http.StatusOK)

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+TokenPath, b.handleToken)
	mux.HandleFunc("POST "+RefreshPath, b.handleRefresh)
	mux.HandleFunc("POST "+LogoutPath, b.handleLogout)
	mux.HandleFunc("/api/data", b.handleData)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) config(mode Mode) Config {
	return Config{
		APIURL:      b.srv.URL,
		IdentityURL: "http://idp.test",
		Realm:       "spoutbreeze",
		ClientID:    "spoutbreezeAPI",
		RedirectURI: "http://localhost:3000/auth/callback",
		Scopes:      []string{"profile", "email"},
		Mode:        mode,
	}
}

func (b *fakeBackend) tokens() (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.access, b.refresh
}

// expire invalidates the current access token but keeps the refresh token.
func (b *fakeBackend) expire() {
	b.mu.Lock()
	b.access = "expired-" + b.access
	b.mu.Unlock()
}

func (b *fakeBackend) writeTokens(w http.ResponseWriter) {
	access, refresh := b.tokens()
	http.SetCookie(w, &http.Cookie{Name: AccessCookie, Value: access, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: refresh, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access, "refresh_token": refresh})
}

func (b *fakeBackend) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.CodeVerifier == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad request"})
		return
	}

	b.mu.Lock()
	want := b.verifier
	b.mu.Unlock()
	if req.Code == "bad-code" || (want != "" && req.CodeVerifier != want) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid_grant"})
		return
	}
	b.writeTokens(w)
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	if b.onRefresh != nil && b.onRefresh(w, r) {
		return
	}

	presented := ""
	if c, err := r.Cookie(RefreshCookie); err == nil {
		presented = c.Value
	}
	var body refreshRequest
	if json.NewDecoder(r.Body).Decode(&body) == nil && body.RefreshToken != "" {
		presented = body.RefreshToken
	}

	b.mu.Lock()
	if presented != b.refresh {
		b.mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	b.rotation++
	b.access = "access-" + strconv.Itoa(b.rotation)
	b.refresh = "refresh-" + strconv.Itoa(b.rotation)
	b.mu.Unlock()

	b.writeTokens(w)
}

func (b *fakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	status := int(b.logoutStatus.Load())
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: AccessCookie, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, LogoutResult{Message: "Successfully logged out", StatusCode: 200})
}

func (b *fakeBackend) handleData(w http.ResponseWriter, r *http.Request) {
	b.dataCalls.Add(1)
	if b.onData != nil {
		b.onData(r)
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		select {
		case b.lastBodies <- string(data):
		default:
		}
	}

	presented := ""
	if c, err := r.Cookie(AccessCookie); err == nil {
		presented = c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		presented = h[len("Bearer "):]
	}

	access, _ := b.tokens()
	if b.alwaysReject.Load() || presented != access {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// navRecorder is a Navigator that records every redirect.
type navRecorder struct {
	mu   sync.Mutex
	urls []string
}

func (n *navRecorder) RedirectTo(_ context.Context, url string) error {
	n.mu.Lock()
	n.urls = append(n.urls, url)
	n.mu.Unlock()
	return nil
}

func (n *navRecorder) redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

// waitFor polls cond until it holds or a second passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

func get(t *testing.T, c *Client, ctx context.Context, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// loggedIn returns a client whose store already holds the backend's tokens.
func loggedIn(t *testing.T, b *fakeBackend, opts ...Option) (*Client, *MemoryCredentials) {
	t.Helper()

	creds := NewMemoryCredentials()
	access, refresh := b.tokens()
	require.NoError(t, creds.Set(context.Background(), Credentials{AccessToken: access, RefreshToken: refresh}))

	c, err := New(b.config(ModeToken), append([]Option{WithCredentialStore(creds)}, opts...)...)
	require.NoError(t, err)
	return c, creds
}
