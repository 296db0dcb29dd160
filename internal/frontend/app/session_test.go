package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
)

func testConfig(t *testing.T, mode authflow.Mode, apiURL string) Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.APIURL = apiURL
	cfg.AuthMode = string(mode)
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "session.db")
	cfg.MasterKeyPath = filepath.Join(t.TempDir(), "master.key")
	return cfg
}

func TestSessionTokenModePersistsCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig(t, authflow.ModeToken, "http://api.test")

	s, err := OpenSession(ctx, cfg, slogx.Discard())
	require.NoError(t, err)
	_, ok := s.AccessToken(ctx)
	require.False(t, ok)
	require.NoError(t, s.creds.Set(ctx, authflow.Credentials{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, s.Close())

	// Same database and key file: a new process sees the same session.
	s, err = OpenSession(ctx, cfg, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tok, ok := s.AccessToken(ctx)
	require.True(t, ok)
	require.Equal(t, "a1", tok)
	require.Equal(t, authflow.SessionState{HasAccess: true, HasRefresh: true}, s.Auth.Session(ctx))
}

func TestSessionCookieModeReadsJar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: authflow.AccessCookie, Value: "cookie-access", Path: "/", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: authflow.RefreshCookie, Value: "cookie-refresh", Path: "/", HttpOnly: true})
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(backend.Close)

	cfg := testConfig(t, authflow.ModeCookie, backend.URL)
	s, err := OpenSession(ctx, cfg, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.False(t, s.Auth.Session(ctx).Authenticated())

	resp, err := s.Auth.HTTPClient().Get(backend.URL + "/api/token")
	require.NoError(t, err)
	resp.Body.Close()

	tok, ok := s.AccessToken(ctx)
	require.True(t, ok)
	require.Equal(t, "cookie-access", tok)
	require.True(t, s.Auth.Session(ctx).HasRefresh)

	u, err := url.Parse(backend.URL)
	require.NoError(t, err)
	require.Len(t, s.jar.Cookies(u), 2)
}

func TestSessionInMemoryDatabase(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DatabaseFile = ":memory:"
	cfg.MasterKeyPath = ""

	s, err := OpenSession(context.Background(), cfg, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Store.Ping(context.Background()))
}
