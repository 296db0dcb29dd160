package authflow

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicPathsMatch(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"/":                  true,
		"/auth/callback":     true,
		"/join/evt-1":        true,
		"/join/":             true,
		"":                   false,
		"/home":              false,
		"/home/join/evt":     false,
		"/authx":             false,
		"/settings/profile/": false,
	}
	for path, want := range cases {
		require.Equal(t, want, DefaultPublicPaths.Match(path), path)
	}
}

func TestLocationContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Empty(t, LocationFromContext(ctx))
	require.Equal(t, "/home", LocationFromContext(ContextWithLocation(ctx, "/home")))
}

func TestNavigatorFunc(t *testing.T) {
	t.Parallel()

	var got string
	n := NavigatorFunc(func(_ context.Context, url string) error {
		got = url
		return nil
	})
	require.NoError(t, n.RedirectTo(context.Background(), "http://idp/login"))
	require.Equal(t, "http://idp/login", got)
}

func TestParseAuthorizationCallback(t *testing.T) {
	t.Parallel()

	code, err := ParseAuthorizationCallback("http://localhost:3000/auth/callback?code=abc&session_state=x")
	require.NoError(t, err)
	require.Equal(t, "abc", code)

	_, err = ParseAuthorizationCallback("http://localhost:3000/auth/callback?error=access_denied&error_description=User+cancelled")
	require.ErrorIs(t, err, ErrAuthorizationDenied)
	var ae *AuthorizationError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, "access_denied", ae.Code)
	require.Equal(t, "User cancelled", ae.Description)
	require.True(t, IsLoginFailure(err))

	_, err = ParseAuthorizationCallback("http://localhost:3000/auth/callback")
	require.ErrorIs(t, err, ErrMissingCode)

	_, err = ParseAuthorizationCallback("://bad")
	require.Error(t, err)
}

func TestMemoryJarClear(t *testing.T) {
	t.Parallel()

	jar := NewMemoryJar()
	u := mustURL(t, "http://api.spoutbreeze.test/")
	jar.SetCookies(u, []*http.Cookie{{Name: AccessCookie, Value: "a"}, {Name: RefreshCookie, Value: "r"}})
	require.Equal(t, SessionState{HasAccess: true, HasRefresh: true}, jarState(jar, u.String()))

	require.NoError(t, JarCredentials{Jar: jar}.Clear(context.Background()))
	require.Empty(t, jar.Cookies(u))
	require.Equal(t, SessionState{}, jarState(jar, u.String()))

	creds, err := JarCredentials{Jar: jar}.Get(context.Background())
	require.NoError(t, err)
	require.True(t, creds.IsZero())
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
