package session_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	tokenStub = `{
		"request": {
			"method": "POST",
			"url": "/api/token",
			"bodyPatterns": [{"matchesJsonPath": {"expression": "$.code", "equalTo": "%s"}}]
		},
		"response": {
			"status": 200,
			"headers": {
				"Content-Type": "application/json",
				"Set-Cookie": ["access_token=stale; Path=/; HttpOnly", "refresh_token=%s; Path=/; HttpOnly"]
			},
			"body": "{}"
		}
	}`

	refreshOK = `{
		"request": {
			"method": "POST",
			"url": "/api/refresh",
			"cookies": {"refresh_token": {"equalTo": "r-good"}}
		},
		"response": {
			"status": 200,
			"headers": {
				"Content-Type": "application/json",
				"Set-Cookie": ["access_token=fresh; Path=/; HttpOnly"]
			},
			"body": "{}"
		}
	}`

	refreshRevoked = `{
		"request": {
			"method": "POST",
			"url": "/api/refresh",
			"cookies": {"refresh_token": {"equalTo": "r-revoked"}}
		},
		"response": {"status": 401, "jsonBody": {"detail": "Refresh token revoked"}}
	}`

	channelsFresh = `{
		"priority": 1,
		"request": {
			"method": "GET",
			"url": "/api/channels/all",
			"cookies": {"access_token": {"equalTo": "fresh"}}
		},
		"response": {
			"status": 200,
			"jsonBody": {"channels": [{"id": "c1", "name": "General", "creator_first_name": "Ada", "creator_last_name": "Lovelace"}], "total": 1}
		}
	}`

	channelsExpired = `{
		"priority": 10,
		"request": {"method": "GET", "url": "/api/channels/all"},
		"response": {"status": 401, "jsonBody": {"detail": "Token expired"}}
	}`
)

func loadStubs(t *testing.T, backendURL string) {
	t.Helper()
	stub(t, backendURL, fmt.Sprintf(tokenStub, "code-good", "r-good"))
	stub(t, backendURL, fmt.Sprintf(tokenStub, "code-revoked", "r-revoked"))
	stub(t, backendURL, refreshOK)
	stub(t, backendURL, refreshRevoked)
	stub(t, backendURL, channelsFresh)
	stub(t, backendURL, channelsExpired)
}

// signIn starts a login and completes the callback with code.
func signIn(t *testing.T, frontURL string, client *http.Client, code string) {
	t.Helper()

	resp, err := client.Get(frontURL + "/login")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Location"), "code_challenge_method=S256")

	resp, err = client.Get(frontURL + "/auth/callback?code=" + code)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/home", resp.Header.Get("Location"))
}

func TestExpiredAccessCookieIsRefreshedOnce(t *testing.T) {
	backendURL := setupBackend(t)
	loadStubs(t, backendURL)
	frontURL, client := startFrontend(t, backendURL)

	signIn(t, frontURL, client, "code-good")

	// Concurrent page loads all hit the expired cookie; one refresh serves
	// them all.
	const pages = 5
	var wg sync.WaitGroup
	statuses := make([]int, pages)
	bodies := make([]string, pages)
	for i := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(frontURL + "/home/channels")
			if err != nil {
				return
			}
			defer resp.Body.Close()
			var out struct {
				Channels []struct {
					Name string `json:"name"`
				} `json:"channels"`
			}
			_ = json.NewDecoder(resp.Body).Decode(&out)
			statuses[i] = resp.StatusCode
			if len(out.Channels) > 0 {
				bodies[i] = out.Channels[0].Name
			}
		}()
	}
	wg.Wait()

	for i := range pages {
		require.Equal(t, http.StatusOK, statuses[i])
		require.Equal(t, "General", bodies[i])
	}
	require.Equal(t, 1, requestCount(t, backendURL, "POST", "/api/refresh"))
}

func TestRevokedRefreshRedirectsToLogin(t *testing.T) {
	backendURL := setupBackend(t)
	loadStubs(t, backendURL)
	frontURL, client := startFrontend(t, backendURL)

	signIn(t, frontURL, client, "code-revoked")

	resp, err := client.Get(frontURL + "/home/channels")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.Contains(resp.Header.Get("Location"), "/protocol/openid-connect/auth"))
	require.Equal(t, "session-expired", resp.Header.Get("X-Redirect-Reason"))

	// The failed refresh cleared the session: the guard now sends the user
	// to the landing page without calling the backend.
	resp, err = client.Get(frontURL + "/home/channels")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	require.Equal(t, 1, requestCount(t, backendURL, "POST", "/api/refresh"))
}

func TestUnknownCodeFailsLogin(t *testing.T) {
	backendURL := setupBackend(t)
	loadStubs(t, backendURL)
	frontURL, client := startFrontend(t, backendURL)

	resp, err := client.Get(frontURL + "/login")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(frontURL + "/auth/callback?code=code-unknown")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "authentication_failed", body.Error)
}
