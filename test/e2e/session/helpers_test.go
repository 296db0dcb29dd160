package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/app"
)

/*
 * The backend is played by WireMock: each test loads the stubs it needs
 * through the admin API, then drives the web front-end over real HTTP.
 */

const wiremockImage = "wiremock/wiremock:3.9.1"

// setupBackend starts a WireMock container and returns its base URL.
func setupBackend(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        wiremockImage,
		ExposedPorts: []string{"8080/tcp"},
		WaitingFor: wait.ForHTTP("/__admin/mappings").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// stub registers one WireMock mapping.
func stub(t *testing.T, backendURL, mapping string) {
	t.Helper()

	resp, err := http.Post(backendURL+"/__admin/mappings", "application/json", bytes.NewBufferString(mapping))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// requestCount asks WireMock how many requests matched method and path.
func requestCount(t *testing.T, backendURL, method, path string) int {
	t.Helper()

	body := fmt.Sprintf(`{"method": %q, "url": %q}`, method, path)
	resp, err := http.Post(backendURL+"/__admin/requests/count", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Count
}

// startFrontend runs the web front-end in cookie mode against backendURL.
// The returned client does not follow redirects.
func startFrontend(t *testing.T, backendURL string) (string, *http.Client) {
	t.Helper()

	cfg := app.DefaultConfig()
	cfg.APIURL = backendURL
	cfg.DatabaseFile = ":memory:"
	cfg.LogLevel = "error"

	application, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Shutdown()
	})

	client := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv.URL, client
}
