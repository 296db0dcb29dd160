package authflow

import (
	"net/url"
	"slices"
	"strings"
	"time"
)

// Mode selects where session credentials live.
type Mode string

const (
	// ModeCookie keeps tokens in HTTP-only cookies managed by the backend.
	ModeCookie Mode = "cookie"
	// ModeToken keeps explicit tokens in a CredentialStore.
	ModeToken Mode = "token"
)

// Backend auth endpoints.
const (
	TokenPath   = "/api/token"
	RefreshPath = "/api/refresh"
	LogoutPath  = "/api/logout"
)

// DefaultTimeout bounds every outbound call made with the default HTTP client.
const DefaultTimeout = 10 * time.Second

// Config describes the backend and identity provider.
type Config struct {
	// APIURL is the backend base URL, e.g. http://localhost:8000.
	APIURL string
	// IdentityURL is the Keycloak base URL, e.g. http://localhost:8080.
	IdentityURL string
	Realm       string
	ClientID    string
	// RedirectURI must match the callback registered with the IdP exactly.
	RedirectURI string
	// Scopes always gains "openid" if missing.
	Scopes []string
	Mode   Mode
}

// AuthorizeEndpoint is the realm's OpenID Connect authorization endpoint.
func (c Config) AuthorizeEndpoint() string {
	return strings.TrimSuffix(c.IdentityURL, "/") +
		"/realms/" + url.PathEscape(c.Realm) + "/protocol/openid-connect/auth"
}

// APIEndpoint joins path onto the backend base URL.
func (c Config) APIEndpoint(path string) string {
	return strings.TrimSuffix(c.APIURL, "/") + path
}

func (c Config) scopes() []string {
	if slices.Contains(c.Scopes, "openid") {
		return c.Scopes
	}
	return append([]string{"openid"}, c.Scopes...)
}

func (c Config) mode() Mode {
	if c.Mode == ModeToken {
		return ModeToken
	}
	return ModeCookie
}
