package authflow

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Cookie names the backend uses in ModeCookie.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Credentials are the session tokens. In ModeCookie they stay empty: the
// tokens only exist inside the cookie jar.
type Credentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (c Credentials) IsZero() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// CredentialStore holds the current session credentials.
type CredentialStore interface {
	Get(ctx context.Context) (Credentials, error)
	Set(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}

// MemoryCredentials is a process-local CredentialStore for ModeToken.
type MemoryCredentials struct {
	mu    sync.RWMutex
	creds Credentials
}

func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{}
}

func (m *MemoryCredentials) Get(context.Context) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, nil
}

func (m *MemoryCredentials) Set(_ context.Context, creds Credentials) error {
	m.mu.Lock()
	m.creds = creds
	m.mu.Unlock()
	return nil
}

func (m *MemoryCredentials) Clear(context.Context) error {
	m.mu.Lock()
	m.creds = Credentials{}
	m.mu.Unlock()
	return nil
}

// ClearableJar is a cookie jar that can forget every cookie.
type ClearableJar interface {
	http.CookieJar
	Clear(ctx context.Context) error
}

// JarCredentials is the ModeCookie CredentialStore. The backend owns the
// token values, so Get is always empty and Set does nothing; Clear empties
// the jar.
type JarCredentials struct {
	Jar ClearableJar
}

func (JarCredentials) Get(context.Context) (Credentials, error) { return Credentials{}, nil }

func (JarCredentials) Set(context.Context, Credentials) error { return nil }

func (j JarCredentials) Clear(ctx context.Context) error {
	return j.Jar.Clear(ctx)
}

// MemoryJar is an in-memory ClearableJar using the public suffix list.
type MemoryJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func NewMemoryJar() *MemoryJar {
	return &MemoryJar{jar: newCookieJar()}
}

func newCookieJar() *cookiejar.Jar {
	// cookiejar.New only fails on invalid options.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

func (j *MemoryJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *MemoryJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *MemoryJar) Clear(context.Context) error {
	j.mu.Lock()
	j.jar = newCookieJar()
	j.mu.Unlock()
	return nil
}

// SessionState says which credentials are currently present.
type SessionState struct {
	HasAccess  bool `json:"has_access"`
	HasRefresh bool `json:"has_refresh"`
}

// Authenticated reports whether an access credential is present.
func (s SessionState) Authenticated() bool { return s.HasAccess }

func jarState(jar http.CookieJar, apiURL string) SessionState {
	u, err := url.Parse(apiURL)
	if jar == nil || err != nil {
		return SessionState{}
	}

	var st SessionState
	for _, c := range jar.Cookies(u) {
		switch {
		case c.Name == AccessCookie && c.Value != "":
			st.HasAccess = true
		case c.Name == RefreshCookie && c.Value != "":
			st.HasRefresh = true
		}
	}
	return st
}
