package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
)

// Redirect reasons reported in httpx.RedirectReasonHeader.
const (
	ReasonUnauthenticated      = "unauthenticated"
	ReasonAlreadyAuthenticated = "already-authenticated"
	ReasonSessionExpired       = "session-expired"
)

// protectedPrefixes need a session (or at least a refresh credential).
var protectedPrefixes = []string{"/home", "/settings"}

var errNoRedirectSlot = errors.New("no redirect slot on request context")

// redirectSlot holds the login URL a navigator asked for while a request was
// being served. The handler turns it into a 302.
type redirectSlot struct {
	mu  sync.Mutex
	url string
}

func (s *redirectSlot) set(u string) {
	s.mu.Lock()
	s.url = u
	s.mu.Unlock()
}

func (s *redirectSlot) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

type slotKey struct{}

func withRedirectSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, slotKey{}, &redirectSlot{})
}

func slotFrom(ctx context.Context) (*redirectSlot, bool) {
	s, ok := ctx.Value(slotKey{}).(*redirectSlot)
	return s, ok
}

// PendingRedirect returns the URL a navigator requested during this request.
func PendingRedirect(ctx context.Context) (string, bool) {
	s, ok := slotFrom(ctx)
	if !ok {
		return "", false
	}
	u := s.get()
	return u, u != ""
}

// Navigator records login redirects on the request being served. Install it
// on the authflow client used by the router.
var Navigator = authflow.NavigatorFunc(func(ctx context.Context, loginURL string) error {
	s, ok := slotFrom(ctx)
	if !ok {
		return errNoRedirectSlot
	}
	s.set(loginURL)
	return nil
})

// NavigationMiddleware makes the request path the current location and gives
// the request a redirect slot for Navigator.
func NavigationMiddleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authflow.ContextWithLocation(withRedirectSlot(r.Context()), r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionReporter reports which credentials are present.
type SessionReporter interface {
	Session(ctx context.Context) authflow.SessionState
}

// GuardMiddleware keeps anonymous visitors out of the protected pages and
// sends signed-in users from the landing page to /home. A visitor holding
// only a refresh credential is let through; the first API call refreshes.
func GuardMiddleware(sessions SessionReporter) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if strings.HasPrefix(path, "/auth/callback") || strings.HasPrefix(path, "/join/") {
				next.ServeHTTP(w, r)
				return
			}

			protected := isProtected(path)
			if !protected && path != "/" {
				next.ServeHTTP(w, r)
				return
			}

			st := sessions.Session(r.Context())
			log := slogx.FromContext(r.Context())

			if protected && !st.Authenticated() {
				if st.HasRefresh {
					log.Debug("guard: access missing, refresh present", "path", path)
					next.ServeHTTP(w, r)
					return
				}
				httpx.Redirect(w, r, "/", ReasonUnauthenticated)
				return
			}

			if path == "/" && st.Authenticated() {
				httpx.Redirect(w, r, "/home", ReasonAlreadyAuthenticated)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProtected(path string) bool {
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
