package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/domain"
	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/cryptox"
)

// PersistentJar is a cookie jar that keeps its cookies in the Store so a
// session survives restarts and is shared between the CLI and the web
// front-end. Matching is done by an in-memory jar; every change is written
// through, with values sealed. When another process commits to the Store,
// the in-memory jar is rebuilt before the next lookup.
type PersistentJar struct {
	store  Store
	sealer *cryptox.Sealer
	log    *slog.Logger
	now    func() time.Time

	// writes serialises reloads with local writes so neither is lost.
	writes  sync.Mutex
	mu      sync.RWMutex
	mem     *authflow.MemoryJar
	version int64
}

var _ authflow.ClearableJar = (*PersistentJar)(nil)

// NewPersistentJar creates a jar and loads the stored cookies into it.
func NewPersistentJar(ctx context.Context, s Store, sealer *cryptox.Sealer, log *slog.Logger) (*PersistentJar, error) {
	j := &PersistentJar{
		store:  s,
		sealer: sealer,
		log:    log,
		now:    time.Now,
	}
	if err := j.load(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

// load rebuilds the in-memory jar from the Store.
func (j *PersistentJar) load(ctx context.Context) error {
	j.writes.Lock()
	defer j.writes.Unlock()

	version, err := j.store.DataVersion(ctx)
	if err != nil {
		return fmt.Errorf("read data version: %w", err)
	}
	rows, err := j.store.Cookies().ListCookies(ctx)
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}

	mem := authflow.NewMemoryJar()

	now := j.now()
	loaded := 0
	for _, row := range rows {
		if row.Expired(now) {
			continue
		}
		value, err := j.sealer.OpenString(row.Value)
		if err != nil {
			// Sealed under another master key; the session is gone.
			j.log.Warn("dropping unreadable cookie", "name", row.Name, "host", row.Host, "error", err)
			continue
		}
		origin, err := url.Parse(row.Origin + row.Path)
		if err != nil {
			continue
		}

		c := &http.Cookie{
			Name:     row.Name,
			Value:    value,
			Path:     row.Path,
			Domain:   row.Domain,
			Secure:   row.Secure,
			HttpOnly: row.HTTPOnly,
			SameSite: http.SameSite(row.SameSite),
		}
		if row.Expires != nil {
			c.Expires = *row.Expires
		}
		mem.SetCookies(origin, []*http.Cookie{c})
		loaded++
	}

	j.mu.Lock()
	j.mem = mem
	j.version = version
	j.mu.Unlock()

	j.log.Debug("cookie jar loaded", "cookies", loaded, "data_version", version)
	return nil
}

// sync reloads the jar when another process changed the Store.
func (j *PersistentJar) sync(ctx context.Context) {
	version, err := j.store.DataVersion(ctx)
	if err != nil {
		j.log.Warn("failed to read data version", "error", err)
		return
	}

	j.mu.RLock()
	stale := version != j.version
	j.mu.RUnlock()
	if !stale {
		return
	}

	if err := j.load(ctx); err != nil {
		j.log.Warn("failed to reload cookies", "error", err)
	}
}

func (j *PersistentJar) current() *authflow.MemoryJar {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.mem
}

// SetCookies implements http.CookieJar.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	ctx := context.Background()
	j.sync(ctx)

	j.writes.Lock()
	defer j.writes.Unlock()
	j.current().SetCookies(u, cookies)

	now := j.now()
	for _, c := range cookies {
		if err := j.persist(ctx, u, c, now); err != nil {
			j.log.Warn("failed to persist cookie", "name", c.Name, "host", u.Hostname(), "error", err)
		}
	}
}

func (j *PersistentJar) persist(ctx context.Context, u *url.URL, c *http.Cookie, now time.Time) error {
	host := u.Hostname()
	path := c.Path
	if path == "" || path[0] != '/' {
		path = defaultCookiePath(u.Path)
	}

	var expires *time.Time
	switch {
	case c.MaxAge < 0:
		return j.store.Cookies().DeleteCookie(ctx, host, path, c.Name)
	case c.MaxAge > 0:
		t := now.Add(time.Duration(c.MaxAge) * time.Second)
		expires = &t
	case !c.Expires.IsZero():
		if !c.Expires.After(now) {
			return j.store.Cookies().DeleteCookie(ctx, host, path, c.Name)
		}
		t := c.Expires
		expires = &t
	}

	sealed, err := j.sealer.SealString(c.Value)
	if err != nil {
		return err
	}

	return j.store.Cookies().UpsertCookie(ctx, domain.Cookie{
		Host:      host,
		Path:      path,
		Name:      c.Name,
		Value:     sealed,
		Domain:    c.Domain,
		Origin:    u.Scheme + "://" + u.Host,
		Expires:   expires,
		Secure:    c.Secure,
		HTTPOnly:  c.HttpOnly,
		SameSite:  int(c.SameSite),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.sync(context.Background())
	return j.current().Cookies(u)
}

// Clear forgets every cookie, in memory and on disk.
func (j *PersistentJar) Clear(ctx context.Context) error {
	j.writes.Lock()
	defer j.writes.Unlock()

	_ = j.current().Clear(ctx)
	if err := j.store.Cookies().DeleteAllCookies(ctx); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}

// defaultCookiePath is the RFC 6265 section 5.1.4 default path.
func defaultCookiePath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
