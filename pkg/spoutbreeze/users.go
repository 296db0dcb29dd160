package spoutbreeze

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Platform roles, highest first.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// UserService groups the user endpoints. Lookups by id are cached.
type UserService struct {
	c   *Client
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedUser
	group singleflight.Group
}

type cachedUser struct {
	user      User
	fetchedAt time.Time
}

func newUserService(c *Client, ttl time.Duration) *UserService {
	return &UserService{
		c:     c,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cachedUser),
	}
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context) (*User, error) {
	var out User
	if err := s.c.call(ctx, s.c.api, http.MethodGet, "/api/me", nil, &out); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &out, nil
}

// Get returns a user by id. Results are cached for the configured TTL and
// concurrent lookups of the same id share one request. The shared request
// outlives any single caller; each caller stops waiting when its own ctx ends.
func (s *UserService) Get(ctx context.Context, id string) (*User, error) {
	if u, ok := s.cached(id); ok {
		return &u, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(id, func() (any, error) {
		if u, ok := s.cached(id); ok {
			return u, nil
		}

		var u User
		if err := s.c.call(fetchCtx, s.c.api, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &u); err != nil {
			return nil, err
		}
		s.store(id, u)
		return u, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("get user: %w", res.Err)
		}
		u := res.Val.(User)
		return &u, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("get user: %w", ctx.Err())
	}
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.c.call(ctx, s.c.api, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// UpdateRole sets a user's role and returns the updated user.
func (s *UserService) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	req := RoleUpdate{Role: role}
	if err := s.c.check(req); err != nil {
		return nil, err
	}

	var out User
	path := "/api/users/" + url.PathEscape(id) + "/role"
	if err := s.c.call(ctx, s.c.api, http.MethodPut, path, req, &out); err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	s.Forget(id)
	return &out, nil
}

// UpdateProfile changes the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*User, error) {
	if err := s.c.check(upd); err != nil {
		return nil, err
	}

	var out User
	if err := s.c.call(ctx, s.c.api, http.MethodPut, "/api/me/profile", upd, &out); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if out.ID != "" {
		s.Forget(out.ID)
	}
	return &out, nil
}

// Forget drops a cached user.
func (s *UserService) Forget(id string) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

func (s *UserService) cached(id string) (User, bool) {
	if s.ttl <= 0 {
		return User{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[id]
	if !ok || s.now().Sub(entry.fetchedAt) >= s.ttl {
		return User{}, false
	}
	return entry.user, true
}

func (s *UserService) store(id string, u User) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.cache[id] = cachedUser{user: u, fetchedAt: s.now()}
	s.mu.Unlock()
}

// ============================================================================
// Roles
// ============================================================================

// RoleList splits the comma separated roles field.
func (u User) RoleList() []string {
	var roles []string
	for _, r := range strings.Split(u.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.RoleList(), role)
}

// PrimaryRole is the highest role the user holds.
func (u User) PrimaryRole() string {
	switch {
	case u.HasRole(RoleAdmin):
		return RoleAdmin
	case u.HasRole(RoleModerator):
		return RoleModerator
	default:
		return RoleUser
	}
}

// FullName is the display name of the user.
func (u User) FullName() string {
	return fullName(u.FirstName, u.LastName)
}

// CanChangeRole reports whether current may change target's role. Nobody
// changes their own role, and only admins and moderators can be changed.
func CanChangeRole(current *User, target User) bool {
	if current == nil || current.ID == target.ID {
		return false
	}
	return target.HasRole(RoleAdmin) || target.HasRole(RoleModerator)
}
