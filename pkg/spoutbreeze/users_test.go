package spoutbreeze

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUsersGetCachesAndDeduplicates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/u1", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		writeJSON(w, http.StatusOK, User{ID: "u1", FirstName: "Ada", LastName: "Lovelace"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	results := make(chan *User, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := c.Users.Get(ctx, "u1")
			require.NoError(t, err)
			results <- u
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for u := range results {
		require.Equal(t, "Ada Lovelace", u.FullName())
	}
	require.EqualValues(t, 1, calls.Load())

	// Served from cache.
	_, err := c.Users.Get(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestUsersGetSurvivesFirstCallerCancelling(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/u1", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(arrived)
		}
		<-release
		writeJSON(w, http.StatusOK, User{ID: "u1", FirstName: "Ada", LastName: "Lovelace"})
	})
	c := newTestClient(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Users.Get(ctx, "u1")
		first <- err
	}()
	<-arrived

	var u *User
	second := make(chan error, 1)
	go func() {
		var err error
		u, err = c.Users.Get(context.Background(), "u1")
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	close(release)
	require.NoError(t, <-second)
	require.Equal(t, "Ada Lovelace", u.FullName())
	require.EqualValues(t, 1, calls.Load())
}

func TestUsersGetCacheExpires(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/u1", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, User{ID: "u1"})
	})
	c := newTestClient(t, mux, WithUserCacheTTL(time.Minute))

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	c.Users.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.Users.Get(ctx, "u1")
	require.NoError(t, err)
	_, err = c.Users.Get(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())

	now = now.Add(2 * time.Minute)
	_, err = c.Users.Get(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())

	c.Users.Forget("u1")
	_, err = c.Users.Get(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 3, calls.Load())
}

func TestUsersGetErrorIsNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/ghost", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeRaw(w, http.StatusNotFound, `{"detail":"User not found"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Users.Get(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.Users.Get(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	require.EqualValues(t, 2, calls.Load())
}

func TestUsersRoleAndProfile(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []User{{ID: "u1"}, {ID: "u2"}})
	})
	mux.HandleFunc("PUT /api/users/u2/role", func(w http.ResponseWriter, r *http.Request) {
		var body RoleUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, User{ID: "u2", Roles: body.Role})
	})
	mux.HandleFunc("PUT /api/me/profile", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]any{"first_name": "Grace"}, body)
		writeJSON(w, http.StatusOK, User{ID: "u1", FirstName: "Grace"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	users, err := c.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	updated, err := c.Users.UpdateRole(ctx, "u2", RoleModerator)
	require.NoError(t, err)
	require.Equal(t, RoleModerator, updated.PrimaryRole())

	_, err = c.Users.UpdateRole(ctx, "u2", "superuser")
	require.ErrorIs(t, err, ErrValidation)

	first := "Grace"
	me, err := c.Users.UpdateProfile(ctx, ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, "Grace", me.FirstName)

	bad := "not-an-email"
	_, err = c.Users.UpdateProfile(ctx, ProfileUpdate{Email: &bad})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUserRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		roles   string
		primary string
	}{
		{roles: "user, admin", primary: RoleAdmin},
		{roles: "moderator,user", primary: RoleModerator},
		{roles: "user", primary: RoleUser},
		{roles: "", primary: RoleUser},
		{roles: " , ", primary: RoleUser},
	}
	for _, tt := range tests {
		require.Equal(t, tt.primary, User{Roles: tt.roles}.PrimaryRole(), "roles %q", tt.roles)
	}

	require.Equal(t, []string{"user", "admin"}, User{Roles: "user, admin"}.RoleList())
}

func TestCanChangeRole(t *testing.T) {
	t.Parallel()

	me := &User{ID: "me", Roles: "admin"}

	require.False(t, CanChangeRole(nil, User{ID: "x", Roles: "admin"}))
	require.False(t, CanChangeRole(me, User{ID: "me", Roles: "admin"}))
	require.False(t, CanChangeRole(me, User{ID: "x", Roles: "user"}))
	require.True(t, CanChangeRole(me, User{ID: "x", Roles: "moderator"}))
	require.True(t, CanChangeRole(me, User{ID: "y", Roles: "user,admin"}))
}
