package authflow

import (
	"context"
	"strings"
)

// Navigator sends the user somewhere else, e.g. to a login URL after the
// session could not be refreshed.
type Navigator interface {
	RedirectTo(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, url string) error

func (f NavigatorFunc) RedirectTo(ctx context.Context, url string) error { return f(ctx, url) }

// LocationFunc reports the user's current location (a path such as
// "/home/events"). An empty location is never public.
type LocationFunc func(ctx context.Context) string

type locationKey struct{}

// ContextWithLocation records the current location for LocationFromContext.
func ContextWithLocation(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, locationKey{}, path)
}

// LocationFromContext is the default LocationFunc.
func LocationFromContext(ctx context.Context) string {
	p, _ := ctx.Value(locationKey{}).(string)
	return p
}

// PublicPaths lists locations where a failed refresh must not force a login
// redirect.
type PublicPaths struct {
	Exact    []string
	Prefixes []string
}

// DefaultPublicPaths covers the landing page, the auth callback and public
// join links.
var DefaultPublicPaths = PublicPaths{
	Exact:    []string{"/"},
	Prefixes: []string{"/auth/", "/join/"},
}

// Match reports whether path is public. The landing page matches exactly so
// that "/" does not make every path public.
func (p PublicPaths) Match(path string) bool {
	if path == "" {
		return false
	}
	for _, e := range p.Exact {
		if path == e {
			return true
		}
	}
	for _, pre := range p.Prefixes {
		if strings.HasPrefix(path, pre) {
			return true
		}
	}
	return false
}
