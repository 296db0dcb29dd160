package domain

import "time"

// Cookie is a persisted cookie jar entry. Host, Path and Name identify it;
// Value is sealed.
type Cookie struct {
	Host     string
	Path     string
	Name     string
	Value    []byte
	Domain   string
	Origin   string // scheme://host the cookie was received from
	Expires  *time.Time
	Secure   bool
	HTTPOnly bool
	SameSite int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the cookie has expired at now. Session cookies
// (no expiry) never expire here.
func (c Cookie) Expired(now time.Time) bool {
	return c.Expires != nil && !c.Expires.After(now)
}
