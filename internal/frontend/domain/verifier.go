package domain

import "time"

// Verifier is a stored PKCE code verifier awaiting its callback.
type Verifier struct {
	Key       string
	Value     string
	CreatedAt time.Time
}

// Expired reports whether the verifier is older than ttl at now. A zero ttl
// never expires.
func (v Verifier) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(v.CreatedAt) >= ttl
}
