// Package jwtx inspects access tokens issued by the identity provider.
//
// The front-end never verifies signatures: the backend does. Claims are read
// only to show who is signed in and to notice an access token that is about to
// expire.
package jwtx

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// RealmAccess mirrors Keycloak's realm_access claim.
type RealmAccess struct {
	Roles []string `json:"roles,omitempty"`
}

// Claims are the Keycloak access-token claims the front-end reads.
type Claims struct {
	jwt.RegisteredClaims

	SessionState      string      `json:"session_state,omitempty"`
	Scope             string      `json:"scope,omitempty"`
	PreferredUsername string      `json:"preferred_username,omitempty"`
	Email             string      `json:"email,omitempty"`
	GivenName         string      `json:"given_name,omitempty"`
	FamilyName        string      `json:"family_name,omitempty"`
	RealmAccess       RealmAccess `json:"realm_access"`
}

// Scopes splits the space-delimited scope claim.
func (c *Claims) Scopes() []string {
	return strings.Fields(c.Scope)
}

// HasRole reports whether the realm roles include role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.RealmAccess.Roles, role)
}

// DisplayName prefers "given family", then the username, then the subject.
func (c *Claims) DisplayName() string {
	if n := strings.TrimSpace(c.GivenName + " " + c.FamilyName); n != "" {
		return n
	}
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}

// ExpiresIn returns the time left before exp, or zero when exp is absent or past.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}

// ValidateExpiryWithLeeway checks exp and nbf with a grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
