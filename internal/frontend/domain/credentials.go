package domain

import "time"

// SealedCredentials is a token-variant credential pair encrypted at rest.
// Profile separates independent sessions sharing one database.
type SealedCredentials struct {
	Profile   string
	Sealed    []byte
	UpdatedAt time.Time
}
