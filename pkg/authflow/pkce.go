package authflow

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/aussiebroadwan/spoutbreeze/pkg/cryptox"
)

// ChallengeMethod is the only PKCE method the IdP is asked to use.
const ChallengeMethod = "S256"

// PKCEPair is a code verifier and its S256 challenge.
type PKCEPair struct {
	Verifier  string
	Challenge string
}

// GenerateVerifier returns 256 bits from crypto/rand, base64url encoded
// without padding (43 characters). It panics if the random source fails.
func GenerateVerifier() string {
	return cryptox.MustGenerateToken(cryptox.TokenSize256)
}

// GenerateChallenge returns base64url(sha256(verifier)) without padding.
func GenerateChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func NewPKCEPair() PKCEPair {
	v := GenerateVerifier()
	return PKCEPair{Verifier: v, Challenge: GenerateChallenge(v)}
}
