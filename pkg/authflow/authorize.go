package authflow

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Redirector builds identity-provider login URLs.
type Redirector struct {
	oauth     oauth2.Config
	verifiers VerifierStore
}

func NewRedirector(cfg Config, verifiers VerifierStore) *Redirector {
	return &Redirector{
		oauth: oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      cfg.scopes(),
			Endpoint:    oauth2.Endpoint{AuthURL: cfg.AuthorizeEndpoint()},
		},
		verifiers: verifiers,
	}
}

// BuildLoginURL starts a login attempt: it stores a fresh PKCE verifier under
// VerifierKey, replacing any unfinished attempt, and returns the authorization
// URL carrying the matching S256 challenge. It makes no network call.
func (r *Redirector) BuildLoginURL(ctx context.Context) (string, error) {
	pair := NewPKCEPair()
	if err := r.verifiers.Put(ctx, VerifierKey, pair.Verifier); err != nil {
		return "", fmt.Errorf("store pkce verifier: %w", err)
	}

	return r.oauth.AuthCodeURL("",
		oauth2.SetAuthURLParam("code_challenge", pair.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", ChallengeMethod),
	), nil
}
