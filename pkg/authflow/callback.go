package authflow

import (
	"fmt"
	"net/url"
)

// ParseAuthorizationCallback extracts the authorization code from the URL the
// identity provider redirected to. An IdP error becomes *AuthorizationError.
func ParseAuthorizationCallback(callbackURL string) (string, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", fmt.Errorf("parse callback url: %w", err)
	}
	return ParseCallbackQuery(u.Query())
}

// ParseCallbackQuery is ParseAuthorizationCallback for an already parsed query.
func ParseCallbackQuery(q url.Values) (string, error) {
	if code := q.Get("error"); code != "" {
		return "", &AuthorizationError{Code: code, Description: q.Get("error_description")}
	}

	code := q.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}
