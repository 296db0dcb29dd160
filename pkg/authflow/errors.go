package authflow

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingVerifier means the callback arrived without a stored PKCE
	// verifier: a replayed or cross-context callback, or an expired attempt.
	ErrMissingVerifier = errors.New("authflow: missing pkce verifier")

	// ErrTokenExchangeFailed means the backend rejected the code exchange.
	ErrTokenExchangeFailed = errors.New("authflow: token exchange failed")

	// ErrRefreshInvalid means the refresh endpoint answered 401. It is an
	// expected terminal outcome and only ever logged.
	ErrRefreshInvalid = errors.New("authflow: refresh token invalid")

	// ErrRefreshTransport covers every other refresh failure.
	ErrRefreshTransport = errors.New("authflow: refresh failed")

	// ErrAuthorizationDenied is matched by *AuthorizationError.
	ErrAuthorizationDenied = errors.New("authflow: authorization denied")

	// ErrMissingCode means the callback carried neither a code nor an error.
	ErrMissingCode = errors.New("authflow: callback missing authorization code")

	// ErrJarNotClearable is returned by New in ModeCookie when the supplied
	// HTTP client has a cookie jar that cannot be cleared on logout.
	ErrJarNotClearable = errors.New("authflow: cookie jar does not implement ClearableJar")
)

// StatusError carries an unexpected backend status and body excerpt.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// AuthorizationError is the error an identity provider reports on the
// callback URL (RFC 6749 section 4.1.2.1).
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return "authorization error: " + e.Code
	}
	return fmt.Sprintf("authorization error: %s - %s", e.Code, e.Description)
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrAuthorizationDenied
}

// IsLoginFailure reports whether err should be shown to the user as a generic
// "authentication failed, start again" message.
func IsLoginFailure(err error) bool {
	return errors.Is(err, ErrMissingVerifier) ||
		errors.Is(err, ErrTokenExchangeFailed) ||
		errors.Is(err, ErrAuthorizationDenied) ||
		errors.Is(err, ErrMissingCode)
}

// maxErrorBody caps how much of a failed response body ends up in errors.
const maxErrorBody = 512

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
