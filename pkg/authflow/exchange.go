package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/spoutbreeze/pkg/cryptox"
)

// Exchanger talks to the backend's token, refresh and logout endpoints.
type Exchanger struct {
	cfg       Config
	http      *http.Client
	creds     CredentialStore
	verifiers VerifierStore
	log       *slog.Logger
}

func NewExchanger(cfg Config, hc *http.Client, creds CredentialStore, verifiers VerifierStore, log *slog.Logger) *Exchanger {
	if log == nil {
		log = slog.Default()
	}
	return &Exchanger{cfg: cfg, http: hc, creds: creds, verifiers: verifiers, log: log}
}

type tokenRequest struct {
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	CodeVerifier string `json:"code_verifier"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ExchangeCode trades an authorization code and the stored PKCE verifier for
// session credentials. The verifier is consumed whatever the outcome, so a
// second call for the same attempt fails with ErrMissingVerifier. Failures
// are never retried: the caller restarts the login.
func (e *Exchanger) ExchangeCode(ctx context.Context, code string) (Credentials, error) {
	verifier, ok, err := e.verifiers.Take(ctx, VerifierKey)
	if err != nil {
		_ = e.verifiers.Delete(ctx, VerifierKey)
		return Credentials{}, fmt.Errorf("%w: read verifier: %w", ErrTokenExchangeFailed, err)
	}
	if !ok || verifier == "" {
		return Credentials{}, ErrMissingVerifier
	}

	status, body, err := postJSON(ctx, e.http, e.cfg.APIEndpoint(TokenPath), tokenRequest{
		Code:         code,
		RedirectURI:  e.cfg.RedirectURI,
		CodeVerifier: verifier,
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", ErrTokenExchangeFailed, err)
	}
	if !isSuccess(status) {
		return Credentials{}, fmt.Errorf("%w: %w", ErrTokenExchangeFailed,
			&StatusError{StatusCode: status, Body: truncate(body)})
	}

	var creds Credentials
	if err := decodeOptional(body, &creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: decode response: %w", ErrTokenExchangeFailed, err)
	}
	if e.cfg.mode() == ModeToken && (creds.AccessToken == "" || creds.RefreshToken == "") {
		return Credentials{}, fmt.Errorf("%w: response carried no tokens", ErrTokenExchangeFailed)
	}
	if err := e.creds.Set(ctx, creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: store credentials: %w", ErrTokenExchangeFailed, err)
	}

	e.log.DebugContext(ctx, "token exchange succeeded",
		"mode", e.cfg.mode(),
		"access_fp", cryptox.Fingerprint(creds.AccessToken),
	)
	return creds, nil
}

// Refresh asks the backend for new credentials. It never returns an error:
// false means "not authenticated" and the stored credentials are cleared.
// A 401 is the expected end of a session and is logged at debug; anything
// else is logged at warn.
func (e *Exchanger) Refresh(ctx context.Context) (Credentials, bool) {
	creds, err := e.refresh(ctx)
	if err == nil {
		return creds, true
	}

	if cerr := e.creds.Clear(ctx); cerr != nil {
		e.log.WarnContext(ctx, "clear credentials after refresh failure", "err", cerr)
	}

	if errors.Is(err, ErrRefreshInvalid) {
		e.log.DebugContext(ctx, "refresh rejected, session ended", "err", err)
	} else {
		e.log.WarnContext(ctx, "refresh failed", "err", err)
	}
	return Credentials{}, false
}

func (e *Exchanger) refresh(ctx context.Context) (Credentials, error) {
	current, err := e.creds.Get(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: read credentials: %w", ErrRefreshTransport, err)
	}

	var payload any
	if e.cfg.mode() == ModeToken {
		if current.RefreshToken == "" {
			return Credentials{}, fmt.Errorf("%w: no refresh token stored", ErrRefreshInvalid)
		}
		payload = refreshRequest{RefreshToken: current.RefreshToken}
	}

	status, body, err := postJSON(ctx, e.http, e.cfg.APIEndpoint(RefreshPath), payload)
	switch {
	case err != nil:
		return Credentials{}, fmt.Errorf("%w: %w", ErrRefreshTransport, err)
	case status == http.StatusUnauthorized:
		return Credentials{}, ErrRefreshInvalid
	case !isSuccess(status):
		return Credentials{}, fmt.Errorf("%w: %w", ErrRefreshTransport,
			&StatusError{StatusCode: status, Body: truncate(body)})
	}

	var next Credentials
	if err := decodeOptional(body, &next); err != nil {
		return Credentials{}, fmt.Errorf("%w: decode response: %w", ErrRefreshTransport, err)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}
	if err := e.creds.Set(ctx, next); err != nil {
		return Credentials{}, fmt.Errorf("%w: store credentials: %w", ErrRefreshTransport, err)
	}

	e.log.DebugContext(ctx, "session refreshed",
		"refresh_rotated", next.RefreshToken != current.RefreshToken,
		"refresh_fp", cryptox.Fingerprint(next.RefreshToken),
	)
	return next, nil
}

// LogoutResult is the backend's logout answer.
type LogoutResult struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// LogoutFallback is returned when the logout call fails.
var LogoutFallback = LogoutResult{
	Message:    "Logout completed (with errors)",
	StatusCode: http.StatusInternalServerError,
}

// Logout ends the session on the backend, then clears the verifier and
// credential stores no matter how the call went.
func (e *Exchanger) Logout(ctx context.Context) (result LogoutResult) {
	current, _ := e.creds.Get(ctx)

	defer func() {
		if err := e.verifiers.Delete(ctx, VerifierKey); err != nil {
			e.log.WarnContext(ctx, "clear verifier on logout", "err", err)
		}
		if err := e.creds.Clear(ctx); err != nil {
			e.log.WarnContext(ctx, "clear credentials on logout", "err", err)
		}
	}()

	var payload any
	if current.RefreshToken != "" {
		payload = refreshRequest{RefreshToken: current.RefreshToken}
	}

	status, body, err := postJSON(ctx, e.http, e.cfg.APIEndpoint(LogoutPath), payload)
	if err != nil {
		e.log.WarnContext(ctx, "logout request failed", "err", err)
		return LogoutFallback
	}
	if !isSuccess(status) {
		e.log.WarnContext(ctx, "logout rejected", "status", status, "body", truncate(body))
		return LogoutFallback
	}

	if err := decodeOptional(body, &result); err != nil {
		e.log.DebugContext(ctx, "logout response not json", "err", err)
		result = LogoutResult{}
	}
	if result.Message == "" {
		result.Message = "Logged out"
	}
	if result.StatusCode == 0 {
		result.StatusCode = status
	}
	return result
}
