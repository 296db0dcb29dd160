package http

import (
	"net/http"

	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/jwtx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
)

// AuthHandler serves the login, callback and logout pages.
type AuthHandler struct {
	Auth   *authflow.Client
	Tokens TokenSource
}

// HandleLanding handles GET /
//
//	@Summary		Landing page
//	@Description	Anonymous landing page. Signed-in users are redirected to /home.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	LandingResponse
//	@Success		302	"Redirect to /home when already authenticated"
//	@Router			/ [get]
func (h *AuthHandler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	st := h.Auth.Session(r.Context())
	httpx.WriteJSON(w, http.StatusOK, LandingResponse{
		App:           "spoutbreeze",
		Authenticated: st.Authenticated(),
		LoginURL:      "/login",
	})
}

// HandleLogin handles GET /login
//
//	@Summary		Start login
//	@Description	Stores a fresh PKCE verifier and redirects to the identity provider.
//	@Tags			Auth
//	@Success		302	"Redirect to the identity provider"
//	@Failure		500	{object}	httpx.ErrorBody
//	@Router			/login [get]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	loginURL, err := h.Auth.BuildLoginURL(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to build login url", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Could not start login")
		return
	}
	httpx.Redirect(w, r, loginURL, "")
}

// HandleCallback handles GET /auth/callback
//
//	@Summary		Login callback
//	@Description	Exchanges the authorization code for a session and redirects to /home.
//	@Tags			Auth
//	@Param			code				query	string	false	"Authorization code"
//	@Param			error				query	string	false	"Identity provider error"
//	@Param			error_description	query	string	false	"Identity provider error description"
//	@Success		302					"Redirect to /home"
//	@Failure		401					{object}	httpx.ErrorBody	"authentication_failed"
//	@Failure		502					{object}	httpx.ErrorBody	"upstream_error"
//	@Router			/auth/callback [get]
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	code, err := authflow.ParseCallbackQuery(r.URL.Query())
	if err == nil {
		_, err = h.Auth.ExchangeCode(ctx, code)
	}
	if err != nil {
		if authflow.IsLoginFailure(err) {
			log.Warn("login failed", "err", err)
			httpx.WriteError(w, http.StatusUnauthorized, "authentication_failed",
				"Authentication failed. Please start the login again.")
			return
		}
		log.Error("token exchange error", "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "upstream_error", "The backend could not be reached.")
		return
	}

	log.Info("login completed")
	httpx.Redirect(w, r, "/home", "")
}

// HandleLogout handles POST /logout
//
//	@Summary		Logout
//	@Description	Ends the backend session and clears local credentials. Always succeeds locally.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authflow.LogoutResult
//	@Router			/logout [post]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	res := h.Auth.Logout(r.Context())
	httpx.WriteJSON(w, http.StatusOK, res)
}

// HandleSession handles GET /home/session
//
//	@Summary		Current session
//	@Description	Reports which credentials are held and the unverified access-token claims.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Router			/home/session [get]
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := h.Auth.Session(ctx)

	resp := SessionResponse{
		Authenticated: st.Authenticated(),
		HasRefresh:    st.HasRefresh,
	}

	if h.Tokens != nil {
		if raw, ok := h.Tokens(ctx); ok {
			claims, err := jwtx.Peek(raw)
			if err != nil {
				slogx.FromContext(ctx).Debug("access token is not a jwt", "err", err)
			} else {
				resp.Subject = claims.Subject
				resp.Username = claims.PreferredUsername
				resp.Name = claims.DisplayName()
				resp.Email = claims.Email
				resp.Roles = claims.RealmAccess.Roles
				if claims.ExpiresAt != nil {
					exp := claims.ExpiresAt.Time
					resp.ExpiresAt = &exp
				}
			}
		}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
