package http

import (
	"net/http"

	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

// SettingsHandler serves the profile and user management pages.
type SettingsHandler struct {
	Users *spoutbreeze.UserService
}

// HandleProfile handles GET /settings/profile
//
//	@Summary	Own profile
//	@Tags		Settings
//	@Produce	json
//	@Success	200	{object}	spoutbreeze.User
//	@Router		/settings/profile [get]
func (h *SettingsHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	me, err := h.Users.Me(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, me)
}

// HandleUpdateProfile handles PATCH /settings/profile
//
//	@Summary	Update own profile
//	@Tags		Settings
//	@Accept		json
//	@Produce	json
//	@Param		request	body		spoutbreeze.ProfileUpdate	true	"Fields to change"
//	@Success	200		{object}	spoutbreeze.User
//	@Failure	422		{object}	httpx.ErrorBody
//	@Router		/settings/profile [patch]
func (h *SettingsHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd spoutbreeze.ProfileUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	out, err := h.Users.UpdateProfile(r.Context(), upd)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleListUsers handles GET /settings/users
//
//	@Summary	List users
//	@Tags		Settings
//	@Produce	json
//	@Success	200	{array}		spoutbreeze.User
//	@Failure	403	{object}	httpx.ErrorBody
//	@Router		/settings/users [get]
func (h *SettingsHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if users == nil {
		users = []spoutbreeze.User{}
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// HandleUpdateRole handles PATCH /settings/users/{id}/role
//
//	@Summary		Change a user's role
//	@Description	Nobody changes their own role; only admins and moderators can be changed.
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		spoutbreeze.RoleUpdate	true	"New role"
//	@Success		200		{object}	spoutbreeze.User
//	@Failure		403		{object}	httpx.ErrorBody
//	@Failure		422		{object}	httpx.ErrorBody
//	@Router			/settings/users/{id}/role [patch]
func (h *SettingsHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req spoutbreeze.RoleUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	me, err := h.Users.Me(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}
	target, err := h.Users.Get(ctx, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !spoutbreeze.CanChangeRole(me, *target) {
		slogx.FromContext(ctx).Warn("role change refused", "user_id", me.ID, "target_id", id)
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "This user's role cannot be changed")
		return
	}

	out, err := h.Users.UpdateRole(ctx, id, req.Role)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
