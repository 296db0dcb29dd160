package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

// PublicJoiner resolves public join links.
type PublicJoiner interface {
	PublicJoinURL(ctx context.Context, id, name, role string) (string, error)
}

// JoinHandler serves the public join page.
type JoinHandler struct {
	Events PublicJoiner
}

// ServeHTTP handles GET /join/{eventId}
//
//	@Summary		Join an event
//	@Description	Public join link. Resolves a named meeting link without a session and redirects to it.
//	@Tags			Join
//	@Produce		json
//	@Param			eventId	path	string	true	"Event ID"
//	@Param			name	query	string	true	"Full name shown in the meeting"
//	@Param			role	query	string	false	"attendee (default) or moderator"
//	@Success		302		"Redirect to the meeting"
//	@Failure		404		{object}	httpx.ErrorBody	"event_not_found"
//	@Failure		409		{object}	httpx.ErrorBody	"event_not_started"
//	@Failure		422		{object}	httpx.ErrorBody	"invalid_request"
//	@Failure		429		{object}	httpx.ErrorBody	"rate_limit_exceeded"
//	@Failure		502		{object}	httpx.ErrorBody	"upstream_error"
//	@Router			/join/{eventId} [get]
func (h *JoinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := r.PathValue("eventId")

	role := r.URL.Query().Get("role")
	if role != spoutbreeze.JoinModerator {
		role = spoutbreeze.JoinAttendee
	}

	joinURL, err := h.Events.PublicJoinURL(ctx, eventID, r.URL.Query().Get("name"), role)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	if joinURL == "" {
		slogx.FromContext(ctx).Warn("backend returned no join url", "event_id", eventID, "role", role)
		httpx.WriteError(w, http.StatusBadGateway, "upstream_error", "Failed to get join URL")
		return
	}

	httpx.Redirect(w, r, joinURL, "")
}
