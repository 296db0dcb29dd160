package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

// ============================================================================
// Dashboard
// ============================================================================

// DashboardHandler serves the /home overview.
type DashboardHandler struct {
	API *spoutbreeze.Client
}

// ServeHTTP handles GET /home
//
//	@Summary		Dashboard
//	@Description	Upcoming and past events plus channels, fetched concurrently.
//	@Tags			Home
//	@Produce		json
//	@Success		200	{object}	DashboardResponse
//	@Success		302	"Redirect to login when the session cannot be refreshed"
//	@Failure		502	{object}	httpx.ErrorBody
//	@Router			/home [get]
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		upcoming, past *spoutbreeze.Events
		channels       *spoutbreeze.Channels
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		upcoming, err = h.API.Events.Upcoming(ctx)
		return err
	})
	g.Go(func() (err error) {
		past, err = h.API.Events.Past(ctx)
		return err
	})
	g.Go(func() (err error) {
		channels, err = h.API.Channels.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(w, r, err)
		return
	}

	resp := DashboardResponse{
		Upcoming: upcoming.Events,
		Past:     past.Events,
		Channels: channels.Channels,
	}
	if resp.Channels == nil {
		resp.Channels = []spoutbreeze.Channel{}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Channels
// ============================================================================

// ChannelsHandler serves the channel pages.
type ChannelsHandler struct {
	Channels *spoutbreeze.ChannelService
}

// HandleList handles GET /home/channels
//
//	@Summary	List channels
//	@Tags		Channels
//	@Produce	json
//	@Success	200	{object}	spoutbreeze.Channels
//	@Failure	502	{object}	httpx.ErrorBody
//	@Router		/home/channels [get]
func (h *ChannelsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.Channels.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /home/channels
//
//	@Summary	Create channel
//	@Tags		Channels
//	@Accept		json
//	@Produce	json
//	@Param		request	body		spoutbreeze.ChannelRequest	true	"Channel"
//	@Success	201		{object}	spoutbreeze.Channel
//	@Failure	422		{object}	httpx.ErrorBody
//	@Router		/home/channels [post]
func (h *ChannelsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req spoutbreeze.ChannelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.Channels.Create(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

// HandleDelete handles DELETE /home/channels/{id}
//
//	@Summary	Delete channel
//	@Tags		Channels
//	@Param		id	path	string	true	"Channel ID"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/home/channels/{id} [delete]
func (h *ChannelsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Channels.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRecordings handles GET /home/channels/{id}/recordings
//
//	@Summary	Channel recordings
//	@Tags		Channels
//	@Produce	json
//	@Param		id	path		string	true	"Channel ID"
//	@Success	200	{object}	spoutbreeze.ChannelRecordings
//	@Router		/home/channels/{id}/recordings [get]
func (h *ChannelsHandler) HandleRecordings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Channels.Recordings(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// ============================================================================
// Events
// ============================================================================

// EventsHandler serves the event pages.
type EventsHandler struct {
	Events        *spoutbreeze.EventService
	PublicBaseURL string
}

// HandleList handles GET /home/events
//
//	@Summary		List events
//	@Description	All events, or only upcoming/past ones, or the events of one channel.
//	@Tags			Events
//	@Produce		json
//	@Param			status		query		string	false	"upcoming or past"
//	@Param			channel_id	query		string	false	"Channel ID"
//	@Success		200			{object}	spoutbreeze.Events
//	@Router			/home/events [get]
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		out *spoutbreeze.Events
		err error
	)
	switch {
	case q.Get("channel_id") != "":
		out, err = h.Events.ListByChannel(ctx, q.Get("channel_id"))
	case q.Get("status") == "upcoming":
		out, err = h.Events.Upcoming(ctx)
	case q.Get("status") == "past":
		out, err = h.Events.Past(ctx)
	default:
		out, err = h.Events.List(ctx)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /home/events
//
//	@Summary	Create event
//	@Tags		Events
//	@Accept		json
//	@Produce	json
//	@Param		request	body		spoutbreeze.EventRequest	true	"Event"
//	@Success	201		{object}	spoutbreeze.Event
//	@Failure	409		{object}	httpx.ErrorBody	"duplicate_title"
//	@Failure	422		{object}	httpx.ErrorBody	"invalid_request"
//	@Router		/home/events [post]
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req spoutbreeze.EventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.Events.Create(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

// HandleUpdate handles PATCH /home/events/{id}
//
//	@Summary		Update event
//	@Description	Only the fields present in the body are changed.
//	@Tags			Events
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string	true	"Event ID"
//	@Success		200	{object}	spoutbreeze.Event
//	@Failure		404	{object}	httpx.ErrorBody	"event_not_found"
//	@Router			/home/events/{id} [patch]
func (h *EventsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd spoutbreeze.EventUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	out, err := h.Events.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /home/events/{id}
//
//	@Summary	Delete event
//	@Tags		Events
//	@Param		id	path	string	true	"Event ID"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorBody	"event_not_found"
//	@Router		/home/events/{id} [delete]
func (h *EventsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Events.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStart handles POST /home/events/{id}/start
//
//	@Summary	Start event
//	@Tags		Events
//	@Produce	json
//	@Param		id	path		string	true	"Event ID"
//	@Success	200	{object}	StartResponse
//	@Router		/home/events/{id}/start [post]
func (h *EventsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	joinURL, err := h.Events.Start(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, StartResponse{JoinURL: joinURL})
}

// HandleJoinURLs handles GET /home/events/{id}/join-urls
//
//	@Summary	Event join links
//	@Tags		Events
//	@Produce	json
//	@Param		id	path		string	true	"Event ID"
//	@Success	200	{object}	JoinLinksResponse
//	@Failure	409	{object}	httpx.ErrorBody	"event_not_started"
//	@Router		/home/events/{id}/join-urls [get]
func (h *EventsHandler) HandleJoinURLs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	urls, err := h.Events.JoinURLs(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, JoinLinksResponse{
		ModeratorJoinURL: urls.ModeratorJoinURL,
		AttendeeJoinURL:  urls.AttendeeJoinURL,
		ShareModerator:   spoutbreeze.ShareableJoinURL(h.PublicBaseURL, id, spoutbreeze.JoinModerator),
		ShareAttendee:    spoutbreeze.ShareableJoinURL(h.PublicBaseURL, id, spoutbreeze.JoinAttendee),
	})
}

// ============================================================================
// Stream endpoints
// ============================================================================

// EndpointsHandler serves the stream endpoint pages.
type EndpointsHandler struct {
	Endpoints *spoutbreeze.StreamEndpointService
}

// HandleList handles GET /home/endpoints
//
//	@Summary	List stream endpoints
//	@Tags		Endpoints
//	@Produce	json
//	@Success	200	{array}	spoutbreeze.StreamEndpoint
//	@Router		/home/endpoints [get]
func (h *EndpointsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.Endpoints.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if out == nil {
		out = []spoutbreeze.StreamEndpoint{}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /home/endpoints
//
//	@Summary	Create stream endpoint
//	@Tags		Endpoints
//	@Accept		json
//	@Produce	json
//	@Param		request	body		spoutbreeze.StreamEndpointRequest	true	"Endpoint"
//	@Success	201		{object}	spoutbreeze.StreamEndpoint
//	@Router		/home/endpoints [post]
func (h *EndpointsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req spoutbreeze.StreamEndpointRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.Endpoints.Create(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

// HandleUpdate handles PUT /home/endpoints/{id}
//
//	@Summary	Update stream endpoint
//	@Tags		Endpoints
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Endpoint ID"
//	@Param		request	body		spoutbreeze.StreamEndpointRequest	true	"Endpoint"
//	@Success	200		{object}	spoutbreeze.StreamEndpoint
//	@Router		/home/endpoints/{id} [put]
func (h *EndpointsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req spoutbreeze.StreamEndpointRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.Endpoints.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /home/endpoints/{id}
//
//	@Summary	Delete stream endpoint
//	@Tags		Endpoints
//	@Param		id	path	string	true	"Endpoint ID"
//	@Success	204
//	@Router		/home/endpoints/{id} [delete]
func (h *EndpointsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Endpoints.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Recordings
// ============================================================================

// RecordingsHandler serves the recordings of one meeting.
type RecordingsHandler struct {
	Recordings *spoutbreeze.RecordingService
}

// ServeHTTP handles GET /home/recordings
//
//	@Summary	Meeting recordings
//	@Tags		Recordings
//	@Produce	json
//	@Param		meeting_id	query		string	true	"Meeting ID"
//	@Success	200			{object}	spoutbreeze.Recordings
//	@Failure	400			{object}	httpx.ErrorBody
//	@Router		/home/recordings [get]
func (h *RecordingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	meetingID := r.URL.Query().Get("meeting_id")
	if meetingID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "meeting_id is required")
		return
	}
	out, err := h.Recordings.List(r.Context(), meetingID)
	if err != nil {
		fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
