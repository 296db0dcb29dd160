package spoutbreeze

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/sjson"
)

// EventService groups the event endpoints.
type EventService struct {
	c *Client
}

// ============================================================================
// Listing
// ============================================================================

// List returns every event. A 404 means there are none.
func (s *EventService) List(ctx context.Context) (*Events, error) {
	return s.list(ctx, "/api/events/all")
}

// ListByChannel returns the events of one channel.
func (s *EventService) ListByChannel(ctx context.Context, channelID string) (*Events, error) {
	return s.list(ctx, "/api/events/channel/"+url.PathEscape(channelID))
}

// Upcoming returns the events that have not happened yet.
func (s *EventService) Upcoming(ctx context.Context) (*Events, error) {
	return s.list(ctx, "/api/events/upcoming")
}

// Past returns the events that have already happened.
func (s *EventService) Past(ctx context.Context) (*Events, error) {
	return s.list(ctx, "/api/events/past")
}

func (s *EventService) list(ctx context.Context, path string) (*Events, error) {
	var out Events
	err := s.c.call(ctx, s.c.api, http.MethodGet, path, nil, &out)
	if apiErr, ok := asAPIError(err); ok {
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return &Events{Events: []Event{}}, nil
		case http.StatusInternalServerError:
			return nil, classify(ErrServer, apiErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	if out.Events == nil {
		out.Events = []Event{}
	}
	for i := range out.Events {
		ev := &out.Events[i]
		ev.CreatorName = fullName(ev.CreatorFirstName, ev.CreatorLastName)
	}
	return &out, nil
}

// ============================================================================
// Mutations
// ============================================================================

// Create schedules a new event.
func (s *EventService) Create(ctx context.Context, req EventRequest) (*Event, error) {
	if err := s.c.check(req); err != nil {
		return nil, err
	}

	var out Event
	err := s.c.call(ctx, s.c.api, http.MethodPost, "/api/events/", req, &out)
	if apiErr, ok := asAPIError(err); ok {
		switch apiErr.StatusCode {
		case http.StatusBadRequest:
			if strings.Contains(apiErr.Detail, "already exists") {
				return nil, classify(ErrDuplicateTitle, apiErr)
			}
			return nil, classify(ErrValidation, apiErr)
		case http.StatusUnprocessableEntity:
			return nil, classify(ErrValidation, apiErr)
		case http.StatusInternalServerError:
			if isTitleConflict(apiErr.Detail) {
				return nil, classify(ErrDuplicateTitle, apiErr)
			}
			return nil, classify(ErrServer, apiErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &out, nil
}

// isTitleConflict reports whether a 500 detail is the database rejecting a
// duplicate event title.
func isTitleConflict(detail string) bool {
	return strings.Contains(detail, "duplicate key value violates unique constraint") &&
		strings.Contains(detail, "events_title_key")
}

// Update changes the set fields of an event.
func (s *EventService) Update(ctx context.Context, id string, upd EventUpdate) (*Event, error) {
	body, err := upd.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode event update: %w", err)
	}

	var out Event
	err = s.c.call(ctx, s.c.api, http.MethodPut, "/api/events/"+url.PathEscape(id), body, &out)
	if err := eventError(err, ErrValidation); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return &out, nil
}

// Delete deletes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	err := s.c.call(ctx, s.c.api, http.MethodDelete, "/api/events/"+url.PathEscape(id), nil, nil)
	if err := eventError(err, nil); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// eventError maps the status codes shared by the single-event endpoints.
// A 400 is classified as badRequest when it is non-nil.
func eventError(err, badRequest error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return err
	}
	switch {
	case apiErr.StatusCode == http.StatusNotFound:
		return classify(ErrEventNotFound, apiErr)
	case apiErr.StatusCode == http.StatusInternalServerError:
		return classify(ErrServer, apiErr)
	case badRequest != nil && apiErr.StatusCode == http.StatusBadRequest:
		return classify(badRequest, apiErr)
	}
	return err
}

// ============================================================================
// Meetings
// ============================================================================

// Start creates the meeting for an event and returns the caller's join link.
func (s *EventService) Start(ctx context.Context, id string) (string, error) {
	var out struct {
		JoinURL string `json:"join_url"`
	}
	path := "/api/events/" + url.PathEscape(id) + "/start"
	if err := s.c.call(ctx, s.c.api, http.MethodPost, path, nil, &out); err != nil {
		return "", fmt.Errorf("start event: %w", err)
	}
	return out.JoinURL, nil
}

// JoinURLs returns both meeting links of a started event.
func (s *EventService) JoinURLs(ctx context.Context, id string) (*JoinURLs, error) {
	var out JoinURLs
	path := "/api/events/" + url.PathEscape(id) + "/join-url"
	if err := joinError(s.c.call(ctx, s.c.api, http.MethodPost, path, nil, &out)); err != nil {
		return nil, fmt.Errorf("get join urls: %w", err)
	}
	return &out, nil
}

// PublicJoinURL asks for a named join link without credentials and returns
// the link for role. An empty role means attendee.
func (s *EventService) PublicJoinURL(ctx context.Context, id, name, role string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: full name is required", ErrValidation)
	}
	payload := struct {
		FullName string `json:"full_name"`
	}{FullName: name}

	var out JoinURLs
	path := "/api/events/" + url.PathEscape(id) + "/join-url"
	if err := joinError(s.c.call(ctx, s.c.public, http.MethodPost, path, payload, &out)); err != nil {
		return "", fmt.Errorf("get join url: %w", err)
	}

	if role == JoinModerator {
		return out.ModeratorJoinURL, nil
	}
	return out.AttendeeJoinURL, nil
}

func joinError(err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return classify(ErrEventNotFound, apiErr)
	case http.StatusBadRequest:
		return classify(ErrEventNotStarted, apiErr)
	case http.StatusInternalServerError:
		return classify(ErrServer, apiErr)
	}
	return err
}

// ============================================================================
// Partial updates
// ============================================================================

// MarshalJSON encodes only the set fields.
func (u EventUpdate) MarshalJSON() ([]byte, error) {
	body := []byte(`{}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, v)
		}
	}
	setTime := func(path string, t *time.Time) {
		if t != nil {
			set(path, t.Format(time.RFC3339Nano))
		}
	}

	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Occurs != nil {
		set("occurs", *u.Occurs)
	}
	setTime("start_date", u.StartDate)
	setTime("end_date", u.EndDate)
	setTime("start_time", u.StartTime)
	if u.Timezone != nil {
		set("timezone", *u.Timezone)
	}
	if u.OrganizerIDs != nil {
		set("organizer_ids", u.OrganizerIDs)
	}
	if u.ChannelName != nil {
		set("channel_name", *u.ChannelName)
	}
	return body, err
}

// UnmarshalJSON reads a partial update. Absent fields stay unset.
func (u *EventUpdate) UnmarshalJSON(data []byte) error {
	var wire struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		Occurs       *string    `json:"occurs"`
		StartDate    *time.Time `json:"start_date"`
		EndDate      *time.Time `json:"end_date"`
		StartTime    *time.Time `json:"start_time"`
		Timezone     *string    `json:"timezone"`
		OrganizerIDs []string   `json:"organizer_ids"`
		ChannelName  *string    `json:"channel_name"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*u = EventUpdate(wire)
	return nil
}

// Update returns an update that sets every field of r.
func (r EventRequest) Update() EventUpdate {
	organizers := r.OrganizerIDs
	if organizers == nil {
		organizers = []string{}
	}
	return EventUpdate{
		Title:        &r.Title,
		Description:  &r.Description,
		Occurs:       &r.Occurs,
		StartDate:    &r.StartDate,
		EndDate:      &r.EndDate,
		StartTime:    &r.StartTime,
		Timezone:     &r.Timezone,
		OrganizerIDs: organizers,
		ChannelName:  &r.ChannelName,
	}
}
