package spoutbreeze

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventListings(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events/all", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusOK, `{"events":[{"id":"e1","title":"Kickoff","creator_first_name":"Ada","creator_last_name":"Lovelace","status":"scheduled","meeting_id":null}],"total":1}`)
	})
	mux.HandleFunc("GET /api/events/upcoming", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusNotFound, `{"detail":"No events found"}`)
	})
	mux.HandleFunc("GET /api/events/past", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	})
	mux.HandleFunc("GET /api/events/channel/c1", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusForbidden, `{"detail":"Not your channel"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	all, err := c.Events.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, all.Total)
	require.Equal(t, "Ada Lovelace", all.Events[0].CreatorName)
	require.Nil(t, all.Events[0].MeetingID)

	upcoming, err := c.Events.Upcoming(ctx)
	require.NoError(t, err)
	require.Empty(t, upcoming.Events)
	require.NotNil(t, upcoming.Events)
	require.Zero(t, upcoming.Total)

	_, err = c.Events.Past(ctx)
	require.ErrorIs(t, err, ErrServer)

	_, err = c.Events.ListByChannel(ctx, "c1")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestEventCreateErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "duplicate on 400", status: 400, body: `{"detail":"Event with title 'Kickoff' already exists"}`, want: ErrDuplicateTitle},
		{name: "plain 400", status: 400, body: `{"detail":"End date before start date"}`, want: ErrValidation},
		{name: "422", status: 422, body: `{"detail":[{"msg":"field required"}]}`, want: ErrValidation},
		{name: "unique violation on 500", status: 500, body: `{"detail":"duplicate key value violates unique constraint \"events_title_key\""}`, want: ErrDuplicateTitle},
		{name: "other 500", status: 500, body: `{"detail":"database down"}`, want: ErrServer},
		{name: "forbidden passes through", status: 403, body: `{"detail":"nope"}`, want: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/events/", func(w http.ResponseWriter, r *http.Request) {
				writeRaw(w, tt.status, tt.body)
			})
			c := newTestClient(t, mux)

			_, err := c.Events.Create(context.Background(), validEventRequest())
			require.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestEventCreateValidatesLocally(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/events/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})
	c := newTestClient(t, mux)

	req := validEventRequest()
	req.Title = ""
	_, err := c.Events.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
}

func TestEventUpdateSendsOnlySetFields(t *testing.T) {
	t.Parallel()

	bodies := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/events/e1", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		writeJSON(w, http.StatusOK, Event{ID: "e1", Title: "Renamed"})
	})
	mux.HandleFunc("PUT /api/events/missing", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusNotFound, `{"detail":"Event not found"}`)
	})
	mux.HandleFunc("PUT /api/events/bad", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusBadRequest, `{"detail":"invalid"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	title := "Renamed"
	ev, err := c.Events.Update(ctx, "e1", EventUpdate{Title: &title, OrganizerIDs: []string{"u1", "u2"}})
	require.NoError(t, err)
	require.Equal(t, "Renamed", ev.Title)
	require.JSONEq(t, `{"title":"Renamed","organizer_ids":["u1","u2"]}`, <-bodies)

	_, err = c.Events.Update(ctx, "missing", EventUpdate{Title: &title})
	require.ErrorIs(t, err, ErrEventNotFound)

	_, err = c.Events.Update(ctx, "bad", EventUpdate{Title: &title})
	require.ErrorIs(t, err, ErrValidation)
}

func TestEventUpdateMarshalFull(t *testing.T) {
	t.Parallel()

	req := validEventRequest()
	req.OrganizerIDs = nil
	body, err := json.Marshal(req.Update())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, "Kickoff", got["title"])
	require.Equal(t, "2025-01-02T00:00:00Z", got["start_date"])
	require.Equal(t, "2025-01-02T14:30:00Z", got["start_time"])
	require.Equal(t, []any{}, got["organizer_ids"])
	require.Equal(t, "General", got["channel_name"])
}

func TestEventUpdateUnmarshalKeepsAbsentFieldsUnset(t *testing.T) {
	t.Parallel()

	var upd EventUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Renamed","start_date":"2025-03-04T00:00:00Z"}`), &upd))

	require.NotNil(t, upd.Title)
	require.Equal(t, "Renamed", *upd.Title)
	require.NotNil(t, upd.StartDate)
	require.True(t, upd.StartDate.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))
	require.Nil(t, upd.Description)
	require.Nil(t, upd.OrganizerIDs)

	body, err := json.Marshal(upd)
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"Renamed","start_date":"2025-03-04T00:00:00Z"}`, string(body))
}

func TestEventDelete(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/events/e1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /api/events/gone", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusNotFound, `{"detail":"Event not found"}`)
	})
	mux.HandleFunc("DELETE /api/events/broken", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, c.Events.Delete(ctx, "e1"))
	require.ErrorIs(t, c.Events.Delete(ctx, "gone"), ErrEventNotFound)
	require.ErrorIs(t, c.Events.Delete(ctx, "broken"), ErrServer)
}

func TestEventStartAndJoinURLs(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/events/e1/start", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusOK, `{"join_url":"https://meet/e1?mod"}`)
	})
	mux.HandleFunc("POST /api/events/e1/join-url", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, JoinURLs{AttendeeJoinURL: "https://meet/a", ModeratorJoinURL: "https://meet/m"})
	})
	mux.HandleFunc("POST /api/events/later/join-url", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusBadRequest, `{"detail":"Meeting not created"}`)
	})
	mux.HandleFunc("POST /api/events/nope/join-url", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusNotFound, `{"detail":"Event not found"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	link, err := c.Events.Start(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "https://meet/e1?mod", link)

	urls, err := c.Events.JoinURLs(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "https://meet/m", urls.ModeratorJoinURL)

	_, err = c.Events.JoinURLs(ctx, "later")
	require.ErrorIs(t, err, ErrEventNotStarted)

	_, err = c.Events.JoinURLs(ctx, "nope")
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestPublicJoinURL(t *testing.T) {
	t.Parallel()

	names := make(chan string, 4)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/events/e1/join-url", func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		var body struct {
			FullName string `json:"full_name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		names <- body.FullName
		writeJSON(w, http.StatusOK, JoinURLs{AttendeeJoinURL: "https://meet/a", ModeratorJoinURL: "https://meet/m"})
	})
	mux.HandleFunc("POST /api/events/e2/join-url", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	link, err := c.Events.PublicJoinURL(ctx, "e1", "  Ada Lovelace ", "")
	require.NoError(t, err)
	require.Equal(t, "https://meet/a", link)
	require.Equal(t, "Ada Lovelace", <-names)

	link, err = c.Events.PublicJoinURL(ctx, "e1", "Ada", JoinModerator)
	require.NoError(t, err)
	require.Equal(t, "https://meet/m", link)
	<-names

	_, err = c.Events.PublicJoinURL(ctx, "e1", "   ", "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = c.Events.PublicJoinURL(ctx, "e2", "Ada", "")
	require.ErrorIs(t, err, ErrServer)
}

func validEventRequest() EventRequest {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	return EventRequest{
		Title:        "Kickoff",
		Description:  "Quarterly kickoff",
		Occurs:       "once",
		StartDate:    day,
		EndDate:      day,
		StartTime:    day.Add(14*time.Hour + 30*time.Minute),
		Timezone:     "UTC",
		OrganizerIDs: []string{"u1"},
		ChannelName:  "General",
	}
}
