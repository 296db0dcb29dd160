package spoutbreeze

import (
	"context"
	"fmt"
	"net/http"
)

// RecordingService looks up meeting recordings.
type RecordingService struct {
	c *Client
}

// List returns the recordings of a meeting. An empty meetingID asks for
// every recording the caller can see.
func (s *RecordingService) List(ctx context.Context, meetingID string) (*Recordings, error) {
	payload := struct {
		MeetingID string `json:"meeting_id"`
	}{MeetingID: meetingID}

	var out Recordings
	if err := s.c.call(ctx, s.c.api, http.MethodPost, "/api/bbb/get-recordings", payload, &out); err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	return &out, nil
}
