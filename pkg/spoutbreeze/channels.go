package spoutbreeze

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ChannelService groups the channel endpoints.
type ChannelService struct {
	c *Client
}

// List returns every channel visible to the caller.
func (s *ChannelService) List(ctx context.Context) (*Channels, error) {
	var out Channels
	if err := s.c.call(ctx, s.c.api, http.MethodGet, "/api/channels/all", nil, &out); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	for i := range out.Channels {
		ch := &out.Channels[i]
		ch.CreatorName = fullName(ch.CreatorFirstName, ch.CreatorLastName)
	}
	return &out, nil
}

// Create creates a channel.
func (s *ChannelService) Create(ctx context.Context, req ChannelRequest) (*Channel, error) {
	if err := s.c.check(req); err != nil {
		return nil, err
	}
	var out Channel
	if err := s.c.call(ctx, s.c.api, http.MethodPost, "/api/channels/", req, &out); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return &out, nil
}

// Delete deletes a channel.
func (s *ChannelService) Delete(ctx context.Context, id string) error {
	if err := s.c.call(ctx, s.c.api, http.MethodDelete, "/api/channels/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

// Recordings lists the recordings of every event in the channel.
func (s *ChannelService) Recordings(ctx context.Context, id string) (*ChannelRecordings, error) {
	var out ChannelRecordings
	path := "/api/channels/" + url.PathEscape(id) + "/recordings"
	if err := s.c.call(ctx, s.c.api, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list channel recordings: %w", err)
	}
	return &out, nil
}
