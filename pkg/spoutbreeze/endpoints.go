package spoutbreeze

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// StreamEndpointService groups the RTMP stream endpoint calls.
type StreamEndpointService struct {
	c *Client
}

// List returns the caller's stream endpoints.
func (s *StreamEndpointService) List(ctx context.Context) ([]StreamEndpoint, error) {
	var out []StreamEndpoint
	if err := s.c.call(ctx, s.c.api, http.MethodGet, "/api/stream-endpoint/", nil, &out); err != nil {
		return nil, fmt.Errorf("list stream endpoints: %w", err)
	}
	for i := range out {
		out[i].UserName = fullName(out[i].UserFirstName, out[i].UserLastName)
	}
	return out, nil
}

// Create creates a stream endpoint.
func (s *StreamEndpointService) Create(ctx context.Context, req StreamEndpointRequest) (*StreamEndpoint, error) {
	if err := s.c.check(req); err != nil {
		return nil, err
	}
	var out StreamEndpoint
	if err := s.c.call(ctx, s.c.api, http.MethodPost, "/api/stream-endpoint/create", req, &out); err != nil {
		return nil, fmt.Errorf("create stream endpoint: %w", err)
	}
	return &out, nil
}

// Update replaces a stream endpoint.
func (s *StreamEndpointService) Update(ctx context.Context, id string, req StreamEndpointRequest) (*StreamEndpoint, error) {
	if err := s.c.check(req); err != nil {
		return nil, err
	}
	var out StreamEndpoint
	if err := s.c.call(ctx, s.c.api, http.MethodPut, "/api/stream-endpoint/"+url.PathEscape(id), req, &out); err != nil {
		return nil, fmt.Errorf("update stream endpoint: %w", err)
	}
	return &out, nil
}

// Delete deletes a stream endpoint.
func (s *StreamEndpointService) Delete(ctx context.Context, id string) error {
	if err := s.c.call(ctx, s.c.api, http.MethodDelete, "/api/stream-endpoint/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete stream endpoint: %w", err)
	}
	return nil
}
