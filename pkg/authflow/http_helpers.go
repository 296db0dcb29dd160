package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/spoutbreeze/pkg/idx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
)

// maxAuthBody bounds how much of an auth endpoint response is read.
const maxAuthBody = 1 << 20

// setRequestID forwards the inbound request id, or mints one.
func setRequestID(req *http.Request) {
	if req.Header.Get(slogx.RequestIDHeader) != "" {
		return
	}
	id := slogx.RequestID(req.Context())
	if id == "" {
		id = idx.New().String()
	}
	req.Header.Set(slogx.RequestIDHeader, id)
}

// postJSON posts payload (nil for an empty body) and returns the status and
// the fully read response body.
func postJSON(ctx context.Context, hc *http.Client, url string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setRequestID(req)

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAuthBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }

// decodeOptional unmarshals data into v, treating an empty body as success.
func decodeOptional(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
