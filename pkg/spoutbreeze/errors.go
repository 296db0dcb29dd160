package spoutbreeze

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ============================================================================
// Sentinel Errors
// ============================================================================

var (
	// ErrUnauthorized is matched by any 401 response. The request client has
	// already tried one refresh by the time this surfaces.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is matched by any 403 response.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is matched by any 404 response.
	ErrNotFound = errors.New("not found")

	// ErrServer is matched by any 5xx response.
	ErrServer = errors.New("server error")

	// ErrValidation is matched by 422 responses and by the 400 responses the
	// event endpoints use for rejected input.
	ErrValidation = errors.New("validation error")

	// ErrDuplicateTitle is returned when an event title is already taken.
	ErrDuplicateTitle = errors.New("duplicate event title")

	// ErrEventNotFound is returned by the event endpoints on 404.
	ErrEventNotFound = errors.New("event not found")

	// ErrEventNotStarted is returned when a join link is requested for an
	// event whose meeting has not been created yet.
	ErrEventNotStarted = errors.New("event not started")
)

// ============================================================================
// APIError
// ============================================================================

// APIError is a non-2xx response from the platform API.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Detail is the human readable message extracted from the body, if any.
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: HTTP %d: %s", e.StatusCode, e.Detail)
}

// Is maps status codes onto the generic sentinels so callers can use
// errors.Is without inspecting the status themselves.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	case ErrValidation:
		return e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// maxDetail bounds the raw body kept when the response is not JSON.
const maxDetail = 256

// newAPIError builds an APIError from a response status and body.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Detail: parseDetail(body)}
}

// parseDetail extracts the message from a FastAPI error body. The backend
// answers with either {"detail": "..."} or a validation list of the form
// {"detail": [{"loc": [...], "msg": "...", "type": "..."}]}.
func parseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		s := strings.TrimSpace(string(body))
		if len(s) > maxDetail {
			s = s[:maxDetail]
		}
		return s
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		var msgs []string
		for _, m := range detail.Get("#.msg").Array() {
			if s := m.String(); s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	case detail.Exists():
		return detail.Raw
	}

	if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
		return msg.String()
	}
	return ""
}

// asAPIError returns the APIError inside err, if any.
func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// classify wraps err with sentinel when err is an APIError, keeping both
// reachable through errors.Is and errors.As.
func classify(sentinel error, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}
