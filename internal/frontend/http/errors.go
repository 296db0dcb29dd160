package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

// apiFailure maps an SDK error to a status and error code.
type apiFailure struct {
	target error
	status int
	code   string
}

var apiFailures = []apiFailure{
	{spoutbreeze.ErrEventNotFound, http.StatusNotFound, "event_not_found"},
	{spoutbreeze.ErrEventNotStarted, http.StatusConflict, "event_not_started"},
	{spoutbreeze.ErrDuplicateTitle, http.StatusConflict, "duplicate_title"},
	{spoutbreeze.ErrValidation, http.StatusUnprocessableEntity, "invalid_request"},
	{spoutbreeze.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{spoutbreeze.ErrForbidden, http.StatusForbidden, "forbidden"},
	{spoutbreeze.ErrNotFound, http.StatusNotFound, "not_found"},
	{spoutbreeze.ErrServer, http.StatusBadGateway, "upstream_error"},
}

// fail answers a request whose backend call failed. A login redirect
// requested during the call wins over the error.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if loginURL, ok := PendingRedirect(r.Context()); ok {
		httpx.Redirect(w, r, loginURL, ReasonSessionExpired)
		return
	}
	writeAPIError(w, r, err)
}

func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	for _, f := range apiFailures {
		if errors.Is(err, f.target) {
			log.Warn("backend call failed", "status", f.status, "err", err)
			httpx.WriteError(w, f.status, f.code, describe(err))
			return
		}
	}

	log.Error("backend call failed", "err", err)
	httpx.WriteError(w, http.StatusBadGateway, "upstream_error", "The backend could not be reached.")
}

// describe returns the backend's detail message when there is one.
func describe(err error) string {
	var apiErr *spoutbreeze.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

// decodeBody decodes a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return false
	}
	return true
}
