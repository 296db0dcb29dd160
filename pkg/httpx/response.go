package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code and disables caching.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the JSON shape of every error the front-end writes.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError writes an ErrorBody with the given status.
func WriteError(w http.ResponseWriter, code int, errCode, desc string) {
	WriteJSON(w, code, ErrorBody{Error: errCode, Description: desc})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// RedirectReasonHeader explains why the front-end forced a redirect.
const RedirectReasonHeader = "X-Redirect-Reason"

// Redirect issues a 302 to location, tagging it with reason when non-empty.
func Redirect(w http.ResponseWriter, r *http.Request, location, reason string) {
	NoCache(w)
	if reason != "" {
		w.Header().Set(RedirectReasonHeader, reason)
	}
	http.Redirect(w, r, location, http.StatusFound)
}
