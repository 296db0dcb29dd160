package http

import (
	"time"

	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

// LandingResponse is the anonymous landing page.
type LandingResponse struct {
	App           string `json:"app"`
	Authenticated bool   `json:"authenticated"`
	LoginURL      string `json:"login_url"`
}

// SessionResponse describes the credentials held by the front-end. Claims are
// read from the access token without verification.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	HasRefresh    bool       `json:"has_refresh"`
	Subject       string     `json:"subject,omitempty"`
	Username      string     `json:"username,omitempty"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Roles         []string   `json:"roles,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// DashboardResponse is the /home overview.
type DashboardResponse struct {
	Upcoming []spoutbreeze.Event   `json:"upcoming"`
	Past     []spoutbreeze.Event   `json:"past"`
	Channels []spoutbreeze.Channel `json:"channels"`
}

// JoinLinksResponse carries the meeting links of a started event and the
// public links that can be shared with people outside the platform.
type JoinLinksResponse struct {
	ModeratorJoinURL string `json:"moderator_join_url"`
	AttendeeJoinURL  string `json:"attendee_join_url"`
	ShareModerator   string `json:"share_moderator_url"`
	ShareAttendee    string `json:"share_attendee_url"`
}

// StartResponse carries the link returned when a meeting is started.
type StartResponse struct {
	JoinURL string `json:"join_url"`
}

// HealthChecks lists the state of each dependency.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
