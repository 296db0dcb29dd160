package spoutbreeze

import "time"

// ============================================================================
// Channels
// ============================================================================

// Channel is a named container for events.
type Channel struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	CreatorID        string `json:"creator_id"`
	CreatorFirstName string `json:"creator_first_name"`
	CreatorLastName  string `json:"creator_last_name"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`

	// CreatorName is filled in by the client from the first and last name.
	CreatorName string `json:"creator_name,omitempty"`
}

// Channels is the response of the channel listing.
type Channels struct {
	Channels []Channel `json:"channels"`
	Total    int       `json:"total"`
}

// ChannelRequest creates a channel.
type ChannelRequest struct {
	Name string `json:"name" validate:"required"`
}

// ChannelRecordings lists the recordings of every event in a channel.
type ChannelRecordings struct {
	Recordings      []Recording `json:"recordings"`
	TotalRecordings int         `json:"total_recordings"`
}

// ============================================================================
// Events
// ============================================================================

// Event status values.
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusEnded     = "ended"
	StatusCancelled = "cancelled"
)

// Organizer is a user attached to an event as organiser.
type Organizer struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Event is a scheduled webinar.
type Event struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Occurs           string      `json:"occurs"`
	StartDate        string      `json:"start_date"`
	EndDate          string      `json:"end_date"`
	StartTime        string      `json:"start_time"`
	CreatorID        string      `json:"creator_id"`
	CreatorFirstName string      `json:"creator_first_name"`
	CreatorLastName  string      `json:"creator_last_name"`
	Organizers       []Organizer `json:"organizers"`
	ChannelID        string      `json:"channel_id"`
	MeetingID        *string     `json:"meeting_id"`
	ModeratorPW      *string     `json:"moderator_pw"`
	AttendeePW       *string     `json:"attendee_pw"`
	MeetingCreated   bool        `json:"meeting_created"`
	Timezone         string      `json:"timezone"`
	CreatedAt        string      `json:"created_at"`
	UpdatedAt        string      `json:"updated_at"`
	Status           string      `json:"status"`
	ActualStartTime  *string     `json:"actual_start_time"`
	ActualEndTime    *string     `json:"actual_end_time"`

	// CreatorName is filled in by the client from the first and last name.
	CreatorName string `json:"creator_name,omitempty"`
}

// Events is the response of every event listing.
type Events struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
}

// EventRequest creates an event, or carries the full set of fields for an
// update.
type EventRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	Occurs       string    `json:"occurs" validate:"required"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	Timezone     string    `json:"timezone" validate:"required"`
	OrganizerIDs []string  `json:"organizer_ids"`
	ChannelName  string    `json:"channel_name" validate:"required"`
}

// EventUpdate is a partial event update. Only the set fields are sent.
type EventUpdate struct {
	Title        *string
	Description  *string
	Occurs       *string
	StartDate    *time.Time
	EndDate      *time.Time
	StartTime    *time.Time
	Timezone     *string
	OrganizerIDs []string
	ChannelName  *string
}

// JoinURLs holds both meeting links of a started event.
type JoinURLs struct {
	AttendeeJoinURL  string `json:"attendee_join_url"`
	ModeratorJoinURL string `json:"moderator_join_url"`
}

// Join roles.
const (
	JoinAttendee  = "attendee"
	JoinModerator = "moderator"
)

// ============================================================================
// Stream endpoints
// ============================================================================

// StreamEndpoint is an RTMP target an event can be streamed to.
type StreamEndpoint struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	RTMPURL       string `json:"rtmp_url"`
	StreamKey     string `json:"stream_key"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	UserFirstName string `json:"user_first_name"`
	UserLastName  string `json:"user_last_name"`

	// UserName is filled in by the client from the first and last name.
	UserName string `json:"user_name,omitempty"`
}

// StreamEndpointRequest creates or replaces a stream endpoint.
type StreamEndpointRequest struct {
	Title     string `json:"title" validate:"required"`
	RTMPURL   string `json:"rtmp_url" validate:"required,url"`
	StreamKey string `json:"stream_key" validate:"required"`
}

// ============================================================================
// Users
// ============================================================================

// User is a platform account.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Roles     string `json:"roles,omitempty"`
	IsActive  bool   `json:"is_active,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ProfileUpdate changes the caller's own profile. Nil fields are omitted.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// RoleUpdate changes a user's role.
type RoleUpdate struct {
	Role string `json:"role" validate:"required,oneof=admin moderator user"`
}

// ============================================================================
// Recordings
// ============================================================================

// RecordingMetadata is the meeting metadata attached to a recording.
type RecordingMetadata struct {
	IsBreakout  string `json:"isBreakout"`
	MeetingID   string `json:"meetingId"`
	MeetingName string `json:"meetingName"`
}

// RecordingBreakout describes the breakout room a recording belongs to.
type RecordingBreakout struct {
	ParentID string `json:"parentId"`
	Sequence string `json:"sequence"`
	FreeJoin string `json:"freeJoin"`
}

// PlaybackFormat is one way of playing a recording back.
type PlaybackFormat struct {
	Type           string `json:"type"`
	URL            string `json:"url"`
	ProcessingTime string `json:"processingTime"`
	Length         string `json:"length"`
	Size           string `json:"size"`
}

// Playback wraps the playback format.
type Playback struct {
	Format PlaybackFormat `json:"format"`
}

// Recording is a meeting recording as reported by the conferencing server.
// Numeric fields arrive as strings and are kept that way.
type Recording struct {
	RecordID          string            `json:"recordID"`
	MeetingID         string            `json:"meetingID"`
	InternalMeetingID string            `json:"internalMeetingID"`
	Name              string            `json:"name"`
	IsBreakout        string            `json:"isBreakout"`
	Published         string            `json:"published"`
	State             string            `json:"state"`
	StartTime         string            `json:"startTime"`
	EndTime           string            `json:"endTime"`
	Participants      string            `json:"participants"`
	RawSize           string            `json:"rawSize"`
	Metadata          RecordingMetadata `json:"metadata"`
	Breakout          RecordingBreakout `json:"breakout"`
	Size              string            `json:"size"`
	Playback          Playback          `json:"playback"`
}

// Recordings is the response of the recordings lookup.
type Recordings struct {
	ReturnCode string      `json:"returncode"`
	Recordings []Recording `json:"recordings"`
}
