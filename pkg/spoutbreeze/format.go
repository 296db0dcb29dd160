package spoutbreeze

import (
	"fmt"
	"math"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

// timestampLayouts are the forms the API uses for dates and times.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an API date or datetime. Values without a zone are
// read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// FormatDate renders an API date as "Wed Jan 2, 2025". Unparsable input is
// returned unchanged.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return s
	}
	return t.Format("Mon Jan 2, 2006")
}

// FormatTime renders an API time as "GMT + 4:00 pm". Input that already
// mentions GMT, or that cannot be read as a time, is returned unchanged.
func FormatTime(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(strings.ToLower(s), "gmt") {
		return s
	}

	hours, minutes, ok := clockOf(s)
	if !ok {
		return s
	}

	period := "am"
	if hours >= 12 {
		period = "pm"
	}
	h12 := hours % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("GMT + %d:%02d %s", h12, minutes, period)
}

// clockOf extracts the hour and minute from "HH:MM", "HH:MM:SS" or a full
// timestamp.
func clockOf(s string) (int, int, bool) {
	if t, err := ParseTimestamp(s); err == nil && strings.ContainsAny(s, "T ") {
		return t.Hour(), t.Minute(), true
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hours < 0 || hours > 23 {
		return 0, 0, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, 0, false
	}
	return hours, minutes, true
}

// ShareableJoinURL builds the public join page link for an event. An empty
// role means attendee.
func ShareableJoinURL(baseURL, eventID, role string) string {
	if role == "" {
		role = JoinAttendee
	}
	q := url.Values{"role": {role}}
	return strings.TrimSuffix(baseURL, "/") + "/join/" + url.PathEscape(eventID) + "?" + q.Encode()
}

// EventToRequest copies an event into a request carrying every field, ready
// for editing and sending back through Events.Update.
func EventToRequest(ev Event, channelName string) (EventRequest, error) {
	startDate, err := ParseTimestamp(ev.StartDate)
	if err != nil {
		return EventRequest{}, fmt.Errorf("start date: %w", err)
	}
	endDate, err := ParseTimestamp(ev.EndDate)
	if err != nil {
		return EventRequest{}, fmt.Errorf("end date: %w", err)
	}
	startTime, err := eventStartTime(ev.StartTime, startDate)
	if err != nil {
		return EventRequest{}, fmt.Errorf("start time: %w", err)
	}

	organizers := make([]string, 0, len(ev.Organizers))
	for _, o := range ev.Organizers {
		organizers = append(organizers, o.ID)
	}

	return EventRequest{
		Title:        ev.Title,
		Description:  ev.Description,
		Occurs:       ev.Occurs,
		StartDate:    startDate,
		EndDate:      endDate,
		StartTime:    startTime,
		Timezone:     ev.Timezone,
		OrganizerIDs: organizers,
		ChannelName:  channelName,
	}, nil
}

// eventStartTime accepts a full timestamp or a bare clock time, which is
// placed on day.
func eventStartTime(s string, day time.Time) (time.Time, error) {
	if t, err := ParseTimestamp(s); err == nil {
		return t, nil
	}
	hours, minutes, ok := clockOf(s)
	if !ok {
		return time.Time{}, fmt.Errorf("unrecognised time %q", s)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, hours, minutes, 0, 0, day.Location()), nil
}

// ============================================================================
// Chips
// ============================================================================

// ChipPalette is the set of colours chips are drawn from.
var ChipPalette = []string{
	"#27AAFF", // light blue
	"#FF092A", // red
	"#44D500", // green
	"#9747FF", // purple
	"#2E27FF", // indigo
	"#FF0099", // pink
	"#FF8800", // deep orange
	"#FFC919", // yellow
}

// ChipColor picks a palette colour for key, the same one the web UI picks.
// Each UTF-16 unit is weighted by 31^i mod 127 with 31^i as a float64, so
// weights are rounded from the eleventh character on. A key long enough to
// overflow the weight gets the first colour.
func ChipColor(key string) string {
	var hash float64
	pow, base := big.NewInt(1), big.NewInt(31)
	for _, unit := range utf16.Encode([]rune(key)) {
		w, _ := new(big.Float).SetInt(pow).Float64()
		hash += float64(float64(unit) * math.Mod(w, 127))
		pow.Mul(pow, base)
	}

	i := math.Mod(math.Abs(hash), float64(len(ChipPalette)))
	if math.IsNaN(i) {
		return ChipPalette[0]
	}
	return ChipPalette[int(i)]
}
