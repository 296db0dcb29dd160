package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

// Palette is the small stylesheet used for status lines and chips.
type Palette struct {
	ok   lipgloss.Style
	warn lipgloss.Style
	err  lipgloss.Style
	dim  lipgloss.Style
}

var styles = NewPalette("#04B575", "#FFA500", "#FF0000", "#626262")

func NewPalette(ok, warn, errColor, dim string) *Palette {
	return &Palette{
		ok:   NewBold(ok),
		warn: NewStyle(warn),
		err:  NewBold(errColor),
		dim:  NewStyle(dim).Italic(true),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

// Chip renders label on the colour picked for key, so the same channel or
// role always shows in the same colour.
func Chip(label, key string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(spoutbreeze.ChipColor(key))).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1).
		Render(label)
}

// statusChip colours an event status.
func statusChip(status string) string {
	switch status {
	case spoutbreeze.StatusLive:
		return styles.ok.Render(status)
	case spoutbreeze.StatusScheduled:
		return styles.warn.Render(status)
	case spoutbreeze.StatusCancelled:
		return styles.err.Render(status)
	default:
		return styles.dim.Render(status)
	}
}

func newTable(out io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatUpper
	t.AppendHeader(table.Row(header))
	return t
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func renderChannels(out io.Writer, chans []spoutbreeze.Channel) {
	t := newTable(out, "ID", "Name", "Creator", "Created")
	for _, c := range chans {
		t.AppendRow(table.Row{c.ID, Chip(c.Name, c.Name), c.CreatorName, spoutbreeze.FormatDate(c.CreatedAt)})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(chans)})
	t.Render()
}

func renderEvents(out io.Writer, events []spoutbreeze.Event) {
	t := newTable(out, "ID", "Title", "Date", "Time", "Status", "Organizer")
	for _, ev := range events {
		t.AppendRow(table.Row{
			ev.ID,
			ev.Title,
			spoutbreeze.FormatDate(ev.StartDate),
			spoutbreeze.FormatTime(ev.StartTime),
			statusChip(ev.Status),
			ev.CreatorName,
		})
	}
	t.Render()
}

func renderEndpoints(out io.Writer, endpoints []spoutbreeze.StreamEndpoint) {
	t := newTable(out, "ID", "Title", "RTMP URL", "Owner")
	for _, e := range endpoints {
		t.AppendRow(table.Row{e.ID, e.Title, e.RTMPURL, e.UserName})
	}
	t.Render()
}

func renderRecordings(out io.Writer, recs []spoutbreeze.Recording) {
	t := newTable(out, "Record ID", "Name", "State", "Participants", "Playback")
	for _, rec := range recs {
		t.AppendRow(table.Row{rec.RecordID, rec.Name, rec.State, rec.Participants, rec.Playback.Format.URL})
	}
	t.Render()
}

func renderUsers(out io.Writer, users []spoutbreeze.User) {
	t := newTable(out, "ID", "Username", "Name", "Email", "Role")
	for _, u := range users {
		role := u.PrimaryRole()
		t.AppendRow(table.Row{u.ID, u.Username, u.FullName(), u.Email, Chip(role, role)})
	}
	t.Render()
}

// renderFields prints label/value pairs as a two column table.
func renderFields(out io.Writer, pairs ...[2]string) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	for _, p := range pairs {
		t.AppendRow(table.Row{styles.dim.Render(p[0]), p[1]})
	}
	t.Render()
}

func roleChips(roles []string) string {
	chips := make([]string, 0, len(roles))
	for _, r := range roles {
		chips = append(chips, Chip(r, r))
	}
	return strings.Join(chips, " ")
}
