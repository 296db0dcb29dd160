package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/app"
	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

// Layouts accepted by the event date and time flags.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var errTimeWithoutDate = errors.New("--time needs --date")

// ============================================================================
// Channels
// ============================================================================

func channelsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "channels",
		Aliases: []string{"ch"},
		Usage:   "List and manage channels",
		Action:  r.withSession(r.ChannelsList),
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your channels",
				Action: r.withSession(r.ChannelsList),
			},
			{
				Name:      "create",
				Usage:     "Create a channel",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.withSession(r.ChannelsCreate),
			},
			{
				Name:      "delete",
				Usage:     "Delete a channel",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.withSession(r.ChannelsDelete),
			},
			{
				Name:      "recordings",
				Usage:     "List the recordings of every event in a channel",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.withSession(r.ChannelsRecordings),
			},
		},
	}
}

func (r *Runner) ChannelsList(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	chans, err := s.API.Channels.List(ctx)
	if err != nil {
		return err
	}
	return r.emit(cmd, chans, func(w io.Writer) { renderChannels(w, chans.Channels) })
}

func (r *Runner) ChannelsCreate(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	ch, err := s.API.Channels.Create(ctx, spoutbreeze.ChannelRequest{Name: cmd.StringArg("name")})
	if err != nil {
		return err
	}
	return r.emit(cmd, ch, func(w io.Writer) { renderChannels(w, []spoutbreeze.Channel{*ch}) })
}

func (r *Runner) ChannelsDelete(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	id := cmd.StringArg("id")
	if err := s.API.Channels.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("Deleted channel %s\n", id)
}

func (r *Runner) ChannelsRecordings(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	recs, err := s.API.Channels.Recordings(ctx, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	return r.emit(cmd, recs, func(w io.Writer) { renderRecordings(w, recs.Recordings) })
}

// ============================================================================
// Events
// ============================================================================

func eventFieldFlags(creating bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Event title", Required: creating},
		&cli.StringFlag{Name: "description", Usage: "Event description"},
		&cli.StringFlag{Name: "channel", Usage: "Channel name; created when missing", Required: creating},
		&cli.StringFlag{Name: "occurs", Usage: "Recurrence", Value: "once"},
		&cli.StringFlag{Name: "date", Usage: "Start date (YYYY-MM-DD)", Required: creating},
		&cli.StringFlag{Name: "end-date", Usage: "End date (YYYY-MM-DD), defaults to the start date"},
		&cli.StringFlag{Name: "time", Usage: "Start time (HH:MM)", Required: creating},
		&cli.StringFlag{Name: "timezone", Usage: "IANA time zone", Value: "UTC"},
		&cli.StringSliceFlag{Name: "organizer", Usage: "Organizer user id, repeatable"},
	}
}

func eventsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "events",
		Usage:  "List and manage events",
		Action: r.withSession(r.EventsList),
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List events",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "channel", Usage: "Only events of this channel id"},
					&cli.BoolFlag{Name: "upcoming", Usage: "Only upcoming events"},
					&cli.BoolFlag{Name: "past", Usage: "Only past events"},
				},
				Action: r.withSession(r.EventsList),
			},
			{
				Name:   "create",
				Usage:  "Schedule an event",
				Flags:  eventFieldFlags(true),
				Action: r.withSession(r.EventsCreate),
			},
			{
				Name:      "update",
				Usage:     "Change the given fields of an event",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     eventFieldFlags(false),
				Action:    r.withSession(r.EventsUpdate),
			},
			{
				Name:      "delete",
				Usage:     "Delete an event",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.withSession(r.EventsDelete),
			},
			{
				Name:      "start",
				Usage:     "Start the meeting of an event",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "open", Usage: "Open the join link in the browser"},
				},
				Action: r.withSession(r.EventsStart),
			},
			{
				Name:      "join-urls",
				Usage:     "Show the meeting and shareable links of a started event",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.withSession(r.EventsJoinURLs),
			},
		},
	}
}

func (r *Runner) EventsList(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	var (
		events *spoutbreeze.Events
		err    error
	)
	switch {
	case cmd.String("channel") != "":
		events, err = s.API.Events.ListByChannel(ctx, cmd.String("channel"))
	case cmd.Bool("upcoming"):
		events, err = s.API.Events.Upcoming(ctx)
	case cmd.Bool("past"):
		events, err = s.API.Events.Past(ctx)
	default:
		events, err = s.API.Events.List(ctx)
	}
	if err != nil {
		return err
	}
	return r.emit(cmd, events, func(w io.Writer) { renderEvents(w, events.Events) })
}

func (r *Runner) EventsCreate(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	loc, err := time.LoadLocation(cmd.String("timezone"))
	if err != nil {
		return fmt.Errorf("%w: timezone: %v", spoutbreeze.ErrValidation, err)
	}
	start, err := parseDay(cmd.String("date"), loc)
	if err != nil {
		return err
	}
	end := start
	if cmd.IsSet("end-date") {
		if end, err = parseDay(cmd.String("end-date"), loc); err != nil {
			return err
		}
	}
	at, err := parseClock(cmd.String("time"), start)
	if err != nil {
		return err
	}

	ev, err := s.API.Events.Create(ctx, spoutbreeze.EventRequest{
		Title:        trimmed(cmd, "title"),
		Description:  cmd.String("description"),
		Occurs:       cmd.String("occurs"),
		StartDate:    start,
		EndDate:      end,
		StartTime:    at,
		Timezone:     loc.String(),
		OrganizerIDs: cmd.StringSlice("organizer"),
		ChannelName:  trimmed(cmd, "channel"),
	})
	if err != nil {
		return err
	}
	return r.emit(cmd, ev, func(w io.Writer) { renderEvents(w, []spoutbreeze.Event{*ev}) })
}

// EventsUpdate sends only the flags given on the command line.
func (r *Runner) EventsUpdate(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	upd, err := eventUpdateFromFlags(cmd)
	if err != nil {
		return err
	}
	ev, err := s.API.Events.Update(ctx, cmd.StringArg("id"), upd)
	if err != nil {
		return err
	}
	return r.emit(cmd, ev, func(w io.Writer) { renderEvents(w, []spoutbreeze.Event{*ev}) })
}

func eventUpdateFromFlags(cmd *cli.Command) (spoutbreeze.EventUpdate, error) {
	var upd spoutbreeze.EventUpdate
	str := func(name string) *string {
		if !cmd.IsSet(name) {
			return nil
		}
		v := cmd.String(name)
		return &v
	}
	upd.Title = str("title")
	upd.Description = str("description")
	upd.Occurs = str("occurs")
	upd.ChannelName = str("channel")
	if cmd.IsSet("organizer") {
		upd.OrganizerIDs = cmd.StringSlice("organizer")
	}

	loc := time.UTC
	if cmd.IsSet("timezone") {
		l, err := time.LoadLocation(cmd.String("timezone"))
		if err != nil {
			return upd, fmt.Errorf("%w: timezone: %v", spoutbreeze.ErrValidation, err)
		}
		loc = l
		tz := l.String()
		upd.Timezone = &tz
	}

	if cmd.IsSet("date") {
		day, err := parseDay(cmd.String("date"), loc)
		if err != nil {
			return upd, err
		}
		upd.StartDate = &day
		if cmd.IsSet("time") {
			at, err := parseClock(cmd.String("time"), day)
			if err != nil {
				return upd, err
			}
			upd.StartTime = &at
		}
	} else if cmd.IsSet("time") {
		return upd, errTimeWithoutDate
	}

	if cmd.IsSet("end-date") {
		day, err := parseDay(cmd.String("end-date"), loc)
		if err != nil {
			return upd, err
		}
		upd.EndDate = &day
	}
	return upd, nil
}

func (r *Runner) EventsDelete(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	id := cmd.StringArg("id")
	if err := s.API.Events.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("Deleted event %s\n", id)
}

func (r *Runner) EventsStart(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	joinURL, err := s.API.Events.Start(ctx, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if cmd.Bool("open") && joinURL != "" {
		if err := r.browse(joinURL); err != nil {
			_ = r.notice(styles.warn, "Could not open a browser: %v\n", err)
		}
	}
	return r.writePlain("%s\n", joinURL)
}

// joinLinks is the join-urls output: the meeting links plus the public join
// page links to share.
type joinLinks struct {
	spoutbreeze.JoinURLs
	ShareModeratorURL string `json:"share_moderator_url"`
	ShareAttendeeURL  string `json:"share_attendee_url"`
}

func (r *Runner) EventsJoinURLs(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	id := cmd.StringArg("id")
	urls, err := s.API.Events.JoinURLs(ctx, id)
	if err != nil {
		return err
	}

	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	out := joinLinks{
		JoinURLs:          *urls,
		ShareModeratorURL: spoutbreeze.ShareableJoinURL(cfg.PublicBaseURL, id, spoutbreeze.JoinModerator),
		ShareAttendeeURL:  spoutbreeze.ShareableJoinURL(cfg.PublicBaseURL, id, spoutbreeze.JoinAttendee),
	}
	return r.emit(cmd, out, func(w io.Writer) {
		renderFields(w,
			[2]string{"Moderator", out.ModeratorJoinURL},
			[2]string{"Attendee", out.AttendeeJoinURL},
			[2]string{"Share (moderator)", out.ShareModeratorURL},
			[2]string{"Share (attendee)", out.ShareAttendeeURL},
		)
	})
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: want YYYY-MM-DD", spoutbreeze.ErrValidation, s)
	}
	return t, nil
}

// parseClock places an HH:MM clock time on day.
func parseClock(s string, day time.Time) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q: want HH:MM", spoutbreeze.ErrValidation, s)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// ============================================================================
// Stream endpoints
// ============================================================================

func endpointFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Endpoint title", Required: true},
		&cli.StringFlag{Name: "rtmp-url", Usage: "RTMP ingest URL", Required: true},
		&cli.StringFlag{Name: "stream-key", Usage: "Stream key", Required: true},
	}
}

func endpointsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "endpoints",
		Aliases: []string{"ep"},
		Usage:   "List and manage stream endpoints",
		Action:  r.withSession(r.EndpointsList),
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your stream endpoints",
				Action: r.withSession(r.EndpointsList),
			},
			{
				Name:   "create",
				Usage:  "Add a stream endpoint",
				Flags:  endpointFlags(),
				Action: r.withSession(r.EndpointsCreate),
			},
			{
				Name:      "update",
				Usage:     "Replace a stream endpoint",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     endpointFlags(),
				Action:    r.withSession(r.EndpointsUpdate),
			},
			{
				Name:      "delete",
				Usage:     "Delete a stream endpoint",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.withSession(r.EndpointsDelete),
			},
		},
	}
}

func endpointRequest(cmd *cli.Command) spoutbreeze.StreamEndpointRequest {
	return spoutbreeze.StreamEndpointRequest{
		Title:     trimmed(cmd, "title"),
		RTMPURL:   trimmed(cmd, "rtmp-url"),
		StreamKey: trimmed(cmd, "stream-key"),
	}
}

func (r *Runner) EndpointsList(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	eps, err := s.API.StreamEndpoints.List(ctx)
	if err != nil {
		return err
	}
	return r.emit(cmd, eps, func(w io.Writer) { renderEndpoints(w, eps) })
}

func (r *Runner) EndpointsCreate(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	ep, err := s.API.StreamEndpoints.Create(ctx, endpointRequest(cmd))
	if err != nil {
		return err
	}
	return r.emit(cmd, ep, func(w io.Writer) { renderEndpoints(w, []spoutbreeze.StreamEndpoint{*ep}) })
}

func (r *Runner) EndpointsUpdate(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	ep, err := s.API.StreamEndpoints.Update(ctx, cmd.StringArg("id"), endpointRequest(cmd))
	if err != nil {
		return err
	}
	return r.emit(cmd, ep, func(w io.Writer) { renderEndpoints(w, []spoutbreeze.StreamEndpoint{*ep}) })
}

func (r *Runner) EndpointsDelete(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	id := cmd.StringArg("id")
	if err := s.API.StreamEndpoints.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("Deleted stream endpoint %s\n", id)
}

// ============================================================================
// Recordings
// ============================================================================

func recordingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "recordings",
		Usage:     "List the recordings of a meeting",
		Arguments: []cli.Argument{&cli.StringArg{Name: "meeting-id"}},
		Action:    r.withSession(r.Recordings),
	}
}

func (r *Runner) Recordings(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	recs, err := s.API.Recordings.List(ctx, cmd.StringArg("meeting-id"))
	if err != nil {
		return err
	}
	return r.emit(cmd, recs, func(w io.Writer) { renderRecordings(w, recs.Recordings) })
}

// ============================================================================
// Users and profile
// ============================================================================

func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "users",
		Usage:  "List users and change roles",
		Action: r.withSession(r.UsersList),
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every user",
				Action: r.withSession(r.UsersList),
			},
			{
				Name:  "role",
				Usage: "Change a user's role",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "role"},
				},
				Action: r.withSession(r.UsersRole),
			},
		},
	}
}

func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	users, err := s.API.Users.List(ctx)
	if err != nil {
		return err
	}
	return r.emit(cmd, users, func(w io.Writer) { renderUsers(w, users) })
}

// UsersRole refuses changes the web settings page would refuse before
// calling the API.
func (r *Runner) UsersRole(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	id := cmd.StringArg("id")

	me, err := s.API.Users.Me(ctx)
	if err != nil {
		return err
	}
	target, err := s.API.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	if !spoutbreeze.CanChangeRole(me, *target) {
		return fmt.Errorf("%w: the role of %s cannot be changed", spoutbreeze.ErrForbidden, target.Username)
	}

	out, err := s.API.Users.UpdateRole(ctx, id, cmd.StringArg("role"))
	if err != nil {
		return err
	}
	return r.emit(cmd, out, func(w io.Writer) { renderUsers(w, []spoutbreeze.User{*out}) })
}

func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "Show or update your profile",
		Action: r.withSession(r.Whoami),
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Change the given profile fields",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
				},
				Action: r.withSession(r.ProfileUpdate),
			},
		},
	}
}

func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	var upd spoutbreeze.ProfileUpdate
	if cmd.IsSet("email") {
		v := trimmed(cmd, "email")
		upd.Email = &v
	}
	if cmd.IsSet("first-name") {
		v := trimmed(cmd, "first-name")
		upd.FirstName = &v
	}
	if cmd.IsSet("last-name") {
		v := trimmed(cmd, "last-name")
		upd.LastName = &v
	}

	out, err := s.API.Users.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	return r.emit(cmd, out, func(w io.Writer) { renderUsers(w, []spoutbreeze.User{*out}) })
}

// ============================================================================
// Public join
// ============================================================================

func joinCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "join",
		Usage:     "Get a named join link for an event, no sign in needed",
		Arguments: []cli.Argument{&cli.StringArg{Name: "event-id"}},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Your full name", Required: true},
			&cli.StringFlag{Name: "role", Usage: "attendee or moderator", Value: spoutbreeze.JoinAttendee},
			&cli.BoolFlag{Name: "open", Usage: "Open the link in the browser"},
		},
		Action: r.withSession(r.Join),
	}
}

func (r *Runner) Join(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	link, err := s.API.Events.PublicJoinURL(ctx, cmd.StringArg("event-id"), cmd.String("name"), cmd.String("role"))
	if err != nil {
		return err
	}
	if cmd.Bool("open") {
		if err := r.browse(link); err != nil {
			_ = r.notice(styles.warn, "Could not open a browser: %v\n", err)
		}
	}
	return r.writePlain("%s\n", link)
}
