/*
Package spoutbreeze is a client for the SpoutBreeze platform API: channels,
events, RTMP stream endpoints, users and meeting recordings.

Authenticated calls are sent through an authflow.Client, which attaches the
session credentials and transparently refreshes an expired access token:

	ac, err := authflow.New(cfg)
	api := spoutbreeze.NewFromAuth(ac)

	upcoming, err := api.Events.Upcoming(ctx)
	link, err := api.Events.Start(ctx, upcoming.Events[0].ID)

The public join endpoint needs no session and is called through a plain
HTTP client:

	link, err := api.Events.PublicJoinURL(ctx, eventID, "Ada Lovelace", spoutbreeze.JoinAttendee)

# Errors

Non-2xx responses are returned as *APIError carrying the status and the
backend's detail message. The generic sentinels (ErrUnauthorized,
ErrNotFound, ErrServer, ...) match by status with errors.Is. The event
endpoints additionally classify failures as ErrDuplicateTitle,
ErrEventNotFound or ErrEventNotStarted.
*/
package spoutbreeze
