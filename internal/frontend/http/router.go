package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"

	_ "github.com/aussiebroadwan/spoutbreeze/api/web" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger reports whether local session storage is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TokenSource returns the current access token, if any.
type TokenSource func(ctx context.Context) (string, bool)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	auth *authflow.Client
	api  *spoutbreeze.Client

	// PublicBaseURL prefixes shareable join links.
	PublicBaseURL string
	// JoinLimit throttles the public join page per client IP.
	JoinLimit httpx.RateLimitConfig
	// Store is checked by /readyz. Optional.
	Store Pinger
	// Tokens feeds /home/session. Optional.
	Tokens TokenSource
}

// NewRouter builds a router over one credential context. The auth client
// should use Navigator so expired sessions turn into login redirects.
func NewRouter(auth *authflow.Client, api *spoutbreeze.Client, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		auth:         auth,
		api:          api,
		JoinLimit:    httpx.JoinLimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		NavigationMiddleware(),
		GuardMiddleware(auth),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerJoin()
	r.registerHome()
	r.registerSettings()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SpoutBreeze Web Front-end
//	@version		0.1.0
//	@description	Local front-end for the SpoutBreeze webinar platform. Pages are served as JSON or redirects;
//	@description	the session lives in backend cookies or stored tokens and is refreshed transparently.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/spoutbreeze
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:3000
//	@BasePath		/
//
//	@schemes		http
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.auth, Tokens: r.Tokens}

	r.Mux.HandleFunc("GET /{$}", h.HandleLanding)
	r.Mux.HandleFunc("GET /login", h.HandleLogin)
	r.Mux.HandleFunc("GET /auth/callback", h.HandleCallback)
	r.Mux.HandleFunc("POST /logout", h.HandleLogout)
	r.Mux.HandleFunc("GET /home/session", h.HandleSession)
}

func (r *Router) registerJoin() {
	h := &JoinHandler{Events: r.api.Events}

	// Public and unauthenticated: limit per IP
	r.Mux.Handle("GET /join/{eventId}",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.JoinLimit),
		),
	)
}

func (r *Router) registerHome() {
	dashboard := &DashboardHandler{API: r.api}
	r.Mux.Handle("GET /home", dashboard)
	r.Mux.Handle("GET /home/dashboard", dashboard)

	channels := &ChannelsHandler{Channels: r.api.Channels}
	r.Mux.HandleFunc("GET /home/channels", channels.HandleList)
	r.Mux.HandleFunc("POST /home/channels", channels.HandleCreate)
	r.Mux.HandleFunc("DELETE /home/channels/{id}", channels.HandleDelete)
	r.Mux.HandleFunc("GET /home/channels/{id}/recordings", channels.HandleRecordings)

	events := &EventsHandler{Events: r.api.Events, PublicBaseURL: r.PublicBaseURL}
	r.Mux.HandleFunc("GET /home/events", events.HandleList)
	r.Mux.HandleFunc("POST /home/events", events.HandleCreate)
	r.Mux.HandleFunc("PATCH /home/events/{id}", events.HandleUpdate)
	r.Mux.HandleFunc("DELETE /home/events/{id}", events.HandleDelete)
	r.Mux.HandleFunc("POST /home/events/{id}/start", events.HandleStart)
	r.Mux.HandleFunc("GET /home/events/{id}/join-urls", events.HandleJoinURLs)

	endpoints := &EndpointsHandler{Endpoints: r.api.StreamEndpoints}
	r.Mux.HandleFunc("GET /home/endpoints", endpoints.HandleList)
	r.Mux.HandleFunc("POST /home/endpoints", endpoints.HandleCreate)
	r.Mux.HandleFunc("PUT /home/endpoints/{id}", endpoints.HandleUpdate)
	r.Mux.HandleFunc("DELETE /home/endpoints/{id}", endpoints.HandleDelete)

	recordings := &RecordingsHandler{Recordings: r.api.Recordings}
	r.Mux.Handle("GET /home/recordings", recordings)
}

func (r *Router) registerSettings() {
	h := &SettingsHandler{Users: r.api.Users}

	r.Mux.HandleFunc("GET /settings/profile", h.HandleProfile)
	r.Mux.HandleFunc("PATCH /settings/profile", h.HandleUpdateProfile)
	r.Mux.HandleFunc("GET /settings/users", h.HandleListUsers)
	r.Mux.HandleFunc("PATCH /settings/users/{id}/role", h.HandleUpdateRole)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.Store))
}
