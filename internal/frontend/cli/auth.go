package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/app"
	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/jwtx"
)

// DefaultLoginTimeout bounds how long login waits for the browser callback.
const DefaultLoginTimeout = 2 * time.Minute

const successPage = `<!DOCTYPE html>
<html>
<head><title>SpoutBreeze</title></head>
<body>
<h1>Signed in</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`

const failurePage = `<!DOCTYPE html>
<html>
<head><title>SpoutBreeze</title></head>
<body>
<h1>Sign in failed</h1>
<p>Return to the terminal and run spoutbreeze login again.</p>
</body>
</html>`

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web front-end",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := r.loadConfig(cmd)
			if err != nil {
				return err
			}
			application, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in through the browser",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the login URL instead of opening it",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser to come back",
				Value: DefaultLoginTimeout,
			},
		},
		Action: r.withSession(r.Login),
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "End the session",
		Action: r.withSession(r.Logout),
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show whether a session is stored",
		Action: r.withSession(r.Status),
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed in user",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "token",
				Usage: "Show the claims of the stored access token without calling the API",
			},
		},
		Action: r.withSession(r.Whoami),
	}
}

// ErrNotSignedIn is returned when no access token is stored.
var ErrNotSignedIn = errors.New("not signed in")

// callbackResult is what the one-shot callback listener reports.
type callbackResult struct {
	creds authflow.Credentials
	err   error
}

// callbackHandler completes a login on the first request to the redirect
// URI. Later requests are refused.
type callbackHandler struct {
	auth    *authflow.Client
	results chan callbackResult

	mu  sync.Mutex
	hit bool
}

func newCallbackHandler(auth *authflow.Client) *callbackHandler {
	return &callbackHandler{auth: auth, results: make(chan callbackResult, 1)}
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	var res callbackResult
	code, err := authflow.ParseCallbackQuery(req.URL.Query())
	if err == nil {
		res.creds, err = h.auth.ExchangeCode(req.Context(), code)
	}
	res.err = err

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(failurePage))
	} else {
		_, _ = w.Write([]byte(successPage))
	}
	h.results <- res
}

// Login builds the login URL, serves the redirect URI locally and waits for
// the identity provider to send the browser back.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	redirect, err := url.Parse(s.Auth.Config().RedirectURI)
	if err != nil {
		return fmt.Errorf("invalid redirect uri: %w", err)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}

	handler := newCallbackHandler(s.Auth)
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle("GET "+path, handler)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 3 * time.Second}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = r.notice(styles.err, "callback server failed: %v\n", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	loginURL, err := s.Auth.BuildLoginURL(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("no-browser") {
		_ = r.notice(styles.dim, "Open this URL to sign in:\n  %s\n", loginURL)
	} else if err := r.browse(loginURL); err != nil {
		_ = r.notice(styles.warn, "Could not open a browser. Open this URL to sign in:\n  %s\n", loginURL)
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}

	select {
	case res := <-handler.results:
		if res.err != nil {
			return res.err
		}
		return r.writePlain("%s\n", styles.ok.Render("Signed in."))
	case <-time.After(timeout):
		return fmt.Errorf("login timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Logout ends the session. Local state is cleared even when the backend
// call fails; the backend's message is shown either way.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	res := s.Auth.Logout(ctx)
	if cmd.Bool("json") {
		return writeJSON(r.output, res)
	}
	style := styles.ok
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		style = styles.warn
	}
	msg := res.Message
	if msg == "" {
		msg = "Signed out."
	}
	return r.writePlain("%s\n", style.Render(msg))
}

// Status reports the stored session without calling the API.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	state := s.Auth.Session(ctx)
	return r.emit(cmd, state, func(w io.Writer) {
		renderFields(w,
			[2]string{"Mode", string(s.Auth.Config().Mode)},
			[2]string{"Access", presence(state.HasAccess)},
			[2]string{"Refresh", presence(state.HasRefresh)},
		)
	})
}

// Whoami shows the current user, or with --token the stored token's claims.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command, s *app.Session) error {
	if cmd.Bool("token") {
		raw, ok := s.AccessToken(ctx)
		if !ok {
			return ErrNotSignedIn
		}
		claims, err := jwtx.Peek(raw)
		if err != nil {
			return err
		}
		return r.emit(cmd, claims, func(w io.Writer) {
			expires := ""
			if claims.ExpiresAt != nil {
				expires = claims.ExpiresAt.Time.Format(time.RFC3339)
			}
			renderFields(w,
				[2]string{"Subject", claims.Subject},
				[2]string{"Name", claims.DisplayName()},
				[2]string{"Email", claims.Email},
				[2]string{"Roles", roleChips(claims.RealmAccess.Roles)},
				[2]string{"Expires", expires},
			)
		})
	}

	me, err := s.API.Users.Me(ctx)
	if err != nil {
		return err
	}
	return r.emit(cmd, me, func(w io.Writer) {
		renderFields(w,
			[2]string{"ID", me.ID},
			[2]string{"Username", me.Username},
			[2]string{"Name", me.FullName()},
			[2]string{"Email", me.Email},
			[2]string{"Roles", roleChips(me.RoleList())},
		)
	})
}

func presence(ok bool) string {
	if ok {
		return styles.ok.Render("present")
	}
	return styles.dim.Render("missing")
}

// trimmed returns the flag value without surrounding whitespace.
func trimmed(cmd *cli.Command, name string) string {
	return strings.TrimSpace(cmd.String(name))
}
