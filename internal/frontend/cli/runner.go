// Package cli implements the spoutbreeze command line: the web front-end
// server plus one command per page of the web application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/skratchdot/open-golang/open"
	"github.com/urfave/cli/v3"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/app"
	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

const serviceName = "spoutbreeze-cli"

// ErrAuthenticationFailed is reported for every error that only a new login
// can fix.
var ErrAuthenticationFailed = errors.New("authentication failed, run `spoutbreeze login` again")

// Runner holds the dependencies shared by every command action.
type Runner struct {
	output    io.Writer
	logOutput io.Writer
	browse    func(url string) error
	version   string
}

// RunnerOpts configures a Runner. Zero values select stdout, stderr and the
// system browser.
type RunnerOpts struct {
	Output    io.Writer
	LogOutput io.Writer
	Browse    func(url string) error
	Version   string
}

// NewRunner creates a Runner from opts.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Browse == nil {
		opts.Browse = open.Run
	}
	if opts.Version == "" {
		opts.Version = app.BuildVersion
	}

	return &Runner{
		output:    opts.Output,
		logOutput: opts.LogOutput,
		browse:    opts.Browse,
		version:   opts.Version,
	}
}

// Command builds the root command.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:    "spoutbreeze",
		Usage:   "Manage SpoutBreeze channels, events and stream endpoints",
		Version: r.version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				Sources: cli.EnvVars(app.ConfigFileEnv),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print raw JSON instead of tables",
			},
		},
		Commands: r.register(),
	}
}

// Run executes the command line in args.
func (r *Runner) Run(ctx context.Context, args []string) error {
	err := r.Command().Run(ctx, args)
	if err == nil {
		return nil
	}
	if authflow.IsLoginFailure(err) || errors.Is(err, spoutbreeze.ErrUnauthorized) || errors.Is(err, ErrNotSignedIn) {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, loginCommand, logoutCommand, statusCommand, whoamiCommand,
		channelsCommand, eventsCommand, endpointsCommand, recordingsCommand,
		usersCommand, profileCommand, joinCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) loadConfig(cmd *cli.Command) (app.Config, error) {
	return app.LoadConfig(cmd.String("config"))
}

func (r *Runner) logger(cfg app.Config) *slog.Logger {
	lc := cfg.LogConfig(serviceName, r.version)
	out := r.logOutput
	if lc.File != "" {
		out = slogx.Output(lc)
	}
	return slog.New(slogx.NewHandler(lc, out))
}

// session opens the credential context for one command. The caller closes it.
func (r *Runner) session(ctx context.Context, cmd *cli.Command) (*app.Session, error) {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.OpenSession(ctx, cfg, r.logger(cfg), authflow.WithNavigator(r.navigator()))
}

// navigator reports an ended session and opens the login page in the
// browser. The login itself completes wherever the redirect URI points.
func (r *Runner) navigator() authflow.Navigator {
	return authflow.NavigatorFunc(func(_ context.Context, url string) error {
		_ = r.notice(styles.warn, "Your session has expired. Sign in again at:\n  %s\n", url)
		return r.browse(url)
	})
}

// withSession runs fn against a freshly opened session.
func (r *Runner) withSession(fn func(ctx context.Context, cmd *cli.Command, s *app.Session) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := r.session(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(ctx, cmd, s)
	}
}

// emit writes v as JSON when --json is set, otherwise calls render.
func (r *Runner) emit(cmd *cli.Command, v any, render func(io.Writer)) error {
	if cmd.Bool("json") {
		return writeJSON(r.output, v)
	}
	render(r.output)
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// notice writes a styled message to the log output so that it never mixes
// with command output.
func (r *Runner) notice(style lipgloss.Style, format string, args ...any) error {
	_, err := fmt.Fprint(r.logOutput, style.Render(fmt.Sprintf(format, args...)))
	return err
}
