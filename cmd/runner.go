package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/rlacey/statify/internal/repositories"
	"github.com/rlacey/statify/internal/services"
	"github.com/rlacey/statify/internal/session"
	"github.com/rlacey/statify/internal/shared"
	"github.com/rlacey/statify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	store   *repositories.TokenRepository
	session *session.Manager
	spotify *services.SpotifyService
	engine  *tasks.DashboardEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// setup builds the client-side dependency chain on first use: the token
// store, the session manager bound to the relay, the aggregator and the
// dashboard engine. The relay-only serve command never calls this.
func (r *Runner) setup() error {
	if r.engine != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	store, err := repositories.NewTokenRepository(db)
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	relay := services.NewRelayClient(r.config.Relay.BaseURL, r.httpClient)
	manager, err := session.NewManager(session.ManagerOpts{
		Store:       store,
		Relay:       relay,
		ClientID:    r.config.Credentials.ClientID,
		RedirectURI: r.config.Credentials.RedirectURI,
		Logger:      r.logger,
	})
	if err != nil {
		return err
	}

	spotify := services.NewSpotifyService(manager, "", r.httpClient)
	engine, err := tasks.NewDashboardEngine(tasks.EngineOpts{
		Provider: spotify,
		Logger:   r.logger,
	})
	if err != nil {
		return err
	}

	r.db = db
	r.store = store
	r.session = manager
	r.spotify = spotify
	r.engine = engine
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, authCommand, profileCommand, statsCommand, topCommand, recentCommand, playlistCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
