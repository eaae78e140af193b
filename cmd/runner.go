package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/credentials"
	"github.com/desertthunder/mediastats/internal/repositories"
	"github.com/desertthunder/mediastats/internal/services"
	"github.com/desertthunder/mediastats/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	store       *credentials.Store
	db          *sql.DB
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	openBrowser func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Store       *credentials.Store
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	OpenBrowser func(url string) error
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
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Plex.Timeout()}
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		store:       opts.Store,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, serversCommand, serveCommand, dashboardCommand, plexCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config named by --config and applies --log-level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if level := cmd.String("log-level"); level != "" {
		ll, err := log.ParseLevel(level)
		if err != nil {
			return ctx, fmt.Errorf("%w: log level %q", shared.ErrInvalidArgument, level)
		}
		shared.SetLogLevel(r.logger, ll)
	}

	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return ctx, nil
	}

	config, err := shared.LoadConfigOrDefault(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.configPath = path
	r.httpClient.Timeout = config.Plex.Timeout()
	return ctx, nil
}

// after releases the database opened by [Runner.credentialStore].
func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// credentialStore opens the configured database on first use.
func (r *Runner) credentialStore() (*credentials.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	r.store = credentials.NewStore(repositories.NewSettingsRepository(db), r.logger)
	return r.store, nil
}

// storedCredentials returns the saved credentials or [shared.ErrNotAuthenticated].
func (r *Runner) storedCredentials() (*credentials.Store, error) {
	store, err := r.credentialStore()
	if err != nil {
		return nil, err
	}
	if _, ok := store.Load(); !ok {
		return nil, fmt.Errorf("%w: run `mediastats auth login` first", shared.ErrNotAuthenticated)
	}
	return store, nil
}

func (r *Runner) plexTV() *services.PlexTVService {
	plex := r.config.Plex
	return services.NewPlexTVService(plex.ProviderURL, plex.Product, plex.Version, r.httpClient, r.logger)
}

func (r *Runner) plexOptions() services.PlexOptions {
	return services.PlexOptions{
		Timeout:           r.config.Plex.Timeout(),
		RequestsPerSecond: r.config.Plex.RequestsPerSecond,
		Logger:            r.logger,
	}
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
