package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtrack/internal/catalog"
	"github.com/desertthunder/favtrack/internal/engine"
	"github.com/desertthunder/favtrack/internal/rating"
	"github.com/desertthunder/favtrack/internal/repositories"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/desertthunder/favtrack/internal/signal"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	catalog    *catalog.Client
	bridge     signal.AutomationBridge
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    *catalog.Client
	Bridge     signal.AutomationBridge
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
	if opts.Bridge == nil {
		opts.Bridge = signal.NewScriptBridge(opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		catalog:    opts.Catalog,
		bridge:     opts.Bridge,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when output moves to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, statusCommand, watchCommand, favCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig replaces the runner config when the given path loads cleanly.
func (r *Runner) reloadConfig(path string) *shared.Config {
	if path == "" {
		return r.config
	}
	if _, err := os.Stat(path); err != nil {
		return r.config
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current", "path", path, "error", err)
		return r.config
	}
	r.config = config
	return config
}

// openHistory opens the play history store. The caller owns the database handle.
func (r *Runner) openHistory() (*sql.DB, *repositories.PlayHistoryRepository, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, repositories.NewPlayHistoryRepository(db), nil
}

// buildSources assembles the signal sources for the configured player mode.
// The push source is returned separately so the notification layer can feed it.
func (r *Runner) buildSources(config *shared.Config) ([]signal.Source, *signal.PushSource) {
	var sources []signal.Source
	var push *signal.PushSource

	mode := config.Player.Mode
	if mode == "" {
		mode = "hybrid"
	}

	if mode == "push" || mode == "hybrid" {
		push = signal.NewPushSource(r.logger, config.Engine.EventBuffer)
		sources = append(sources, push)
	}

	if mode == "poll" || mode == "hybrid" {
		poller := signal.NewPollingBridge(r.bridge, r.logger, signal.PollingOpts{
			Interval:  time.Duration(config.Player.PollIntervalSec * float64(time.Second)),
			RateLimit: config.Player.PollRateLimit,
			Buffer:    config.Engine.EventBuffer,
		})
		sources = append(sources, poller)
	}

	return sources, push
}

// buildEngine wires the reconciler from the runner's catalog client and the
// configured signal sources. A nil recorder disables play history. The push
// source handle is returned so a notification ingest can feed it; it is nil
// in poll mode.
func (r *Runner) buildEngine(config *shared.Config, recorder engine.Recorder) (*engine.Reconciler, *signal.PushSource, error) {
	if r.catalog == nil {
		return nil, nil, fmt.Errorf("%w: catalog client not configured", shared.ErrMissingCredentials)
	}

	sources, push := r.buildSources(config)

	resolver := catalog.NewResolver(r.catalog, r.logger, config.Engine.SearchLimit)
	cache := rating.NewFavoriteCache(r.catalog, r.logger, time.Duration(config.Engine.CacheTTLSec)*time.Second)

	eng := engine.NewReconciler(engine.Opts{
		Sources:   sources,
		Resolver:  resolver,
		Favorites: cache,
		Rater:     r.catalog,
		Recorder:  recorder,
		Logger:    r.logger,
		Debounce:  time.Duration(config.Engine.DebounceMS) * time.Millisecond,
		Buffer:    config.Engine.EventBuffer,
	})
	return eng, push, nil
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
