// Package app assembles a runnable starjar server from a config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/wondertwin-ai/starjar/internal/api"
	"github.com/wondertwin-ai/starjar/internal/assistant"
	"github.com/wondertwin-ai/starjar/internal/config"
	"github.com/wondertwin-ai/starjar/internal/games"
	"github.com/wondertwin-ai/starjar/internal/i18n"
	"github.com/wondertwin-ai/starjar/internal/journal"
	"github.com/wondertwin-ai/starjar/internal/ledger"
	"github.com/wondertwin-ai/starjar/pkg/admin"
	"github.com/wondertwin-ai/starjar/pkg/server"
	"github.com/wondertwin-ai/starjar/pkg/store"
	"github.com/wondertwin-ai/starjar/pkg/store/sqlite"
)

// Backend is the storage an App runs on.
type Backend interface {
	store.KV
	store.Snapshotter
}

// App is a fully wired starjar server.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Server    *server.Server
	Ledger    *ledger.Ledger
	Journal   *journal.Journal
	Arcade    *games.Arcade
	Assistant *assistant.Service
	Clock     *store.Clock

	backend Backend
	closer  func() error
}

type options struct {
	logger    *slog.Logger
	backend   Backend
	generator assistant.Generator
	apiOpts   []api.Option
}

// Option customizes New.
type Option func(*options)

// WithLogger overrides the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBackend uses kv instead of opening the configured storage.
func WithBackend(kv Backend) Option {
	return func(o *options) { o.backend = kv }
}

// WithGenerator uses gen for the assistant instead of the Gemini client.
func WithGenerator(gen assistant.Generator) Option {
	return func(o *options) { o.generator = gen }
}

// WithAPIOptions passes options through to the API handler.
func WithAPIOptions(opts ...api.Option) Option {
	return func(o *options) { o.apiOpts = append(o.apiOpts, opts...) }
}

// OpenBackend opens the storage named by cfg. The returned func closes it.
func OpenBackend(cfg config.StorageConfig) (Backend, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemory(), func() error { return nil }, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// New wires storage, the domain services, the API and the admin plane.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = server.NewLogger(os.Stdout, cfg.Verbose)
	}

	a := &App{Config: cfg, Logger: o.logger, Clock: store.NewClock()}

	a.backend, a.closer = o.backend, func() error { return nil }
	if a.backend == nil {
		kv, closer, err := OpenBackend(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.backend, a.closer = kv, closer
	}

	gen := o.generator
	if gen == nil && cfg.AI.APIKey != "" {
		client, err := assistant.NewGenAI(ctx, cfg.AI.APIKey)
		if err != nil {
			_ = a.closer()
			return nil, fmt.Errorf("create assistant: %w", err)
		}
		gen = client
	}
	if gen == nil {
		a.Logger.Info("assistant disabled, no api key configured")
	}

	a.Ledger = ledger.New(a.backend, ledger.WithClock(a.Clock), ledger.WithLogger(a.Logger))
	a.Journal = journal.New(a.backend, a.Ledger, a.Logger)
	a.Arcade = games.New(a.Ledger, a.Logger)
	a.Assistant = assistant.NewService(gen,
		assistant.WithModel(cfg.AI.Model),
		assistant.WithTimeout(cfg.AI.Timeout),
		assistant.WithLogger(a.Logger),
	)

	a.Server = server.New(&server.Config{
		Name:    "starjar",
		Port:    cfg.Port,
		Verbose: cfg.Verbose,
	}, a.Logger)

	apiOpts := o.apiOpts
	if tag, ok := i18n.Parse(cfg.Locale); ok {
		apiOpts = append([]api.Option{api.WithLocale(tag)}, apiOpts...)
	}
	api.NewHandler(api.Services{
		Ledger:    a.Ledger,
		Journal:   a.Journal,
		Arcade:    a.Arcade,
		Assistant: a.Assistant,
	}, a.Server.Middleware(), a.Logger, apiOpts...).Routes(a.Server.Router)

	admin.NewHandler(NewState(a.backend, a.Ledger), a.Server.Middleware(), a.Clock).Routes(a.Server.Router)

	return a, nil
}

// Run serves until ctx is cancelled, then closes storage.
func (a *App) Run(ctx context.Context) error {
	err := a.Server.Serve(ctx)
	return errors.Join(err, a.Close())
}

// Close releases storage.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	closer := a.closer
	a.closer = nil
	return closer()
}
