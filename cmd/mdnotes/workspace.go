package main

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alnah/go-mdnotes/internal/app"
	"github.com/alnah/go-mdnotes/internal/config"
	"github.com/alnah/go-mdnotes/internal/store"
)

// workspace is what a store-backed command runs against.
type workspace struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	app    *app.App
}

// Close releases the database.
func (w *workspace) Close() error {
	return w.store.Close()
}

// loadSettings resolves the configuration for a command.
// Order: config file (or defaults), MDNOTES_* variables, then flags.
func loadSettings(common *commonFlags, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig()
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	cfg, err := config.LoadOrDefault(name)
	if err != nil {
		return nil, nil, err
	}

	applyEnvConfig(envCfg, cfg)
	if common.db != "" {
		cfg.Store.Path = common.db
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, envCfg, nil
}

// newLogger builds the slog handler selected by cfg.
// --verbose forces debug, --quiet keeps errors only.
func newLogger(cfg config.LogConfig, common *commonFlags, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	switch {
	case common.verbose:
		level = slog.LevelDebug
	case common.quiet:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openWorkspace loads settings, builds the exporter and opens the store.
// workers overrides MDNOTES_WORKERS when positive.
func openWorkspace(ctx context.Context, common *commonFlags, workers int, env *Environment) (*workspace, error) {
	cfg, envCfg, err := loadSettings(common, env)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log, common, env.Stderr)

	exporter, err := env.NewExporter(cfg, logger)
	if err != nil {
		return nil, err
	}

	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	storeOpts := []store.Option{store.WithLogger(logger)}
	if env.Now != nil {
		storeOpts = append(storeOpts, store.WithClock(env.Now))
	}
	st, err := store.Open(ctx, path, storeOpts...)
	if err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = envCfg.Workers
	}
	return &workspace{
		cfg:    cfg,
		logger: logger,
		store:  st,
		app:    app.New(st, exporter, app.WithLogger(logger), app.WithWorkers(workers)),
	}, nil
}
