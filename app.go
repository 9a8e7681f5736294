package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/auth"
	"readiness/internal/config"
	"readiness/internal/service"
	"readiness/internal/store"
	"readiness/internal/strava"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// application holds what every command needs: config, database and logger
type application struct {
	cfg    *config.Config
	db     *store.DB
	logger *slog.Logger
	loc    *time.Location

	logFile io.Closer
}

type appOptions struct {
	// logToFile sends logs to ~/.readiness/readiness.log, for the TUI
	logToFile bool
	// quiet logs to stderr at warn level only, for the MCP server
	quiet bool
}

func openApp(ctx context.Context, opts appOptions) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("invalid config (%s/config.json): %w", configDir, err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg, loc: loc}
	if err := app.setupLogger(opts); err != nil {
		return nil, err
	}

	path, err := store.DefaultPath()
	if err != nil {
		return nil, err
	}
	if app.db, err = store.Open(path); err != nil {
		app.Close()
		return nil, err
	}
	app.logger.Debug("opened database", "path", path)
	return app, nil
}

func (a *application) setupLogger(opts appOptions) error {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	if opts.quiet && !verbose {
		level = charmlog.WarnLevel
	}

	var w io.Writer = os.Stderr
	if opts.logToFile {
		dir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(dir, "readiness.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
		w = f
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	a.logger = slog.New(handler)
	return nil
}

// Close releases the database and log file
func (a *application) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// Units is the display unit system
func (a *application) Units() analysis.UnitSystem {
	return analysis.UnitSystem(a.cfg.Display.Units)
}

// Queries returns the read-only query service
func (a *application) Queries() *service.QueryService {
	return service.NewQueryService(a.db, a.loc)
}

// Engine wires the sources into a readiness engine. progress may be nil.
func (a *application) Engine(progress func(service.PassProgress)) (*service.Engine, error) {
	fitDir, err := a.cfg.FITDir()
	if err != nil {
		return nil, err
	}
	if fitDir == "" {
		return nil, fmt.Errorf("%w: engine.fit_dir is not set", service.ErrConfigurationIncomplete)
	}

	samples := service.NewStoreSamples(a.db)
	cfg := service.EngineConfig{
		Primary:     service.NewFITSource(fitDir, a.logger.With("source", "fit")),
		Physiology:  samples,
		Sleep:       samples,
		Store:       a.db,
		Logger:      a.logger,
		HistoryDays: a.cfg.Engine.HistoryDays,
		Location:    a.loc,
		Progress:    progress,
	}

	var profile service.ProfileFTP
	stravaSource, saved, err := a.stravaSource()
	switch {
	case err != nil:
		return nil, err
	case stravaSource != nil:
		cfg.Secondary = stravaSource
		if saved.HasScope(auth.ProfileScope) {
			profile = stravaSource
		} else {
			a.logger.Info("strava profile scope not granted; using the configured FTP only")
		}
	}
	cfg.Settings = service.NewConfigSettings(a.cfg, profile, a.logger)

	return service.NewEngine(cfg), nil
}

// stravaSource returns nil when Strava is not configured or not connected
func (a *application) stravaSource() (*service.StravaSource, *store.Auth, error) {
	if !a.cfg.HasStrava() {
		return nil, nil, nil
	}

	ts, saved, err := auth.StoredTokenSource(a.oauthConfig(), a.db)
	if errors.Is(err, store.ErrNoAuth) {
		a.logger.Info("strava not connected; run 'readiness auth connect' to add it")
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return service.NewStravaSource(strava.NewClient(ts)), saved, nil
}

func (a *application) oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     a.cfg.Strava.ClientID,
		ClientSecret: a.cfg.Strava.ClientSecret,
		RedirectURL:  auth.RedirectURL,
	})
}
