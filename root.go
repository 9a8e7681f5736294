package main

import (
	"errors"
	"fmt"

	"readiness/internal/config"
	"readiness/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// version is set at build time
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Daily training readiness from your workouts and recovery data",
	Long: `Readiness turns workouts and recovery data into a 0-100 training readiness
score, a training load picture and a suggestion for today's session.

WORKOUT SOURCES:

  Primary     FIT files exported from your head unit or watch (engine.fit_dir)
  Secondary   Strava activity summaries, deduplicated against FIT files

RECOVERY DATA:

  $ readiness import export.json   # HRV, resting HR and sleep stages

QUICK START:

  $ readiness init                 # Create ~/.readiness/config.json
  $ readiness auth connect         # Optional: connect Strava
  $ readiness update               # Score new workouts
  $ readiness status               # Today's readiness
  $ readiness                      # Interactive dashboard`,
	SilenceUsage: true,
	Version:      version,
	RunE:         runDashboard,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd.Context(), appOptions{logToFile: true})
	if errors.Is(err, config.ErrNoConfig) {
		return fmt.Errorf("no config found; run 'readiness init' first")
	}
	if err != nil {
		return err
	}
	defer app.Close()

	feed := tui.NewProgressFeed()
	var runner tui.Runner
	engine, err := app.Engine(feed.Report)
	if err != nil {
		app.logger.Warn("dashboard running read-only", "error", err)
	} else {
		runner = engine
	}

	model := tui.NewApp(app.Queries(), runner, feed, tui.NewUnits(app.Units()))
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
