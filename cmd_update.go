package main

import (
	"errors"
	"fmt"

	"readiness/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Score workouts and recovery data added since the last pass",
	Long: `Fetch workouts that appeared since the last pass (new FIT files, new
Strava activities) and recompute readiness from the earliest affected day.

Runs a full recompute when nothing has been computed yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPass(cmd, service.ModeIncremental)
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute every day in the history window",
	Long: `Refetch all workouts and recovery data in the history window
(engine.history_days) and rebuild every daily score.

Run this after changing thresholds such as FTP or heart-rate anchors.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPass(cmd, service.ModeFull)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(recomputeCmd)
}

func runPass(cmd *cobra.Command, mode service.PassMode) error {
	app, err := openApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	engine, err := app.Engine(func(p service.PassProgress) {
		app.logger.Debug("pass progress", "mode", p.Mode, "phase", p.Phase, "days", p.Days)
	})
	if err != nil {
		return err
	}

	var res *service.PassResult
	if mode == service.ModeFull {
		res, err = engine.RecomputeAll(cmd.Context())
	} else {
		res, err = engine.IncrementalUpdate(cmd.Context())
	}
	if errors.Is(err, service.ErrConfigurationIncomplete) {
		return fmt.Errorf("%w\nset athlete.max_hr and athlete.resting_hr in the config", err)
	}
	if err != nil {
		return err
	}

	printPassResult(res)
	return nil
}

func printPassResult(res *service.PassResult) {
	faint := color.New(color.Faint)

	if res.NoChanges {
		color.Green("✓ Up to date")
		faint.Println("  no new workouts or recovery data")
		return
	}

	color.Green("✓ %s pass complete", res.Mode)
	fmt.Printf("  %s to %s: %d days scored\n", res.From, res.To, res.DaysWritten)
	fmt.Printf("  %d workouts stored, %d duplicates suppressed\n", res.WorkoutsWritten, res.Suppressed)
	faint.Printf("  fetched %d primary, %d secondary workouts and %d recovery samples\n",
		res.PrimaryFetched, res.SecondaryFetched, res.SamplesFetched)

	if res.SecondaryDegraded != nil {
		color.Yellow("⚠ Strava unavailable, scored without it: %v", res.SecondaryDegraded)
	}
}
