package main

import (
	"errors"
	"fmt"
	"os"

	"readiness/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var importNoRecompute bool

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import HRV, resting heart rate and sleep from a health export",
	Long: `Import recovery samples from a JSON health export:

  {
    "hrv":        [{"time": "2024-06-15T06:30:00Z", "value": 58.2}],
    "resting_hr": [{"time": "2024-06-15T06:30:00Z", "value": 48}],
    "sleep":      [{"stage": "deep", "start": "...", "end": "..."}]
  }

Samples already imported are skipped. Imported samples can be back-dated,
so readiness is recomputed afterwards unless --no-recompute is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := service.NewImporter(app.db).Import(f)
		if err != nil {
			return err
		}

		color.Green("✓ Imported from %s", args[0])
		fmt.Printf("  %d HRV, %d resting HR, %d sleep samples\n", res.HRV, res.RestingHR, res.Sleep)
		if res.Skipped > 0 {
			color.New(color.Faint).Printf("  %d invalid samples skipped\n", res.Skipped)
		}

		if res.Total() == 0 || importNoRecompute {
			return nil
		}

		app.logger.Info("recomputing after import", "earliest", res.Earliest)
		engine, err := app.Engine(nil)
		if errors.Is(err, service.ErrConfigurationIncomplete) {
			color.Yellow("⚠ Samples stored; set engine.fit_dir and run 'readiness recompute' to score them")
			return nil
		}
		if err != nil {
			return err
		}
		pass, err := engine.RecomputeAll(cmd.Context())
		if err != nil {
			return err
		}
		printPassResult(pass)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importNoRecompute, "no-recompute", false, "only store the samples")
	rootCmd.AddCommand(importCmd)
}
