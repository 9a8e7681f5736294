package main

import (
	"fmt"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/export"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportDir   string
	exportSince string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily readiness and workouts as Parquet",
	Long: `Write the stored history as two Parquet files:

  daily_readiness.parquet   one row per day: score, load, physiology, sleep
  workouts.parquet          one row per workout, duplicates included

EXAMPLES:

  readiness export -o ./out
  readiness export -o ./out --since 2024-01-01`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		to := analysis.DayKey(time.Now().In(app.loc))
		from := exportSince
		if from == "" {
			from = "0000-01-01"
		} else if _, err := analysis.ParseDay(from, app.loc); err != nil {
			return fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
		}

		summary, err := export.ToDir(app.db, exportDir, from, to)
		if err != nil {
			return err
		}

		color.Green("✓ Exported %d days and %d workouts", summary.Days, summary.Workouts)
		faint := color.New(color.Faint)
		faint.Printf("  %s\n  %s\n", summary.AggregatesPath, summary.WorkoutsPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "directory to write into")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "first day to export (YYYY-MM-DD)")
	rootCmd.AddCommand(exportCmd)
}
