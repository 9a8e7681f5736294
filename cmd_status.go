package main

import (
	"errors"
	"fmt"
	"strings"

	"readiness/internal/analysis"
	"readiness/internal/service"
	"readiness/internal/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusDays int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's readiness and suggested training",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		qs := app.Queries()
		snap, err := qs.TodayScore()
		if errors.Is(err, service.ErrNoScores) {
			color.Yellow("No readiness computed yet. Run 'readiness update'.")
			return nil
		}
		if err != nil {
			return err
		}
		rec, err := qs.TodayRecommendation()
		if err != nil {
			return err
		}

		printSnapshot(snap, rec)
		if err := printWorkoutSummary(app); err != nil {
			return err
		}

		if statusDays > 0 {
			recent, err := qs.RecentScores(statusDays)
			if err != nil {
				return err
			}
			fmt.Println()
			printRecent(recent)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVarP(&statusDays, "days", "d", 7, "also list the last N days (0 to hide)")
	rootCmd.AddCommand(statusCmd)
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 60:
		return color.New(color.FgGreen, color.Bold)
	case score >= 40:
		return color.New(color.FgCyan, color.Bold)
	case score >= 20:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func printSnapshot(s *service.ScoreSnapshot, rec *analysis.Recommendation) {
	faint := color.New(color.Faint)

	fmt.Printf("Readiness %s  %s\n", scoreColor(s.Score).Sprintf("%.0f", s.Score), s.Label)
	if s.Stale {
		color.Yellow("  latest score is from %s; run 'readiness update'", s.Day)
	}
	faint.Printf("  trend %s, physiology %+.1f\n", s.Trend, s.Adjustment)
	fmt.Println()

	fmt.Printf("Fitness %.0f  Fatigue %.0f  Form %+.0f\n", s.Chronic, s.Acute, s.Balance)
	faint.Printf("  %s\n", s.Form)
	rampLine := fmt.Sprintf("  ramp %+.1f/week (%s)", s.RampRate, s.RampBand)
	if s.RampBand == analysis.RampUnsafe {
		color.Red("%s", rampLine)
	} else {
		faint.Println(rampLine)
	}
	if s.Illness > analysis.IllnessNone {
		color.Yellow("⚠ illness %s: HRV and resting HR are off baseline", s.Illness)
	}
	fmt.Println()

	target := "rest"
	if rec.MaxTSS > 0 {
		target = fmt.Sprintf("%.0f-%.0f TSS", rec.MinTSS, rec.MaxTSS)
	}
	fmt.Printf("Today: %s (%s)\n", color.New(color.Bold).Sprint(rec.Level), target)
	faint.Printf("  %s\n", rec.Message)
}

func printRecent(aggs []store.DailyAggregate) {
	faint := color.New(color.Faint)
	faint.Printf("%-10s  %5s  %5s  %7s  %7s  %s\n", "Day", "Score", "TSS", "Fitness", "Fatigue", "")
	for _, a := range aggs {
		bar := strings.Repeat("▇", int(a.Score/10))
		fmt.Printf("%-10s  %s  %5.0f  %7.1f  %7.1f  %s\n",
			a.Day, scoreColor(a.Score).Sprintf("%5.0f", a.Score), a.TotalTSS, a.Chronic, a.Acute, scoreColor(a.Score).Sprint(bar))
	}
}

func printWorkoutSummary(app *application) error {
	total, suppressed, err := app.db.CountWorkouts()
	if err != nil {
		return err
	}
	latest, err := app.db.RecentWorkouts(1)
	if err != nil {
		return err
	}

	faint := color.New(color.Faint)
	fmt.Println()
	faint.Printf("%d workouts stored, %d duplicates suppressed\n", total, suppressed)
	if len(latest) == 1 {
		w := latest[0]
		faint.Printf("Last workout: %s %s, %.0f TSS (%s)\n",
			w.StartTime.In(app.loc).Format("Mon Jan 2 15:04"), w.SportType, w.TSS, w.TSSMethod)
	}
	return nil
}
