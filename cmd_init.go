package main

import (
	"fmt"
	"path/filepath"

	"readiness/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example config file",
	Long: `Create ~/.readiness/config.json with defaults to edit. An existing
config is left untouched.

Settings can also come from the environment or a .env file:

  READINESS_FIT_DIR        READINESS_FTP
  READINESS_MAX_HR         READINESS_RESTING_HR
  READINESS_TIMEZONE       READINESS_HISTORY_DAYS
  READINESS_UNITS          READINESS_STRAVA_CLIENT_ID
  READINESS_STRAVA_CLIENT_SECRET`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.CreateExample(); err != nil {
			return err
		}
		dir, err := config.GetConfigDir()
		if err != nil {
			return err
		}

		color.Green("✓ Config ready at %s", filepath.Join(dir, "config.json"))
		fmt.Println("  Set engine.fit_dir and your heart rate anchors, then run 'readiness update'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
