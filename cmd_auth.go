package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"readiness/internal/auth"
	"readiness/internal/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Strava connection",
}

var authConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect Strava as a secondary workout source",
	Long: `Open the Strava authorization page and store the resulting tokens.

Strava activities fill in workouts missing from your FIT files. Granting the
profile scope also lets the engine use the FTP from your Strava profile.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.cfg.ValidateStrava(); err != nil {
			return err
		}

		result, err := auth.Authenticate(cmd.Context(), app.oauthConfig(), os.Stdout)
		if err != nil {
			return err
		}
		if err := auth.Save(app.db, result); err != nil {
			return err
		}

		color.Green("✓ Connected Strava athlete %d", result.AthleteID)
		saved := store.Auth{Scope: result.Scope}
		if !saved.HasScope(auth.ProfileScope) {
			color.Yellow("⚠ Profile access not granted; the configured FTP will be used")
		}
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the Strava connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		saved, err := app.db.GetAuth()
		if errors.Is(err, store.ErrNoAuth) {
			color.Yellow("⚠ Strava not connected")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Athlete:  %d\n", saved.AthleteID)
		fmt.Printf("Scopes:   %s\n", strings.ReplaceAll(saved.Scope, ",", ", "))
		fmt.Printf("Expires:  %s\n", saved.ExpiresAt.In(app.loc).Format("2006-01-02 15:04"))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored Strava tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.db.DeleteAuth(); err != nil {
			return err
		}
		color.Green("✓ Strava disconnected")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authConnectCmd, authStatusCmd, authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
