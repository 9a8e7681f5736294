package main

import (
	"readiness/internal/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server on stdin/stdout so AI assistants
can read your readiness. The server is read-only; run 'readiness update'
to refresh scores.

CLIENT CONFIGURATION:

  {
    "mcpServers": {
      "readiness": { "command": "readiness", "args": ["mcp"] }
    }
  }

AVAILABLE TOOLS:

  today_score            Today's readiness, load, form and trend
  recent_scores          Daily scores for the last N days
  today_recommendation   Suggested training level and TSS range
  day_score              Breakdown for one day

AVAILABLE RESOURCES:

  readiness://today      Today's score with the recommendation`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol; logs go to stderr
		app, err := openApp(cmd.Context(), appOptions{quiet: true})
		if err != nil {
			return err
		}
		defer app.Close()

		return mcp.NewServer(app.Queries(), version).Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
