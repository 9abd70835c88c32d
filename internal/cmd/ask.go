package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/researchpilot/researchpilot/internal/config"
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Run one research query through the pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		planner, cleanup, err := buildPlanner(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		sessionID, _ := cmd.Flags().GetString("session")
		verbose, _ := cmd.Flags().GetBool("verbose")

		result, err := planner.Run(cmd.Context(), sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Response)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "\n[session %s | category %s | %s]\n",
				result.SessionID, result.Category, result.Elapsed.Round(time.Millisecond))
			for _, note := range result.Diagnostics {
				fmt.Fprintf(cmd.OutOrStdout(), "note: %s\n", note)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringP("session", "s", "", "session id to continue (empty starts a new session)")
	askCmd.Flags().BoolP("verbose", "v", false, "print routing and diagnostic details")
	rootCmd.AddCommand(askCmd)
}
