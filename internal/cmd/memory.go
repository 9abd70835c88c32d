package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/researchpilot/researchpilot/internal/config"
	"github.com/researchpilot/researchpilot/internal/util"
)

var memoryCmd = &cobra.Command{
	Use:   "memory [session-id]",
	Short: "Show the stored records for a session",
	Args:  cobra.ExactArgs(1),
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

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := planner.Memory().RetrieveRelevant(args[0], "", limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no records")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n  Q: %s\n  R: %s\n",
				r.Timestamp.Format("2006-01-02 15:04"), r.ID,
				util.Truncate(r.Query, 80), util.Truncate(r.Response, 120))
		}
		return nil
	},
}

func init() {
	memoryCmd.Flags().Int("limit", 10, "maximum records to show")
	rootCmd.AddCommand(memoryCmd)
}
