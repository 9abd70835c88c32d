package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/researchpilot/researchpilot"
	"github.com/researchpilot/researchpilot/internal/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session: queries share one memory context",
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
		if sessionID == "" {
			sessionID = researchpilot.NewSessionID()
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "session %s — type a research question, 'exit' to quit\n", sessionID)

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			switch line {
			case "":
				continue
			case "exit", "quit":
				return nil
			}

			result, err := planner.Run(cmd.Context(), sessionID, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "\n%s\n\n", result.Response)
			for _, note := range result.Diagnostics {
				fmt.Fprintf(out, "note: %s\n", note)
			}
		}
	},
}

func init() {
	chatCmd.Flags().StringP("session", "s", "", "session id to resume (empty starts a new session)")
	rootCmd.AddCommand(chatCmd)
}
