// Package cmd implements the researchpilot command line interface.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/researchpilot/researchpilot/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "researchpilot",
	Short: "Multi-stage research planning assistant",
	Long: `ResearchPilot routes research questions through specialist stages
(literature analysis, hypothesis generation, experiment design) and
synthesizes the results into one answer, remembering prior queries
per session.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/researchpilot/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// A broken config file surfaces on first Load, not here.
	_ = config.Init(viper.GetString("config"))
}
