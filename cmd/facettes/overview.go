package main

import (
	"github.com/spf13/cobra"

	"facettes/internal/analysis"
)

var overviewFormat string

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Summarise the latest run of every category and gender",
	Args:  cobra.NoArgs,
	Run:   runOverview,
}

func init() {
	overviewCmd.Flags().StringVar(&overviewFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	history, err := env.openHistory()
	if err != nil {
		exitWithError(err)
	}

	latest, err := history.Latest(cmd.Context())
	if err != nil {
		exitWithError(err)
	}
	overviews := analysis.SummarizeAll(latest)
	if overviews == nil {
		overviews = []analysis.Overview{}
	}
	printResponse(&OverviewResponseCLI{Overviews: overviews}, overviewFormat)
}
