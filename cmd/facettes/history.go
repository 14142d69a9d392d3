package main

import (
	"time"

	"github.com/spf13/cobra"

	"facettes/internal/analysis"
	"facettes/internal/catalog"
)

var (
	historyFormat string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history <path> <gender>",
	Short: "List saved runs of a category, newest first",
	Args:  cobra.ExactArgs(2),
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	history, err := env.openHistory()
	if err != nil {
		exitWithError(err)
	}

	path := catalog.JoinPath(catalog.SplitPath(args[0])...)
	runs, err := history.Runs(cmd.Context(), path, args[1], historyLimit)
	if err != nil {
		exitWithError(err)
	}

	resp := &HistoryResponseCLI{CategoryPath: path, Gender: args[1], Runs: []HistoryRunCLI{}}
	for _, r := range runs {
		resp.Runs = append(resp.Runs, HistoryRunCLI{
			RunID:       r.RunID,
			GeneratedAt: r.GeneratedAt.Local().Format(time.DateTime),
			Overview:    analysis.Summarize(r),
		})
	}
	printResponse(resp, historyFormat)
}
