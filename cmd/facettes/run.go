package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"facettes/internal/analysis"
	"facettes/internal/catalog"
	ferrors "facettes/internal/errors"
	"facettes/internal/metrics"
)

var (
	runFormat  string
	runFacets  []string
	runMetrics bool
)

var runCmd = &cobra.Command{
	Use:   "run [path] [gender]",
	Short: "Qualify the facets of a category",
	Long: `Qualify the facets and facet combinations of a category for one gender.

Without arguments every category path and gender of the catalog is analysed.
The path uses " > " between segments:

  facettes run "vetements > robes" femme
  facettes run "vetements > robes" femme --facet couleur=rouge,noire --facet style=boheme

Each run is saved to the history; trends compare against the previous run.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 || len(args) > 2 {
			return fmt.Errorf("expected either no arguments or <path> <gender>")
		}
		return nil
	},
	Run: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", "human", "Output format (json, human)")
	runCmd.Flags().StringArrayVar(&runFacets, "facet", nil, "Restrict to facet values, as type=v1,v2 (repeatable)")
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false, "Expose Prometheus metrics while the run is in progress")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	ctx := cmd.Context()

	selection, err := catalog.ParseSelection(runFacets)
	if err != nil {
		exitWithError(err)
	}
	if len(selection) > 0 && len(args) == 0 {
		exitWithError(ferrors.New(ferrors.ValidationError, "--facet requires a category path and gender"))
	}

	runner, err := env.newRunner()
	if err != nil {
		exitWithError(err)
	}

	var req analysis.Request
	if len(args) == 2 {
		req = analysis.Request{Path: catalog.JoinPath(catalog.SplitPath(args[0])...), Gender: args[1], Selection: selection}
		if _, err := runner.Resolve(req); err != nil {
			exitWithError(err)
		}
	}
	if err := env.cfg.RequireCredentials(); err != nil {
		exitWithError(err)
	}

	if runMetrics {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := metrics.Serve(metricsCtx, env.cfg.Metrics.Addr, env.cfg.Metrics.Path, env.logger); err != nil {
				env.logger.Warn("Metrics server stopped", "error", err.Error())
			}
		}()
	}

	resp := &RunResponseCLI{}
	if len(args) == 2 {
		result, err := runner.Run(ctx, req)
		if err != nil {
			exitWithError(err)
		}
		resp.Results = append(resp.Results, result)
	} else {
		results, err := runner.RunAll(ctx)
		resp.Results = results
		if err != nil {
			printResponse(resp, runFormat)
			exitWithError(err)
		}
	}

	env.logger.Debug("Provider pacing", "limiter", env.limiter.Stats())
	printResponse(resp, runFormat)
}

// printResponse formats resp and writes it to stdout.
func printResponse(resp interface{}, format string) {
	output, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
