package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	doctorFormat  string
	doctorOffline bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration, catalog, storage and provider access",
	Long: `Diagnose facettes configuration and environment issues.

The provider checks issue one demand query and one autocomplete query for
"test". Use --offline to skip them.`,
	Args: cobra.NoArgs,
	Run:  runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "human", "Output format (json, human)")
	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false, "Skip provider checks")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) {
	start := time.Now()
	env := mustGetEnv()
	ctx := cmd.Context()
	resp := newDoctorResponse()

	resp.add("config", "ok", "data directory "+env.dataDir)

	if err := env.cfg.RequireCredentials(); err != nil {
		resp.add("credentials", "fail", "SEMRUSH_API_KEY is not set")
	} else {
		resp.add("credentials", "ok", "SEMrush API key present")
	}

	if cat, err := env.loadCatalog(); err != nil {
		resp.add("catalog", "fail", err.Error())
	} else {
		resp.add("catalog", "ok", fmt.Sprintf("%d category paths in %s", len(cat.ListPaths()), env.catalogPath()))
	}

	if selections, err := env.loadSelections(); err != nil {
		resp.add("selections", "fail", err.Error())
	} else {
		resp.add("selections", "ok", fmt.Sprintf("%d categories with stored selections", len(selections)))
	}

	checkStorage(ctx, env, resp)

	if doctorOffline {
		resp.add("semrush", "warn", "skipped (--offline)")
		resp.add("suggest", "warn", "skipped (--offline)")
	} else {
		checkProviders(ctx, env, resp)
	}

	printResponse(resp, doctorFormat)
	if doctorFormat == string(FormatHuman) {
		fmt.Printf("\n(Diagnostics took %dms)\n", time.Since(start).Milliseconds())
	}

	// Exit with non-zero if unhealthy
	if !resp.Healthy {
		closeEnv()
		os.Exit(1)
	}
}

func checkStorage(ctx context.Context, env *environment, resp *DoctorResponseCLI) {
	if _, err := env.openHistory(); err != nil {
		resp.add("storage", "fail", err.Error())
		return
	}
	runs, err := env.history.Count(ctx)
	if err != nil {
		resp.add("storage", "fail", err.Error())
		return
	}
	store, err := env.openCache()
	if err != nil {
		resp.add("storage", "fail", err.Error())
		return
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		resp.add("storage", "fail", err.Error())
		return
	}
	resp.add("storage", "ok", fmt.Sprintf("%s: %d runs, %d cached answers", env.db.Path(), runs, stats.EntryCount))
}

// checkProviders calls each provider once, bypassing cache and limiter.
func checkProviders(ctx context.Context, env *environment, resp *DoctorResponseCLI) {
	const probe = "test"

	if env.cfg.Semrush.APIKey == "" {
		resp.add("semrush", "warn", "skipped (no API key)")
	} else if m, err := env.demandClient().Phrase(ctx, probe); err != nil {
		resp.add("semrush", "fail", err.Error())
	} else {
		resp.add("semrush", "ok", fmt.Sprintf("%q: volume %d, cpc %.2f, kd %d", probe, m.Volume, m.CPC, m.KD))
	}

	if suggestions, err := env.suggestClient().Suggestions(ctx, probe); err != nil {
		resp.add("suggest", "fail", err.Error())
	} else {
		resp.add("suggest", "ok", fmt.Sprintf("%q: %d suggestions", probe, len(suggestions)))
	}
}
