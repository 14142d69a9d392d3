package main

import (
	"github.com/spf13/cobra"

	ferrors "facettes/internal/errors"
)

var cacheFormat string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the provider result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Remove expired entries and report the cache size",
	Args:  cobra.NoArgs,
	Run:   runCacheStats,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge [prefix]",
	Short: "Delete cached entries, optionally only keys starting with prefix",
	Long: `Delete cached provider responses. Keys look like

  semrush:fr:robe femme rouge
  suggest:fr:fr:robe femme rouge

so "facettes cache purge semrush:" drops every demand measurement.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCachePurge,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheFormat, "format", "human", "Output format (json, human)")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	store, err := env.openCache()
	if err != nil {
		exitWithError(err)
	}

	ctx := cmd.Context()
	expired, err := store.CleanupExpired(ctx)
	if err != nil {
		exitWithError(ferrors.Wrap(ferrors.CacheError, "failed to remove expired entries", err))
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		exitWithError(ferrors.Wrap(ferrors.CacheError, "failed to read cache stats", err))
	}
	printResponse(&CacheStatsCLI{Database: env.db.Path(), Stats: stats, Expired: expired}, cacheFormat)
}

func runCachePurge(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	store, err := env.openCache()
	if err != nil {
		exitWithError(err)
	}

	var prefix string
	if len(args) == 1 {
		prefix = args[0]
	}
	removed, err := store.Purge(cmd.Context(), prefix)
	if err != nil {
		exitWithError(ferrors.Wrap(ferrors.CacheError, "failed to purge cache", err))
	}
	env.logger.Info("Cache purged", "prefix", prefix, "removed", removed)
	printResponse(&CachePurgeCLI{Prefix: prefix, Removed: removed}, cacheFormat)
}
