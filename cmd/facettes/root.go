package main

import (
	"github.com/spf13/cobra"

	"facettes/internal/version"
)

var (
	// dataDirFlag is the CLI --data-dir flag value
	dataDirFlag string
	// catalogFlag overrides catalogPath from the configuration
	catalogFlag string
	verbosity   int
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "facettes",
	Short: "facettes - SEO facet qualification",
	Long: `facettes decides which e-commerce facet pages deserve a dedicated,
indexable landing page. It expands catalog facets into search queries,
collects demand metrics and autocomplete presence, scores each facet and
facet combination, tracks trends between runs and flags overlapping facets.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"Data directory holding config, catalog, database and logs (default: $FACETTES_DATA_DIR or ./.facettes)")
	rootCmd.PersistentFlags().StringVar(&catalogFlag, "catalog", "",
		"Catalog file (json, yaml or toml), relative to the data directory")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase console log level (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Silence console logs")
}
