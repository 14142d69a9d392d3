package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"facettes/internal/config"
	ferrors "facettes/internal/errors"
	"facettes/internal/paths"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialise the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	Args:  cobra.NoArgs,
	Run:   runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the data directory",
	Args:  cobra.NoArgs,
	Run:   runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config.json")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	env := mustGetEnv()

	shown := *env.cfg
	if shown.Semrush.APIKey != "" {
		shown.Semrush.APIKey = "********"
	}
	printResponse(&shown, string(FormatJSON))
}

func runConfigInit(cmd *cobra.Command, args []string) {
	dataDir, err := paths.EnsureDir(paths.ResolveDataDir(dataDirFlag))
	if err != nil {
		exitWithError(err)
	}
	target := filepath.Join(dataDir, "config.json")
	if paths.Exists(target) && !configForce {
		exitWithError(ferrors.Newf(ferrors.ConfigurationError, "%s already exists (use --force to overwrite)", target))
	}

	if err := config.DefaultConfig().Save(dataDir); err != nil {
		exitWithError(err)
	}
	fmt.Printf("Wrote %s\n", target)
}
