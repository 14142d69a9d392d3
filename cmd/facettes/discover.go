package main

import (
	"github.com/spf13/cobra"

	"facettes/internal/analysis"
	"facettes/internal/catalog"
	ferrors "facettes/internal/errors"
)

var discoverFormat string

var discoverCmd = &cobra.Command{
	Use:   "discover <path> <gender>",
	Short: "Find autocomplete suggestions that hint at missing facet values",
	Long: `Probe autocomplete with "<category> <gender>" and common facet words,
and list the suggestions whose words are not yet catalog values.

Only the autocomplete provider is called; no API key is needed.`,
	Args: cobra.ExactArgs(2),
	Run:  runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&discoverFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	cat, err := env.loadCatalog()
	if err != nil {
		exitWithError(err)
	}

	path := catalog.JoinPath(catalog.SplitPath(args[0])...)
	gender := args[1]
	node, err := cat.ResolveNode(path)
	if err != nil {
		exitWithError(ferrors.Wrap(ferrors.ValidationError, "unknown category path", err))
	}
	if !node.HasGenre(gender) {
		exitWithError(ferrors.Newf(ferrors.ValidationError, "unknown gender %q for %q", gender, path))
	}

	gw, err := env.newGateway()
	if err != nil {
		exitWithError(err)
	}
	found, err := analysis.NewDiscoverer(gw, env.logger).Discover(cmd.Context(), path, gender, node.Facets)
	if err != nil {
		exitWithError(err)
	}
	if found == nil {
		found = []analysis.Discovery{}
	}
	printResponse(&DiscoverResponseCLI{CategoryPath: path, Gender: gender, Discoveries: found}, discoverFormat)
}
