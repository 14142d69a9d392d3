package main

import (
	"github.com/spf13/cobra"

	"facettes/internal/catalog"
	ferrors "facettes/internal/errors"
)

var (
	catalogFormat string
	selectClear   bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the facet catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List category paths and their genres",
	Args:  cobra.NoArgs,
	Run:   runCatalogList,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Show the genres, facets and subcategories of a category",
	Args:  cobra.ExactArgs(1),
	Run:   runCatalogShow,
}

var catalogSelectCmd = &cobra.Command{
	Use:   "select <path> <gender> [type=v1,v2 ...]",
	Short: "Store the facet values analysed by default for a category",
	Long: `Store the facet values 'facettes run' analyses for a category and gender.

  facettes catalog select "vetements > robes" femme couleur=rouge,noire style=boheme
  facettes catalog select "vetements > robes" femme --clear

Types left out of the selection are not analysed.`,
	Args: cobra.MinimumNArgs(2),
	Run:  runCatalogSelect,
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogFormat, "format", "human", "Output format (json, human)")
	catalogSelectCmd.Flags().BoolVar(&selectClear, "clear", false, "Remove the stored selection")
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogSelectCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	cat, err := env.loadCatalog()
	if err != nil {
		exitWithError(err)
	}

	resp := &CatalogListCLI{Catalog: env.catalogPath(), Entries: []CatalogEntryCLI{}}
	for _, path := range cat.ListPaths() {
		node, err := cat.ResolveNode(path)
		if err != nil {
			exitWithError(err)
		}
		resp.Entries = append(resp.Entries, CatalogEntryCLI{
			Path:   path,
			Depth:  catalog.Depth(path),
			Genres: node.Genres,
			Facets: len(node.Facets),
		})
	}
	printResponse(resp, catalogFormat)
}

func runCatalogShow(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	cat, err := env.loadCatalog()
	if err != nil {
		exitWithError(err)
	}

	path := catalog.JoinPath(catalog.SplitPath(args[0])...)
	node, err := cat.ResolveNode(path)
	if err != nil {
		exitWithError(err)
	}
	printResponse(&CatalogShowCLI{Path: path, Node: node}, catalogFormat)
}

func runCatalogSelect(cmd *cobra.Command, args []string) {
	env := mustGetEnv()
	if env.cfg.SelectionsPath == "" {
		exitWithError(ferrors.New(ferrors.ConfigurationError, "selectionsPath is not configured"))
	}

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

	var sel catalog.Selection
	if !selectClear {
		sel, err = catalog.ParseSelection(args[2:])
		if err != nil {
			exitWithError(err)
		}
		if err := catalog.ValidateSelection(node.Facets, sel); err != nil {
			exitWithError(err)
		}
	}

	selections, err := env.loadSelections()
	if err != nil {
		exitWithError(err)
	}
	selections.Set(path, gender, sel)
	if err := selections.Save(env.selectionsPath()); err != nil {
		exitWithError(err)
	}

	env.logger.Info("Selection saved", "category", path, "gender", gender, "types", len(sel))
	printResponse(&CatalogShowCLI{Path: path, Node: &catalog.Node{
		Name:   node.Name,
		Genres: []string{gender},
		Facets: sel.Apply(node.Facets),
	}}, catalogFormat)
}
