package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"facettes/internal/analysis"
	"facettes/internal/cache"
	"facettes/internal/catalog"
	"facettes/internal/trend"
	"facettes/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// RunResponseCLI holds the results of one or more runs.
type RunResponseCLI struct {
	Results []*analysis.AnalysisResult `json:"results"`
}

// CatalogListCLI lists the category paths of the catalog.
type CatalogListCLI struct {
	Catalog string            `json:"catalog"`
	Entries []CatalogEntryCLI `json:"entries"`
}

// CatalogEntryCLI is one category path.
type CatalogEntryCLI struct {
	Path   string   `json:"path"`
	Depth  int      `json:"depth"`
	Genres []string `json:"genres"`
	Facets int      `json:"facets"`
}

// CatalogShowCLI describes one category.
type CatalogShowCLI struct {
	Path string        `json:"path"`
	Node *catalog.Node `json:"node"`
}

// HistoryResponseCLI lists saved runs, newest first.
type HistoryResponseCLI struct {
	CategoryPath string          `json:"categoryPath"`
	Gender       string          `json:"gender"`
	Runs         []HistoryRunCLI `json:"runs"`
}

// HistoryRunCLI summarises one saved run.
type HistoryRunCLI struct {
	RunID       string            `json:"runId"`
	GeneratedAt string            `json:"generatedAt"`
	Overview    analysis.Overview `json:"overview"`
}

// OverviewResponseCLI summarises the latest run of every path and gender.
type OverviewResponseCLI struct {
	Overviews []analysis.Overview `json:"overviews"`
}

// DiscoverResponseCLI lists autocomplete suggestions missing from the catalog.
type DiscoverResponseCLI struct {
	CategoryPath string               `json:"categoryPath"`
	Gender       string               `json:"gender"`
	Discoveries  []analysis.Discovery `json:"discoveries"`
}

// CacheStatsCLI reports the result cache size.
type CacheStatsCLI struct {
	Database string      `json:"database"`
	Stats    cache.Stats `json:"stats"`
	Expired  int         `json:"expiredRemoved"`
}

// CachePurgeCLI reports a purge.
type CachePurgeCLI struct {
	Prefix  string `json:"prefix,omitempty"`
	Removed int    `json:"removed"`
}

// DoctorResponseCLI reports the diagnostics.
type DoctorResponseCLI struct {
	Version string           `json:"version"`
	Healthy bool             `json:"healthy"`
	Checks  []DoctorCheckCLI `json:"checks"`
}

// DoctorCheckCLI is one diagnostic.
type DoctorCheckCLI struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *RunResponseCLI:
		return formatRunHuman(v), nil
	case *CatalogListCLI:
		return formatCatalogListHuman(v), nil
	case *CatalogShowCLI:
		return formatCatalogShowHuman(v), nil
	case *HistoryResponseCLI:
		return formatHistoryHuman(v), nil
	case *OverviewResponseCLI:
		return formatOverviewHuman(v), nil
	case *DiscoverResponseCLI:
		return formatDiscoverHuman(v), nil
	case *CacheStatsCLI:
		return formatCacheStatsHuman(v), nil
	case *CachePurgeCLI:
		return formatCachePurgeHuman(v), nil
	case *DoctorResponseCLI:
		return formatDoctorHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatRunHuman(resp *RunResponseCLI) string {
	var b strings.Builder
	for i, r := range resp.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		formatResultHuman(&b, r)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatResultHuman(b *strings.Builder, r *analysis.AnalysisResult) {
	b.WriteString(fmt.Sprintf("%s / %s\n", r.CategoryPath, r.Gender))
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("Run %s at %s\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05")))

	current := analysis.Level("")
	r.Each(func(level analysis.Level, key string, o *analysis.FacetOutcome) bool {
		if level != current {
			current = level
			if level == analysis.LevelSimple {
				b.WriteString("\nFacets:\n")
			} else {
				b.WriteString("\nCombinations:\n")
			}
		}
		b.WriteString(fmt.Sprintf("  %-28s %-10s %-8s %-14s legacy %s%s\n",
			key, o.Score, o.Decision, o.Zone, o.LegacyLabel(), trendSuffix(o.Trend)))
		b.WriteString(fmt.Sprintf("    volume %d (median %.1f)  suggest %.0f%%  cpc %.2f  kd %.1f\n",
			o.Metrics.VolumeTotal, o.Metrics.VolumeMedian, o.Metrics.SuggestRate*100,
			o.Metrics.CPCWeightedMean, o.Metrics.KDMean))
		b.WriteString("    " + o.Recommendation + "\n")
		return true
	})

	if len(r.Alerts) > 0 {
		b.WriteString("\nCannibalisation:\n")
		for _, a := range r.Alerts {
			b.WriteString(fmt.Sprintf("  %s <> %s  similarity %.3f\n", a.FacetA, a.FacetB, a.Similarity))
			if len(a.CommonQueries) > 0 {
				b.WriteString("    common: " + strings.Join(a.CommonQueries, ", ") + "\n")
			}
			b.WriteString("    " + a.Recommendation + "\n")
		}
	}
}

func trendSuffix(t *trend.Trend) string {
	if t == nil {
		return ""
	}
	if t.Volume.Icon == trend.New {
		return "  (" + t.Volume.Icon.Symbol() + ")"
	}
	return fmt.Sprintf("  volume %s %+.1f%%  score %s %+.1f%%",
		t.Volume.Icon.Symbol(), t.Volume.Pct, t.Score.Icon.Symbol(), t.Score.Pct)
}

func formatCatalogListHuman(resp *CatalogListCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Catalog: %s\n\n", resp.Catalog))
	for _, e := range resp.Entries {
		indent := strings.Repeat("  ", e.Depth)
		b.WriteString(fmt.Sprintf("%s%s  [%s]  %d facets\n", indent, e.Path, strings.Join(e.Genres, ", "), e.Facets))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCatalogShowHuman(resp *CatalogShowCLI) string {
	var b strings.Builder
	b.WriteString(resp.Path + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("Genres: " + strings.Join(resp.Node.Genres, ", ") + "\n\nFacets:\n")
	for _, f := range resp.Node.Facets {
		b.WriteString(fmt.Sprintf("  %-16s %s\n", f.Type, strings.Join(f.Values, ", ")))
	}
	if len(resp.Node.Subcategories) > 0 {
		b.WriteString("\nSubcategories:\n")
		for _, sub := range resp.Node.Subcategories {
			b.WriteString("  " + catalog.JoinPath(resp.Path, sub.Name) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHistoryHuman(resp *HistoryResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("History of %s / %s\n\n", resp.CategoryPath, resp.Gender))
	if len(resp.Runs) == 0 {
		b.WriteString("No saved runs.")
		return b.String()
	}
	for _, r := range resp.Runs {
		o := r.Overview
		b.WriteString(fmt.Sprintf("  %s  %s  %d facets, %d INDEX, mean %.1f, volume %d\n",
			r.GeneratedAt, r.RunID, o.Facets, o.Indexed, o.MeanScore, o.VolumeTotal))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatOverviewHuman(resp *OverviewResponseCLI) string {
	if len(resp.Overviews) == 0 {
		return "No saved runs. Run 'facettes run' first."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-36s %-8s %6s %6s %8s %8s %10s  %s\n",
		"CATEGORY", "GENDER", "FACETS", "INDEX", "NOINDEX", "MEAN", "VOLUME", "BEST QUICK WIN"))
	for _, o := range resp.Overviews {
		best := o.BestQuickWin
		if best == "" {
			best = "-"
		}
		b.WriteString(fmt.Sprintf("%-36s %-8s %6d %6d %8d %8.1f %10d  %s\n",
			o.CategoryPath, o.Gender, o.Facets, o.Indexed, o.NotIndexed, o.MeanScore, o.VolumeTotal, best))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDiscoverHuman(resp *DiscoverResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Discovery for %s / %s\n\n", resp.CategoryPath, resp.Gender))
	if len(resp.Discoveries) == 0 {
		b.WriteString("No new facet values suggested.")
		return b.String()
	}
	for _, d := range resp.Discoveries {
		b.WriteString(fmt.Sprintf("  %-40s (from %q)\n", d.Suggestion, d.Source))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCacheStatsHuman(resp *CacheStatsCLI) string {
	var b strings.Builder
	b.WriteString("Result cache\n")
	b.WriteString(fmt.Sprintf("  Database: %s\n", resp.Database))
	b.WriteString(fmt.Sprintf("  Entries:  %d\n", resp.Stats.EntryCount))
	b.WriteString(fmt.Sprintf("  Size:     %d bytes\n", resp.Stats.TotalSizeBytes))
	b.WriteString(fmt.Sprintf("  Expired entries removed: %d", resp.Expired))
	return b.String()
}

func formatCachePurgeHuman(resp *CachePurgeCLI) string {
	if resp.Prefix == "" {
		return fmt.Sprintf("Removed %d cache entries", resp.Removed)
	}
	return fmt.Sprintf("Removed %d cache entries with prefix %q", resp.Removed, resp.Prefix)
}

func formatDoctorHuman(resp *DoctorResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("facettes %s doctor\n", resp.Version))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	for _, c := range resp.Checks {
		icon := "✓"
		switch c.Status {
		case "warn":
			icon = "!"
		case "fail":
			icon = "✗"
		}
		b.WriteString(fmt.Sprintf("  %s %-12s %s\n", icon, c.Name, c.Message))
	}
	if resp.Healthy {
		b.WriteString("\nAll checks passed.")
	} else {
		b.WriteString("\nSome checks failed.")
	}
	return b.String()
}

func newDoctorResponse() *DoctorResponseCLI {
	return &DoctorResponseCLI{Version: version.Info(), Healthy: true}
}

func (d *DoctorResponseCLI) add(name, status, message string) {
	d.Checks = append(d.Checks, DoctorCheckCLI{Name: name, Status: status, Message: message})
	if status == "fail" {
		d.Healthy = false
	}
}
