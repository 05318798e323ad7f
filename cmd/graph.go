// Package cmd provides CLI commands for the citegraph application.
// This file implements the graph command for building citation graphs.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/adalundhe/citegraph/core/config"
	coreerrors "github.com/adalundhe/citegraph/core/errors"
	"github.com/adalundhe/citegraph/core/graph"
	"github.com/adalundhe/citegraph/core/render"
	"github.com/adalundhe/citegraph/core/scholar"
	"github.com/adalundhe/citegraph/core/ux"
	"github.com/spf13/cobra"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// GraphDefaultDepth bounds the breadth-first expansion.
	GraphDefaultDepth = 2

	// GraphDefaultWidths is the per-level width budget.
	GraphDefaultWidths = "4,2"

	// GraphRankingCutoff is how many top PageRank nodes the stats view
	// lists.
	GraphRankingCutoff = 10
)

// =============================================================================
// Graph Command Flags
// =============================================================================

var (
	graphMode            string
	graphDepth           int
	graphWidth           string
	graphInfluentialOnly bool
	graphSince           int
	graphUntil           int
	graphFetchLimit      int
	graphSort            string
	graphDensify         string
	graphFormat          string
	graphOutput          string
	graphNoOpen          bool
	graphStats           bool
)

// =============================================================================
// Graph Command
// =============================================================================

// graphCmd represents the graph command.
var graphCmd = &cobra.Command{
	Use:   "graph <title>",
	Short: "Build a citation graph around a publication",
	Long: `Build a citation graph by crawling references and citations around the
best title match, then write it as an interactive HTML page, Graphviz
DOT or JSON.

Examples:
  citegraph graph "Attention Is All You Need"
  citegraph graph --mode citations --depth 3 --width 6,3,2 "BERT"
  citegraph graph --influential-only=false --since 2018 "GPT-3"
  citegraph graph --format dot --no-open "ResNet"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVarP(&graphMode, "mode", "m", "all", "Traversal mode (references, citations, all)")
	graphCmd.Flags().IntVarP(&graphDepth, "depth", "d", GraphDefaultDepth, "Maximum expansion depth")
	graphCmd.Flags().StringVarP(&graphWidth, "width", "w", GraphDefaultWidths, "Per-level width budget as a comma list")
	graphCmd.Flags().BoolVar(&graphInfluentialOnly, "influential-only", true, "Keep only influential relations")
	graphCmd.Flags().IntVar(&graphSince, "since", 0, "Keep relations published in or after this year")
	graphCmd.Flags().IntVar(&graphUntil, "until", 0, "Keep relations published in or before this year")
	graphCmd.Flags().IntVar(&graphFetchLimit, "fetch-limit", scholar.DefaultFetchLimit, "Maximum raw records per relation retrieval")
	graphCmd.Flags().StringVar(&graphSort, "sort", "citation", "Primary sort dimension (citation, influential, year)")
	graphCmd.Flags().StringVar(&graphDensify, "densify", "references", "Densification direction (references, citations, both, off)")
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "html", "Output format (html, dot, json)")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", ".", "Output directory")
	graphCmd.Flags().BoolVar(&graphNoOpen, "no-open", false, "Skip opening the HTML artifact in a browser")
	graphCmd.Flags().BoolVar(&graphStats, "stats", false, "Print structural statistics after the build")
}

// =============================================================================
// Graph Execution
// =============================================================================

// runGraph executes the graph command.
func runGraph(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyGraphConfigFallbacks(cmd, cfg)

	mode, err := graph.ParseMode(graphMode)
	if err != nil {
		return err
	}
	widths, err := parseWidths(graphWidth)
	if err != nil {
		return err
	}
	sortBy, err := scholar.ParseSortKey(graphSort)
	if err != nil {
		return err
	}
	densify, err := graph.ParseDensifyMode(graphDensify)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(graphFormat)
	if err != nil {
		return err
	}

	logger := newLogger()
	client := newScholarClient(cfg, logger, coreerrors.RetryPolicy{
		MaxAttempts: cfg.Retry.GraphAttempts,
		BaseDelay:   cfg.Retry.BaseDelay.Std(),
	})
	cache, err := scholar.NewRelationCache(scholar.CacheConfig{
		Size:    cfg.Cache.Size,
		SortBy:  sortBy,
		Fetcher: client,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating relation cache: %w", err)
	}

	builder, err := graph.NewBuilder(graph.Config{
		Seeds:           client,
		Relations:       cache,
		Mode:            mode,
		MaxDepth:        graphDepth,
		Widths:          widths,
		InfluentialOnly: graphInfluentialOnly,
		SinceYear:       graphSince,
		UntilYear:       graphUntil,
		FetchLimit:      graphFetchLimit,
		Densify:         densify,
		NodeDelay:       cfg.API.NodeDelay.Std(),
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := interruptibleContext()
	defer cancel()

	ux.Title(fmt.Sprintf("Building %s graph for %q", mode, title))

	g, err := builder.Build(ctx, title)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var terr *coreerrors.TieredError
		if errors.As(err, &terr) && terr.Tier == coreerrors.TierFatal {
			ux.Error(fmt.Sprintf("%s, nothing to build", terr.Message))
			return nil
		}
		return err
	}
	if g.NodeCount() == 0 {
		ux.Warning("the graph came back empty, skipping export")
		return nil
	}

	stats := cache.Stats()
	logger.Debug("relation cache usage",
		slog.Int64("hits", stats.Hits),
		slog.Int64("misses", stats.Misses),
		slog.Int64("evictions", stats.Evictions),
	)

	if graphStats {
		printGraphStats(g)
	}

	path, err := render.Save(g, format, graphOutput, string(mode))
	if err != nil {
		return err
	}
	ux.Success(fmt.Sprintf("graph with %d nodes and %d edges written to %s", g.NodeCount(), g.EdgeCount(), path))

	if format == render.FormatHTML && !graphNoOpen {
		if err := render.OpenBrowser(path); err != nil {
			ux.Warning(fmt.Sprintf("could not open browser: %v", err))
		}
	}
	return nil
}

// applyGraphConfigFallbacks fills flags the user left untouched from the
// layered configuration.
func applyGraphConfigFallbacks(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if !flags.Changed("mode") && cfg.Crawl.Mode != "" {
		graphMode = cfg.Crawl.Mode
	}
	if !flags.Changed("depth") && cfg.Crawl.MaxDepth > 0 {
		graphDepth = cfg.Crawl.MaxDepth
	}
	if !flags.Changed("width") && len(cfg.Crawl.Widths) > 0 {
		graphWidth = formatWidths(cfg.Crawl.Widths)
	}
	if !flags.Changed("influential-only") {
		graphInfluentialOnly = cfg.Crawl.InfluentialOnly
	}
	if !flags.Changed("fetch-limit") && cfg.Crawl.FetchLimit > 0 {
		graphFetchLimit = cfg.Crawl.FetchLimit
	}
	if !flags.Changed("format") && cfg.Output.Format != "" {
		graphFormat = cfg.Output.Format
	}
	if !flags.Changed("output") && cfg.Output.Dir != "" {
		graphOutput = cfg.Output.Dir
	}
	if !flags.Changed("no-open") {
		graphNoOpen = !cfg.Output.OpenBrowser
	}
}

// printGraphStats prints the structural summary.
func printGraphStats(g *graph.Graph) {
	summary := graph.Summarize(g, GraphRankingCutoff)

	ux.Title("Graph statistics")
	ux.Info(fmt.Sprintf("nodes: %d  edges: %d", summary.Nodes, summary.Edges))
	ux.Info(fmt.Sprintf("mean degree: %.2f  stddev: %.2f", summary.MeanDegree, summary.StdDevDegree))
	for _, layer := range summary.Layers {
		ux.Info(fmt.Sprintf("layer %d: %d nodes", layer.Layer, layer.Count))
	}

	ux.Muted("top ranked publications:")
	for i, ranked := range summary.TopRanked {
		ux.Info(fmt.Sprintf("%2d. %.4f  %s", i+1, ranked.Score, ranked.Node.Title))
	}
}

// =============================================================================
// Width Parsing
// =============================================================================

// parseWidths parses a comma-separated width budget.
func parseWidths(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	widths := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid width %q", part)
		}
		if w < 1 {
			return nil, fmt.Errorf("width must be positive, got %d", w)
		}
		widths = append(widths, w)
	}
	if len(widths) == 0 {
		return nil, fmt.Errorf("at least one width is required")
	}
	return widths, nil
}

// formatWidths renders a width slice back into flag syntax.
func formatWidths(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, ",")
}
