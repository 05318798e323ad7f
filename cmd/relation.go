// Package cmd provides CLI commands for the citegraph application.
// This file implements the relation command for listing references and
// citations of a single publication.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adalundhe/citegraph/core/config"
	coreerrors "github.com/adalundhe/citegraph/core/errors"
	"github.com/adalundhe/citegraph/core/export"
	"github.com/adalundhe/citegraph/core/scholar"
	"github.com/adalundhe/citegraph/core/ux"
	"github.com/spf13/cobra"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// RelationDefaultResults is how many records the table shows.
	RelationDefaultResults = 10
)

// =============================================================================
// Relation Command Flags
// =============================================================================

var (
	relationFind            string
	relationResults         int
	relationSort            string
	relationInfluentialOnly bool
	relationSince           int
	relationUntil           int
	relationFetchLimit      int
	relationOutput          string
	relationNoSave          bool
)

// =============================================================================
// Relation Command
// =============================================================================

// relationCmd represents the relation command.
var relationCmd = &cobra.Command{
	Use:   "relation <title>",
	Short: "List references or citations of a publication",
	Long: `Resolve the best title match and list its references or citations,
sorted by the chosen dimension, with a CSV export alongside.

Examples:
  citegraph relation "Attention Is All You Need"
  citegraph relation --find citations --results 25 "BERT"
  citegraph relation --sort year --influential-only "ResNet"
  citegraph relation --no-save "GPT-3"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRelation,
}

func init() {
	rootCmd.AddCommand(relationCmd)

	relationCmd.Flags().StringVarP(&relationFind, "find", "f", "references", "Relation direction (references, citations)")
	relationCmd.Flags().IntVarP(&relationResults, "results", "n", RelationDefaultResults, "Number of records the table shows")
	relationCmd.Flags().StringVar(&relationSort, "sort", "citation", "Primary sort dimension (citation, influential, year)")
	relationCmd.Flags().BoolVar(&relationInfluentialOnly, "influential-only", false, "Keep only influential relations")
	relationCmd.Flags().IntVar(&relationSince, "since", 0, "Keep relations published in or after this year")
	relationCmd.Flags().IntVar(&relationUntil, "until", 0, "Keep relations published in or before this year")
	relationCmd.Flags().IntVar(&relationFetchLimit, "fetch-limit", scholar.DefaultFetchLimit, "Maximum raw records per relation retrieval")
	relationCmd.Flags().StringVarP(&relationOutput, "output", "o", ".", "Output directory for the CSV export")
	relationCmd.Flags().BoolVar(&relationNoSave, "no-save", false, "Skip the CSV export")
}

// =============================================================================
// Relation Execution
// =============================================================================

// runRelation executes the relation command.
func runRelation(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyRelationConfigFallbacks(cmd, cfg)

	relType, err := scholar.ParseRelationType(relationFind)
	if err != nil {
		return err
	}
	sortBy, err := scholar.ParseSortKey(relationSort)
	if err != nil {
		return err
	}
	if relationResults < 1 {
		return fmt.Errorf("results must be positive, got %d", relationResults)
	}

	logger := newLogger()
	client := newScholarClient(cfg, logger, coreerrors.RetryPolicy{
		MaxAttempts: cfg.Retry.LookupAttempts,
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

	ctx, cancel := interruptibleContext()
	defer cancel()

	seed, err := client.SearchBestMatch(ctx, title)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var terr *coreerrors.TieredError
		if errors.As(err, &terr) && terr.Tier == coreerrors.TierFatal {
			ux.Error(terr.Message)
			return nil
		}
		return err
	}

	entries, err := cache.Get(ctx, scholar.RelationQuery{
		PaperID:         seed.ID,
		Type:            relType,
		InfluentialOnly: relationInfluentialOnly,
		SinceYear:       relationSince,
		UntilYear:       relationUntil,
		Limit:           relationFetchLimit,
	})
	if err != nil {
		return err
	}

	display := entries
	if len(display) > relationResults {
		display = display[:relationResults]
	}

	ux.Title(fmt.Sprintf("%s of %q", relType, seed.Title))
	if len(entries) == 0 {
		ux.Warning("no matching relation records")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), ux.RelationTable(display))

	if relationNoSave {
		return nil
	}
	path, err := export.SaveRelationsCSV(relationOutput, relType, seed.Title, entries)
	if err != nil {
		return err
	}
	ux.Success(fmt.Sprintf("%d records exported to %s", len(entries), path))
	return nil
}

// applyRelationConfigFallbacks fills flags the user left untouched from
// the layered configuration.
func applyRelationConfigFallbacks(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if !flags.Changed("fetch-limit") && cfg.Crawl.FetchLimit > 0 {
		relationFetchLimit = cfg.Crawl.FetchLimit
	}
	if !flags.Changed("output") && cfg.Output.Dir != "" {
		relationOutput = cfg.Output.Dir
	}
}
