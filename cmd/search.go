// Package cmd provides CLI commands for the citegraph application.
// This file implements the search command, which delegates ranked
// Google Scholar queries to the sortgs tool.
package cmd

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/adalundhe/citegraph/core/ux"
	"github.com/spf13/cobra"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// SearchDefaultResults is the default number of search hits.
	SearchDefaultResults = 10

	// SearchDefaultSort is sortgs's citation ranking.
	SearchDefaultSort = "Citations"

	// sortgsBinary is the delegated search tool.
	sortgsBinary = "sortgs"
)

// =============================================================================
// Search Command Flags
// =============================================================================

var (
	searchResults int
	searchSortBy  string
	searchSince   int
	searchUntil   int
	searchOutput  string
	searchNoSave  bool
)

// =============================================================================
// Search Command
// =============================================================================

// searchCmd represents the search command.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Google Scholar ranked by citations",
	Long: `Run a ranked Google Scholar search through the sortgs tool and save the
results as CSV.

Requires sortgs on PATH (pip install sortgs).

Examples:
  citegraph search "graph neural networks"
  citegraph search -n 50 --sort-by cit/year "transformers"
  citegraph search --since 2018 --until 2023 "diffusion models"
  citegraph search --no-save "state space models"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScholarSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchResults, "results", "n", SearchDefaultResults, "Number of search hits to rank")
	searchCmd.Flags().StringVar(&searchSortBy, "sort-by", SearchDefaultSort, "Ranking column (Citations, cit/year)")
	searchCmd.Flags().IntVar(&searchSince, "since", 0, "Earliest publication year")
	searchCmd.Flags().IntVar(&searchUntil, "until", 0, "Latest publication year")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "Directory for the results CSV")
	searchCmd.Flags().BoolVar(&searchNoSave, "no-save", false, "Skip the results CSV")
}

// =============================================================================
// Search Execution
// =============================================================================

// runScholarSearch executes the search command.
func runScholarSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx, cancel := interruptibleContext()
	defer cancel()

	proc := exec.CommandContext(ctx, sortgsBinary, buildSortgsArgs(query)...)
	proc.Stdout = cmd.OutOrStdout()
	proc.Stderr = cmd.ErrOrStderr()

	if err := proc.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			ux.Error("sortgs is not installed; install it with: pip install sortgs")
			return nil
		}
		return fmt.Errorf("sortgs failed: %w", err)
	}
	return nil
}

// buildSortgsArgs maps the command flags onto sortgs's own flag names.
func buildSortgsArgs(query string) []string {
	args := []string{
		query,
		"--nresults", strconv.Itoa(searchResults),
		"--sortby", searchSortBy,
	}
	if searchSince > 0 {
		args = append(args, "--startyear", strconv.Itoa(searchSince))
	}
	if searchUntil > 0 {
		args = append(args, "--endyear", strconv.Itoa(searchUntil))
	}
	if searchOutput != "" {
		args = append(args, "--csvpath", searchOutput)
	}
	if searchNoSave {
		args = append(args, "--notsavecsv")
	}
	return args
}
