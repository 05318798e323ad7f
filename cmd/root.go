// Package cmd provides CLI commands for the citegraph application.
package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/adalundhe/citegraph/core/config"
	coreerrors "github.com/adalundhe/citegraph/core/errors"
	"github.com/adalundhe/citegraph/core/scholar"
	"github.com/adalundhe/citegraph/core/ux"
	"github.com/spf13/cobra"
)

var (
	rootVerbose bool
	rootPlain   bool
)

var rootCmd = &cobra.Command{
	Use:   "citegraph",
	Short: "Citegraph - citation graph explorer",
	Long: `Citegraph crawls the citation neighborhood of a publication through the
Semantic Scholar API and produces interactive graph visualizations,
relation tables and CSV exports.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if rootPlain {
			ux.SetInteractive(false)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&rootPlain, "plain", false, "Disable styled terminal output")
}

func Execute() error {
	return rootCmd.Execute()
}

// =============================================================================
// Shared Wiring
// =============================================================================

// loadConfig resolves the layered configuration.
func loadConfig() (*config.Config, error) {
	manager := config.NewManager()
	if err := manager.Load(); err != nil {
		return nil, err
	}
	return manager.Get(), nil
}

// newLogger builds the CLI logger. Logs go to stderr so tables and
// artifacts own stdout. Warnings only unless --verbose is set.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if rootVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newScholarClient wires an API client from config with the given retry
// policy.
func newScholarClient(cfg *config.Config, logger *slog.Logger, policy coreerrors.RetryPolicy) *scholar.Client {
	return scholar.New(scholar.Config{
		BaseURL:    cfg.API.BaseURL,
		APIKey:     cfg.API.Key,
		PageSize:   cfg.API.PageSize,
		PageDelay:  cfg.API.PageDelay.Std(),
		FetchLimit: cfg.Crawl.FetchLimit,
		Retry:      &policy,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout.Std()},
		Logger:     logger,
	})
}

// interruptibleContext returns a context cancelled on SIGINT or SIGTERM.
func interruptibleContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
