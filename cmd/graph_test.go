// Package cmd provides CLI commands for the citegraph application.
// This file contains tests for the graph command.
package cmd

import (
	"testing"

	"github.com/adalundhe/citegraph/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Graph Command Tests
// =============================================================================

func TestGraphCmd_Definition(t *testing.T) {
	t.Run("command is defined", func(t *testing.T) {
		assert.NotNil(t, graphCmd)
		assert.Equal(t, "graph <title>", graphCmd.Use)
		assert.Equal(t, "Build a citation graph around a publication", graphCmd.Short)
	})

	t.Run("command has flags", func(t *testing.T) {
		flags := graphCmd.Flags()

		mode := flags.Lookup("mode")
		require.NotNil(t, mode)
		assert.Equal(t, "m", mode.Shorthand)
		assert.Equal(t, "all", mode.DefValue)

		depth := flags.Lookup("depth")
		require.NotNil(t, depth)
		assert.Equal(t, "2", depth.DefValue)

		width := flags.Lookup("width")
		require.NotNil(t, width)
		assert.Equal(t, "4,2", width.DefValue)

		influential := flags.Lookup("influential-only")
		require.NotNil(t, influential)
		assert.Equal(t, "true", influential.DefValue)

		sort := flags.Lookup("sort")
		require.NotNil(t, sort)
		assert.Equal(t, "citation", sort.DefValue)

		densify := flags.Lookup("densify")
		require.NotNil(t, densify)
		assert.Equal(t, "references", densify.DefValue)

		format := flags.Lookup("format")
		require.NotNil(t, format)
		assert.Equal(t, "html", format.DefValue)

		assert.NotNil(t, flags.Lookup("since"))
		assert.NotNil(t, flags.Lookup("until"))
		assert.NotNil(t, flags.Lookup("fetch-limit"))
		assert.NotNil(t, flags.Lookup("output"))
		assert.NotNil(t, flags.Lookup("no-open"))
		assert.NotNil(t, flags.Lookup("stats"))
	})
}

func TestParseWidths(t *testing.T) {
	t.Run("valid lists", func(t *testing.T) {
		cases := []struct {
			in   string
			want []int
		}{
			{"4,2", []int{4, 2}},
			{"3", []int{3}},
			{" 6 , 3 , 1 ", []int{6, 3, 1}},
			{"4,,2", []int{4, 2}},
		}
		for _, tc := range cases {
			widths, err := parseWidths(tc.in)
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, widths, tc.in)
		}
	})

	t.Run("invalid lists", func(t *testing.T) {
		for _, in := range []string{"", ",", "abc", "4,x", "0", "4,-1"} {
			_, err := parseWidths(in)
			assert.Error(t, err, in)
		}
	})
}

func TestFormatWidths(t *testing.T) {
	assert.Equal(t, "4,2", formatWidths([]int{4, 2}))
	assert.Equal(t, "7", formatWidths([]int{7}))
}

func TestApplyGraphConfigFallbacks(t *testing.T) {
	saved := struct {
		mode       string
		depth      int
		width      string
		fetchLimit int
		format     string
		output     string
		noOpen     bool
	}{graphMode, graphDepth, graphWidth, graphFetchLimit, graphFormat, graphOutput, graphNoOpen}
	t.Cleanup(func() {
		graphMode = saved.mode
		graphDepth = saved.depth
		graphWidth = saved.width
		graphFetchLimit = saved.fetchLimit
		graphFormat = saved.format
		graphOutput = saved.output
		graphNoOpen = saved.noOpen
	})

	cfg := config.DefaultConfig()
	cfg.Crawl.Mode = "citations"
	cfg.Crawl.MaxDepth = 5
	cfg.Crawl.Widths = []int{7, 3}
	cfg.Crawl.FetchLimit = 500
	cfg.Output.Format = "json"
	cfg.Output.Dir = "/tmp/artifacts"
	cfg.Output.OpenBrowser = false

	applyGraphConfigFallbacks(graphCmd, cfg)

	assert.Equal(t, "citations", graphMode)
	assert.Equal(t, 5, graphDepth)
	assert.Equal(t, "7,3", graphWidth)
	assert.Equal(t, 500, graphFetchLimit)
	assert.Equal(t, "json", graphFormat)
	assert.Equal(t, "/tmp/artifacts", graphOutput)
	assert.True(t, graphNoOpen)
}
