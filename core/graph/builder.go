package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adalundhe/citegraph/core/scholar"
	"golang.org/x/time/rate"
)

// =============================================================================
// Traversal Modes
// =============================================================================

// Mode selects which relation directions the builder expands.
type Mode string

const (
	ModeReferences Mode = "references"
	ModeCitations  Mode = "citations"
	ModeAll        Mode = "all"
)

// ParseMode normalizes a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "reference", "references":
		return ModeReferences, nil
	case "citation", "citations":
		return ModeCitations, nil
	case "all":
		return ModeAll, nil
	default:
		return "", fmt.Errorf("unknown traversal mode %q", s)
	}
}

// Directions returns the relation types expanded per node, in the order
// they are fetched.
func (m Mode) Directions() []scholar.RelationType {
	switch m {
	case ModeReferences:
		return []scholar.RelationType{scholar.RelationReferences}
	case ModeCitations:
		return []scholar.RelationType{scholar.RelationCitations}
	case ModeAll:
		return []scholar.RelationType{scholar.RelationReferences, scholar.RelationCitations}
	default:
		return nil
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeReferences || m == ModeCitations || m == ModeAll
}

// DensifyMode selects which relation directions the densification pass
// consults. Off disables the pass.
type DensifyMode string

const (
	DensifyReferences DensifyMode = "references"
	DensifyCitations  DensifyMode = "citations"
	DensifyBoth       DensifyMode = "both"
	DensifyOff        DensifyMode = "off"
)

// ParseDensifyMode normalizes a user-supplied densification mode name.
func ParseDensifyMode(s string) (DensifyMode, error) {
	switch s {
	case "reference", "references":
		return DensifyReferences, nil
	case "citation", "citations":
		return DensifyCitations, nil
	case "both":
		return DensifyBoth, nil
	case "off", "none":
		return DensifyOff, nil
	default:
		return "", fmt.Errorf("unknown densification mode %q", s)
	}
}

// Directions returns the relation types consulted during densification.
func (d DensifyMode) Directions() []scholar.RelationType {
	switch d {
	case DensifyReferences:
		return []scholar.RelationType{scholar.RelationReferences}
	case DensifyCitations:
		return []scholar.RelationType{scholar.RelationCitations}
	case DensifyBoth:
		return []scholar.RelationType{scholar.RelationReferences, scholar.RelationCitations}
	default:
		return nil
	}
}

// =============================================================================
// Builder
// =============================================================================

// SeedSource resolves the crawl's starting publication.
type SeedSource interface {
	SearchBestMatch(ctx context.Context, title string) (*scholar.Paper, error)
	PaperDetails(ctx context.Context, paperID string) (*scholar.Paper, error)
}

// RelationSource serves filtered, sorted relation records. The memoizing
// cache satisfies this, so repeated lookups for one tuple cost a single
// retrieval.
type RelationSource interface {
	Get(ctx context.Context, q scholar.RelationQuery) ([]scholar.RelationEntry, error)
}

// Config configures a Builder.
type Config struct {
	Seeds     SeedSource
	Relations RelationSource

	// Mode picks the expansion directions. Defaults to ModeAll.
	Mode Mode

	// MaxDepth bounds expansion; nodes at this depth are never expanded.
	// Defaults to 2.
	MaxDepth int

	// Widths caps how many relation records each node contributes per
	// direction, indexed by depth. The last value covers deeper levels.
	// Defaults to [4, 2].
	Widths []int

	// InfluentialOnly, SinceYear and UntilYear are passed through to every
	// relation lookup.
	InfluentialOnly bool
	SinceYear       int
	UntilYear       int

	// FetchLimit caps raw records per relation retrieval. Defaults to the
	// API client's fetch limit.
	FetchLimit int

	// Densify selects the post-pass directions. Defaults to
	// DensifyReferences.
	Densify DensifyMode

	// NodeDelay paces expansion between nodes. Zero disables pacing.
	NodeDelay time.Duration

	Logger *slog.Logger // Optional, uses slog.Default() if nil
}

func applyBuilderDefaults(cfg Config) Config {
	if cfg.Mode == "" {
		cfg.Mode = ModeAll
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 2
	}
	if len(cfg.Widths) == 0 {
		cfg.Widths = []int{4, 2}
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = scholar.DefaultFetchLimit
	}
	if cfg.Densify == "" {
		cfg.Densify = DensifyReferences
	}
	if cfg.NodeDelay < 0 {
		cfg.NodeDelay = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// Builder grows a citation graph by bounded breadth-first expansion from
// a single seed publication.
type Builder struct {
	seeds     SeedSource
	relations RelationSource

	mode            Mode
	maxDepth        int
	widths          []int
	influentialOnly bool
	sinceYear       int
	untilYear       int
	fetchLimit      int
	densifyMode     DensifyMode
	nodeDelay       time.Duration

	logger *slog.Logger
}

// NewBuilder validates cfg and creates a Builder.
func NewBuilder(cfg Config) (*Builder, error) {
	cfg = applyBuilderDefaults(cfg)

	if cfg.Seeds == nil {
		return nil, fmt.Errorf("seed source is required")
	}
	if cfg.Relations == nil {
		return nil, fmt.Errorf("relation source is required")
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("unknown traversal mode %q", cfg.Mode)
	}
	if cfg.Densify != DensifyOff && len(cfg.Densify.Directions()) == 0 {
		return nil, fmt.Errorf("unknown densification mode %q", cfg.Densify)
	}
	for _, w := range cfg.Widths {
		if w < 1 {
			return nil, fmt.Errorf("width values must be positive, got %d", w)
		}
	}

	widths := make([]int, len(cfg.Widths))
	copy(widths, cfg.Widths)

	return &Builder{
		seeds:           cfg.Seeds,
		relations:       cfg.Relations,
		mode:            cfg.Mode,
		maxDepth:        cfg.MaxDepth,
		widths:          widths,
		influentialOnly: cfg.InfluentialOnly,
		sinceYear:       cfg.SinceYear,
		untilYear:       cfg.UntilYear,
		fetchLimit:      cfg.FetchLimit,
		densifyMode:     cfg.Densify,
		nodeDelay:       cfg.NodeDelay,
		logger:          cfg.Logger.With(slog.String("component", "graph-builder")),
	}, nil
}

type queueItem struct {
	id    string
	depth int
}

// Build resolves seedTitle and expands the graph breadth-first around it.
// A seed that cannot be resolved is fatal; failed relation lookups for
// individual nodes are logged and skipped. On context cancellation the
// partial graph is discarded.
func (b *Builder) Build(ctx context.Context, seedTitle string) (*Graph, error) {
	seed, err := b.seeds.SearchBestMatch(ctx, seedTitle)
	if err != nil {
		return nil, err
	}

	root := *seed
	if details, derr := b.seeds.PaperDetails(ctx, seed.ID); derr == nil && details != nil && details.ID != "" {
		root = *details
	} else if derr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.logger.Warn("seed details unavailable, using search result fields",
			slog.String("paper_id", seed.ID),
			slog.String("error", derr.Error()),
		)
	}

	b.logger.Info("seed resolved",
		slog.String("paper_id", root.ID),
		slog.String("title", root.Title),
		slog.Int("citations", root.Citations),
	)

	g := NewGraph()
	g.SeedID = root.ID
	g.SeedTitle = root.Title
	g.AddNode(root, 0)

	pacer := rate.NewLimiter(rate.Every(b.nodeDelay), 1)
	visited := map[string]struct{}{root.ID: {}}
	queue := []queueItem{{id: root.ID, depth: 0}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := queue[0]
		queue = queue[1:]
		if item.depth >= b.maxDepth {
			continue
		}

		width := widthFor(b.widths, item.depth)
		b.logger.Debug("expanding node",
			slog.String("paper_id", item.id),
			slog.Int("depth", item.depth),
			slog.Int("width", width),
		)

		for _, rel := range b.mode.Directions() {
			record, rerr := b.relations.Get(ctx, b.queryFor(item.id, rel))
			if rerr != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				b.logger.Warn("relation lookup dropped",
					slog.String("paper_id", item.id),
					slog.String("relation", string(rel)),
					slog.String("error", rerr.Error()),
				)
				continue
			}
			if len(record) > width {
				record = record[:width]
			}

			for _, entry := range record {
				target := entry.Paper
				if target.ID == "" {
					continue
				}

				g.AddNode(target, item.depth+1)

				if rel == scholar.RelationReferences {
					g.AddEdge(item.id, target.ID, entry.Influential)
				} else {
					g.AddEdge(target.ID, item.id, entry.Influential)
				}

				if _, seen := visited[target.ID]; !seen {
					visited[target.ID] = struct{}{}
					if item.depth+1 < b.maxDepth {
						queue = append(queue, queueItem{id: target.ID, depth: item.depth + 1})
					}
				}
			}
		}

		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if err := b.densify(ctx, g); err != nil {
		return nil, err
	}

	b.logger.Info("graph build complete",
		slog.String("graph_id", g.ID),
		slog.Int("nodes", g.NodeCount()),
		slog.Int("edges", g.EdgeCount()),
	)
	return g, nil
}

// densify adds edges among already-discovered nodes using the full,
// un-truncated relation records. Every lookup reuses the exact query
// tuple from expansion, so cached nodes cost no network.
func (b *Builder) densify(ctx context.Context, g *Graph) error {
	directions := b.densifyMode.Directions()
	if len(directions) == 0 {
		return nil
	}

	added := 0
	for _, id := range g.NodeIDs() {
		for _, rel := range directions {
			record, err := b.relations.Get(ctx, b.queryFor(id, rel))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				b.logger.Warn("densification lookup dropped",
					slog.String("paper_id", id),
					slog.String("relation", string(rel)),
					slog.String("error", err.Error()),
				)
				continue
			}

			for _, entry := range record {
				target := entry.Paper.ID
				if target == "" || !g.HasNode(target) {
					continue
				}
				var inserted bool
				if rel == scholar.RelationReferences {
					inserted = g.AddEdge(id, target, entry.Influential)
				} else {
					inserted = g.AddEdge(target, id, entry.Influential)
				}
				if inserted {
					added++
				}
			}
		}
	}

	b.logger.Info("densification complete", slog.Int("edges_added", added))
	return nil
}

func (b *Builder) queryFor(paperID string, rel scholar.RelationType) scholar.RelationQuery {
	return scholar.RelationQuery{
		PaperID:         paperID,
		Type:            rel,
		InfluentialOnly: b.influentialOnly,
		SinceYear:       b.sinceYear,
		UntilYear:       b.untilYear,
		Limit:           b.fetchLimit,
	}
}

func widthFor(widths []int, depth int) int {
	if depth < len(widths) {
		return widths[depth]
	}
	return widths[len(widths)-1]
}
