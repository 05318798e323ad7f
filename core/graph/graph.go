// Package graph holds the in-memory citation graph: a directed simple
// graph over discovered publications, built once and never mutated after
// construction, plus the breadth-first builder that grows it.
package graph

import (
	"fmt"
	"math"

	"github.com/adalundhe/citegraph/core/scholar"
	"github.com/google/uuid"
)

const (
	nodeBackground       = "#aaaaaa"
	seedBorderColor      = "#0066ff"
	nodeBorderColor      = "#888888"
	highlightBackground  = "#0066ff"
	highlightBorderColor = "#0044cc"
	influentialEdgeColor = "#666666"
	defaultEdgeColor     = "#dddddd"

	labelRunes = 20
)

// NodeStyle carries the presentation attributes fixed at discovery time.
type NodeStyle struct {
	Size                float64
	Background          string
	Border              string
	HighlightBackground string
	HighlightBorder     string
	BorderWidth         int
}

// EdgeStyle carries the presentation attributes of one edge.
type EdgeStyle struct {
	Color string
	Width int
}

// Node is one discovered publication. Layer is the BFS depth at first
// sight; it is assigned once and never overwritten.
type Node struct {
	ID        string
	Title     string
	Year      int
	Citations int
	Layer     int
	Style     NodeStyle
}

// Label returns the display label, truncated past 20 runes.
func (n *Node) Label() string {
	runes := []rune(n.Title)
	if len(runes) <= labelRunes {
		return n.Title
	}
	return string(runes[:labelRunes]) + "..."
}

// Tooltip returns the hover text shown by the renderer.
func (n *Node) Tooltip() string {
	year := "N/A"
	if n.Year != 0 {
		year = fmt.Sprintf("%d", n.Year)
	}
	return fmt.Sprintf("<b>%s</b><br>Year: %s<br>Citations: %d", n.Title, year, n.Citations)
}

// EdgeKey identifies a directed edge; at most one edge exists per key.
type EdgeKey struct {
	From string
	To   string
}

// Edge is a directed citation link: From cites To.
type Edge struct {
	From        string
	To          string
	Influential bool
	Style       EdgeStyle
}

// Graph is a directed simple graph keyed by publication id. Nodes and
// edges live in independent maps; insertion order is preserved so
// exports and renders are deterministic.
type Graph struct {
	ID        string
	SeedID    string
	SeedTitle string

	nodes     map[string]*Node
	edges     map[EdgeKey]*Edge
	nodeOrder []string
	edgeOrder []EdgeKey
}

// NewGraph creates an empty graph with a fresh build id.
func NewGraph() *Graph {
	return &Graph{
		ID:    uuid.New().String(),
		nodes: make(map[string]*Node),
		edges: make(map[EdgeKey]*Edge),
	}
}

// AddNode inserts a node for p at the given layer. Papers without an id
// are rejected; an already-present id keeps its original node untouched
// (first discovery wins). Reports whether a node was inserted.
func (g *Graph) AddNode(p scholar.Paper, layer int) bool {
	if p.ID == "" {
		return false
	}
	if _, exists := g.nodes[p.ID]; exists {
		return false
	}

	g.nodes[p.ID] = &Node{
		ID:        p.ID,
		Title:     p.Title,
		Year:      p.Year,
		Citations: p.Citations,
		Layer:     layer,
		Style:     nodeStyle(layer, p.Citations),
	}
	g.nodeOrder = append(g.nodeOrder, p.ID)
	return true
}

// AddEdge inserts the directed edge from→to. Both endpoints must already
// be nodes and duplicate ordered pairs are skipped. Reports whether an
// edge was inserted.
func (g *Graph) AddEdge(from, to string, influential bool) bool {
	if _, ok := g.nodes[from]; !ok {
		return false
	}
	if _, ok := g.nodes[to]; !ok {
		return false
	}

	key := EdgeKey{From: from, To: to}
	if _, exists := g.edges[key]; exists {
		return false
	}

	g.edges[key] = &Edge{
		From:        from,
		To:          to,
		Influential: influential,
		Style:       edgeStyle(influential),
	}
	g.edgeOrder = append(g.edgeOrder, key)
	return true
}

// Node returns the node for id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id is a node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the directed edge from→to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edges[EdgeKey{From: from, To: to}]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.nodeOrder))
	copy(out, g.nodeOrder)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		out = append(out, g.edges[key])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// nodeStyle derives the visual attributes for a node: size grows with the
// log of the citation count, and the seed layer gets the accent border.
func nodeStyle(layer, citations int) NodeStyle {
	if citations < 1 {
		citations = 1
	}

	style := NodeStyle{
		Size:                10 + math.Log10(float64(citations))*5,
		Background:          nodeBackground,
		Border:              nodeBorderColor,
		HighlightBackground: highlightBackground,
		HighlightBorder:     highlightBorderColor,
		BorderWidth:         1,
	}
	if layer == 0 {
		style.Border = seedBorderColor
		style.BorderWidth = 3
	}
	return style
}

func edgeStyle(influential bool) EdgeStyle {
	if influential {
		return EdgeStyle{Color: influentialEdgeColor, Width: 3}
	}
	return EdgeStyle{Color: defaultEdgeColor, Width: 1}
}
