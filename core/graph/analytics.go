package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat"
)

const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// RankedNode pairs a node with its PageRank score.
type RankedNode struct {
	Node  *Node
	Score float64
}

// LayerCount is the number of nodes discovered at one BFS layer.
type LayerCount struct {
	Layer int
	Count int
}

// Summary describes the structure of a built graph.
type Summary struct {
	Nodes        int
	Edges        int
	Layers       []LayerCount
	MeanDegree   float64
	StdDevDegree float64
	TopRanked    []RankedNode
}

// Summarize computes layer counts, a total-degree summary and the topK
// nodes by PageRank. A non-positive topK keeps the ten highest ranked.
func Summarize(g *Graph, topK int) Summary {
	if topK <= 0 {
		topK = 10
	}

	summary := Summary{
		Nodes: g.NodeCount(),
		Edges: g.EdgeCount(),
	}
	if summary.Nodes == 0 {
		return summary
	}

	byLayer := make(map[int]int)
	for _, n := range g.Nodes() {
		byLayer[n.Layer]++
	}
	for layer, count := range byLayer {
		summary.Layers = append(summary.Layers, LayerCount{Layer: layer, Count: count})
	}
	sort.Slice(summary.Layers, func(i, j int) bool {
		return summary.Layers[i].Layer < summary.Layers[j].Layer
	})

	degrees := make(map[string]int, summary.Nodes)
	for _, e := range g.Edges() {
		degrees[e.From]++
		degrees[e.To]++
	}
	data := make([]float64, 0, summary.Nodes)
	for _, id := range g.NodeIDs() {
		data = append(data, float64(degrees[id]))
	}
	summary.MeanDegree = stat.Mean(data, nil)
	if len(data) > 1 {
		summary.StdDevDegree = stat.StdDev(data, nil)
	}

	summary.TopRanked = rankNodes(g, topK)
	return summary
}

// rankNodes projects the graph onto dense integer ids and runs PageRank.
// Self-citations are excluded from the projection.
func rankNodes(g *Graph, topK int) []RankedNode {
	ids := g.NodeIDs()
	index := make(map[string]int64, len(ids))

	projected := simple.NewDirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		projected.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges() {
		if e.From == e.To {
			continue
		}
		projected.SetEdge(simple.Edge{
			F: simple.Node(index[e.From]),
			T: simple.Node(index[e.To]),
		})
	}

	scores := network.PageRank(projected, pageRankDamping, pageRankTolerance)

	ranked := make([]RankedNode, 0, len(ids))
	for _, id := range ids {
		node, _ := g.Node(id)
		ranked = append(ranked, RankedNode{Node: node, Score: scores[index[id]]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}
