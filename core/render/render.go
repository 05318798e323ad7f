// Package render turns a built citation graph into shareable artifacts:
// an interactive D3 page, a Graphviz DOT file or plain JSON.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adalundhe/citegraph/core/export"
	"github.com/adalundhe/citegraph/core/graph"
)

// Format selects the rendered artifact type.
type Format string

const (
	FormatHTML Format = "html"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "html":
		return FormatHTML, nil
	case "dot", "graphviz":
		return FormatDOT, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// Render produces the artifact for g in the requested format.
func Render(g *graph.Graph, format Format) (string, error) {
	if g == nil {
		return "", fmt.Errorf("graph is required")
	}

	switch format {
	case FormatHTML:
		return renderHTML(g)
	case FormatDOT:
		return renderDOT(g), nil
	case FormatJSON:
		return renderJSON(g)
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

// Save renders g and writes the artifact into dir, creating it if
// needed. The mode becomes part of the file name. Returns the written
// path.
func Save(g *graph.Graph, format Format, dir, mode string) (string, error) {
	content, err := Render(g, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, export.GraphFileName(mode, g.SeedTitle, string(format)))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing graph artifact: %w", err)
	}
	return path, nil
}

type documentNode struct {
	ID              string  `json:"id"`
	Label           string  `json:"label"`
	Tooltip         string  `json:"tooltip"`
	Year            int     `json:"year"`
	Citations       int     `json:"citations"`
	Layer           int     `json:"layer"`
	Size            float64 `json:"size"`
	Background      string  `json:"background"`
	Border          string  `json:"border"`
	Highlight       string  `json:"highlight"`
	HighlightBorder string  `json:"highlightBorder"`
	BorderWidth     int     `json:"borderWidth"`
}

type documentLink struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Influential bool   `json:"influential"`
	Color       string `json:"color"`
	Width       int    `json:"width"`
}

type document struct {
	Seed  string         `json:"seed"`
	Title string         `json:"title"`
	Nodes []documentNode `json:"nodes"`
	Links []documentLink `json:"links"`
}

func buildDocument(g *graph.Graph) document {
	doc := document{
		Seed:  g.SeedID,
		Title: g.SeedTitle,
		Nodes: make([]documentNode, 0, g.NodeCount()),
		Links: make([]documentLink, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, documentNode{
			ID:              n.ID,
			Label:           n.Label(),
			Tooltip:         n.Tooltip(),
			Year:            n.Year,
			Citations:       n.Citations,
			Layer:           n.Layer,
			Size:            n.Style.Size,
			Background:      n.Style.Background,
			Border:          n.Style.Border,
			Highlight:       n.Style.HighlightBackground,
			HighlightBorder: n.Style.HighlightBorder,
			BorderWidth:     n.Style.BorderWidth,
		})
	}
	for _, e := range g.Edges() {
		doc.Links = append(doc.Links, documentLink{
			Source:      e.From,
			Target:      e.To,
			Influential: e.Influential,
			Color:       e.Style.Color,
			Width:       e.Style.Width,
		})
	}
	return doc
}

// renderJSON produces the D3-compatible document as indented JSON.
func renderJSON(g *graph.Graph) (string, error) {
	data, err := json.MarshalIndent(buildDocument(g), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// renderHTML embeds the JSON document into a self-contained force layout
// page.
func renderHTML(g *graph.Graph) (string, error) {
	doc, err := renderJSON(g)
	if err != nil {
		return "", err
	}
	return graphHTMLPage(doc), nil
}

// renderDOT produces a Graphviz digraph with the same palette the HTML
// page uses.
func renderDOT(g *graph.Graph) string {
	var sb strings.Builder

	sb.WriteString("digraph CitationGraph {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    bgcolor=\"#222222\";\n")
	sb.WriteString("    node [shape=ellipse, style=filled, fontcolor=\"#222222\"];\n")
	sb.WriteString("    edge [arrowsize=0.7];\n")
	sb.WriteString("\n")

	for _, n := range g.Nodes() {
		sb.WriteString(fmt.Sprintf("    %s [label=\"%s\", fillcolor=\"%s\", color=\"%s\", penwidth=%d];\n",
			quoteDOTID(n.ID), escapeDOTLabel(n.Label()), n.Style.Background, n.Style.Border, n.Style.BorderWidth))
	}

	sb.WriteString("\n")

	for _, e := range g.Edges() {
		sb.WriteString(fmt.Sprintf("    %s -> %s [color=\"%s\", penwidth=%d];\n",
			quoteDOTID(e.From), quoteDOTID(e.To), e.Style.Color, e.Style.Width))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func quoteDOTID(s string) string {
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(s, "\"", "\\\""))
}

func escapeDOTLabel(s string) string {
	replacer := strings.NewReplacer(
		"\"", "\\\"",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}

// graphHTMLPage wraps the JSON document in an interactive D3 force
// layout with the dark theme.
func graphHTMLPage(docJSON string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Citation Graph</title>
  <script src="https://d3js.org/d3.v7.min.js"></script>
  <style>
    body { margin: 0; background: #222222; color: #ffffff; font-family: Arial, sans-serif; }
    svg { width: 100%%; height: 100vh; }
    .node circle { cursor: pointer; }
    .node text { font-size: 12px; fill: #ffffff; }
    .tooltip {
      position: absolute;
      background: #333;
      color: #fff;
      padding: 8px;
      border-radius: 4px;
      font-size: 12px;
      pointer-events: none;
      visibility: hidden;
    }
  </style>
</head>
<body>
  <svg></svg>
  <div class="tooltip"></div>
  <script>
    const data = %s;

    const width = window.innerWidth;
    const height = window.innerHeight;

    const svg = d3.select("svg");
    const tooltip = d3.select(".tooltip");

    svg.append("defs").append("marker")
      .attr("id", "arrow")
      .attr("viewBox", "0 -5 10 10")
      .attr("refX", 18)
      .attr("refY", 0)
      .attr("markerWidth", 6)
      .attr("markerHeight", 6)
      .attr("orient", "auto")
      .append("path")
      .attr("d", "M0,-5L10,0L0,5")
      .attr("fill", "#666666");

    const simulation = d3.forceSimulation(data.nodes)
      .force("link", d3.forceLink(data.links).id(d => d.id).distance(120))
      .force("charge", d3.forceManyBody().strength(-250))
      .force("center", d3.forceCenter(width / 2, height / 2));

    const link = svg.append("g")
      .selectAll("line")
      .data(data.links)
      .join("line")
      .attr("stroke", d => d.color)
      .attr("stroke-width", d => d.width)
      .attr("marker-end", "url(#arrow)");

    const node = svg.append("g")
      .selectAll("g")
      .data(data.nodes)
      .join("g")
      .attr("class", "node")
      .call(d3.drag()
        .on("start", dragstarted)
        .on("drag", dragged)
        .on("end", dragended));

    node.append("circle")
      .attr("r", d => d.size)
      .attr("fill", d => d.background)
      .attr("stroke", d => d.border)
      .attr("stroke-width", d => d.borderWidth)
      .on("mouseover", function(event, d) {
        d3.select(this).attr("fill", d.highlight).attr("stroke", d.highlightBorder);
        tooltip.style("visibility", "visible").html(d.tooltip);
      })
      .on("mousemove", function(event) {
        tooltip.style("top", (event.pageY + 12) + "px").style("left", (event.pageX + 12) + "px");
      })
      .on("mouseout", function(event, d) {
        d3.select(this).attr("fill", d.background).attr("stroke", d.border);
        tooltip.style("visibility", "hidden");
      });

    node.append("text")
      .attr("dx", d => d.size + 4)
      .attr("dy", 4)
      .text(d => d.label);

    simulation.on("tick", () => {
      link
        .attr("x1", d => d.source.x)
        .attr("y1", d => d.source.y)
        .attr("x2", d => d.target.x)
        .attr("y2", d => d.target.y);

      node.attr("transform", d => "translate(" + d.x + "," + d.y + ")");
    });

    function dragstarted(event) {
      if (!event.active) simulation.alphaTarget(0.3).restart();
      event.subject.fx = event.subject.x;
      event.subject.fy = event.subject.y;
    }

    function dragged(event) {
      event.subject.fx = event.x;
      event.subject.fy = event.y;
    }

    function dragended(event) {
      if (!event.active) simulation.alphaTarget(0);
      event.subject.fx = null;
      event.subject.fy = null;
    }
  </script>
</body>
</html>`, docJSON)
}
