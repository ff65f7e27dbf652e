// Package visualization renders contact network snapshots in various output formats.
package visualization

import (
	"fmt"
	"strings"

	"github.com/nvandessel/contagion/internal/models"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want dot or json)", s)
	}
}

// statusColors maps epidemic status to node fill colors.
var statusColors = map[models.Status]string{
	models.StatusSusceptible: "#4ade80",
	models.StatusExposed:     "#facc15",
	models.StatusInfectious:  "#ef4444",
	models.StatusRecovered:   "#3b82f6",
}

// StatusColor returns the fill color for a status, gray when unknown.
func StatusColor(s models.Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "lightgray"
}

// PenWidth maps a contact strength in (0, 1] to a DOT pen width.
func PenWidth(strength float64) float64 {
	return 0.5 + 2.5*strength
}

// EnrichmentData provides optional data to augment the rendered graph.
type EnrichmentData struct {
	// PageRank is indexed by individual id (0.0-1.0).
	PageRank []float64

	// Day labels the snapshot.
	Day *int
}

func (e *EnrichmentData) pageRank(id int) (float64, bool) {
	if e == nil || id >= len(e.PageRank) {
		return 0, false
	}
	return e.PageRank[id], true
}

// RenderDOT produces a Graphviz DOT representation of the network.
// Nodes are filled by status; PageRank, when given, scales node size.
func RenderDOT(net *models.Network, enrichment *EnrichmentData) string {
	var b strings.Builder
	b.WriteString("graph contagion {\n")
	if enrichment != nil && enrichment.Day != nil {
		fmt.Fprintf(&b, "  label=\"day %d\";\n", *enrichment.Day)
	}
	b.WriteString("  layout=neato;\n")
	b.WriteString("  overlap=false;\n")
	b.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\", fontsize=9];\n")
	b.WriteString("  edge [color=\"#9ca3af\"];\n\n")

	for _, ind := range net.Individuals {
		attrs := fmt.Sprintf("label=\"%d\", fillcolor=%q, tooltip=\"%s community=%d age=%d degree=%d\"",
			ind.ID, StatusColor(ind.Status), ind.Status, ind.Community, ind.Age, ind.Degree())
		if pr, ok := enrichment.pageRank(ind.ID); ok {
			attrs += fmt.Sprintf(", width=%.2f", 0.3+0.7*pr)
		}
		fmt.Fprintf(&b, "  %d [%s];\n", ind.ID, attrs)
	}
	b.WriteString("\n")

	for _, e := range net.Edges {
		fmt.Fprintf(&b, "  %d -- %d [penwidth=%.2f, tooltip=\"strength=%.2f\"];\n",
			e.Source, e.Target, PenWidth(e.Strength), e.Strength)
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON graph representation with nodes and edges arrays
// plus per-status counts.
func RenderJSON(net *models.Network, enrichment *EnrichmentData) map[string]interface{} {
	jsonNodes := make([]map[string]interface{}, 0, net.Size())
	for _, ind := range net.Individuals {
		entry := map[string]interface{}{
			"id":            ind.ID,
			"status":        ind.Status,
			"color":         StatusColor(ind.Status),
			"community":     ind.Community,
			"age":           ind.Age,
			"degree":        ind.Degree(),
			"days_exposed":  ind.DaysExposed,
			"days_infected": ind.DaysInfected,
		}
		if pr, ok := enrichment.pageRank(ind.ID); ok {
			entry["pagerank"] = pr
		}
		jsonNodes = append(jsonNodes, entry)
	}

	jsonEdges := make([]map[string]interface{}, 0, len(net.Edges))
	for _, e := range net.Edges {
		jsonEdges = append(jsonEdges, map[string]interface{}{
			"source":   e.Source,
			"target":   e.Target,
			"strength": e.Strength,
		})
	}

	counts := make(map[string]int, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		counts[string(s)] = 0
	}
	for s, c := range net.CountByStatus() {
		counts[string(s)] = c
	}

	out := map[string]interface{}{
		"nodes":      jsonNodes,
		"edges":      jsonEdges,
		"node_count": len(jsonNodes),
		"edge_count": len(jsonEdges),
		"status":     counts,
	}
	if enrichment != nil && enrichment.Day != nil {
		out["day"] = *enrichment.Day
	}
	return out
}
