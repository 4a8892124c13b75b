package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/vfxgraph/pkg/graph"
	"github.com/matzehuels/vfxgraph/pkg/model"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed adds port values and node metadata to the labels.
	// When false, only the node label is shown.
	Detailed bool

	// Comments includes comment nodes. They carry no edges and are left
	// out by default.
	Comments bool
}

var (
	kindSystem       = model.KindSystem.String()
	kindContext      = model.KindContext.String()
	kindBlock        = model.KindBlock.String()
	kindDataNode     = model.KindDataNode.String()
	kindComment      = model.KindComment.String()
	kindSpawnerNode  = model.KindSpawnerNode.String()
	kindSpawnerBlock = model.KindSpawnerBlock.String()
	kindEventNode    = model.KindEventNode.String()
)

// ToDOT converts a view to Graphviz DOT source.
//
// Systems become clusters holding their contexts top to bottom, with each
// context's blocks hanging off it. Data blocks, spawner blocks and nested
// ports are folded into their owner's label, so port links are drawn
// between the nodes that own the ports.
func ToDOT(v graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, sys := range v.Roots() {
		if sys.Kind != kindSystem {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+sys.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", fmtLabel(sys, opts.Detailed))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		var prev string
		for _, c := range v.Children(sys.ID) {
			fmt.Fprintf(&buf, "    %q [%s];\n", c.ID, strings.Join(fmtAttrs(v, c, opts.Detailed), ", "))
			if prev != "" {
				fmt.Fprintf(&buf, "    %q -> %q [weight=10];\n", prev, c.ID)
			}
			prev = c.ID
			for _, b := range v.Children(c.ID) {
				fmt.Fprintf(&buf, "    %q [%s];\n", b.ID, strings.Join(fmtAttrs(v, b, opts.Detailed), ", "))
				fmt.Fprintf(&buf, "    %q -> %q [style=dotted, arrowhead=none];\n", c.ID, b.ID)
			}
		}
		buf.WriteString("  }\n")
	}

	for _, n := range v.Roots() {
		switch n.Kind {
		case kindSystem:
			continue
		case kindComment:
			if !opts.Comments {
				continue
			}
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(v, n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	drawn := make(map[[2]string]bool)
	for _, e := range v.Edges {
		from, to := owner(v, e.From), owner(v, e.To)
		switch e.Kind {
		case graph.EdgeLink:
			key := [2]string{from, to}
			if drawn[key] {
				continue
			}
			drawn[key] = true
			fmt.Fprintf(&buf, "  %q -> %q [color=\"#3b7dd8\"];\n", from, to)
		case graph.EdgeSpawn:
			fmt.Fprintf(&buf, "  %q -> %q [style=bold, color=\"#2e8b57\"];\n", from, to)
		case graph.EdgeStart, graph.EdgeStop:
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, label=%q];\n", from, to, e.Kind)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// owner maps an edge endpoint to the node drawn for it: ports map to their
// node, and data blocks and spawner blocks map to the node holding them.
func owner(v graph.Graph, id string) string {
	if i := strings.Index(id, "/port/"); i >= 0 {
		id = id[:i]
	}
	if n, ok := v.Node(id); ok && n.Parent != "" && n.Kind != kindContext && n.Kind != kindBlock {
		return n.Parent
	}
	return id
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.DisplayLabel()
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	var walk func(ps []graph.Port, depth int)
	walk = func(ps []graph.Port, depth int) {
		for _, p := range ps {
			line := strings.Repeat("  ", depth) + p.Name
			if p.Value != "" {
				line += " = " + p.Value
			}
			parts = append(parts, line)
			walk(p.Children, depth+1)
		}
	}
	walk(n.Ports, 0)
	if len(parts) == 0 {
		return n.DisplayLabel()
	}
	return n.DisplayLabel() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(v graph.Graph, n graph.Node, detailed bool) []string {
	label := fmtLabel(n, detailed)
	// Data and spawner blocks are listed inside their owner.
	if n.Kind == kindDataNode || n.Kind == kindSpawnerNode {
		var lines []string
		for _, c := range v.Children(n.ID) {
			lines = append(lines, fmtLabel(c, detailed))
		}
		if len(lines) > 0 {
			label += "\n" + strings.Join(lines, "\n")
		}
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case kindContext:
		attrs = append(attrs, "fillcolor=\"#e8eef9\"", "penwidth=2")
	case kindBlock:
		attrs = append(attrs, "fontsize=12")
		if n.Meta["disabled"] == true {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=grey")
		}
	case kindDataNode:
		attrs = append(attrs, "shape=component", "fillcolor=\"#fdf3d8\"")
	case kindSpawnerNode, kindSpawnerBlock:
		attrs = append(attrs, "shape=house", "fillcolor=\"#e3f4e8\"")
	case kindEventNode:
		attrs = append(attrs, "shape=cds", "fillcolor=\"#f6e1e1\"")
	case kindComment:
		attrs = append(attrs, "shape=note", "fillcolor=lightyellow")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales with its
// container instead of carrying Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
