// Package render draws effect graphs as node-link diagrams.
//
// [ToDOT] turns a [graph.Graph] view into Graphviz DOT source and
// [RenderSVG] lays it out and renders it in-process through
// github.com/goccy/go-graphviz, so no Graphviz installation is needed.
//
//	view := graph.FromModel(res.Graph)
//	dot := render.ToDOT(view, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Each system is drawn as a cluster with its contexts in execution order
// and its blocks hanging off them. Port links are blue, spawner
// memberships green and event triggers dashed and labeled start or stop.
// The DOT text is deterministic for a given view, which lets callers cache
// rendered SVG by document hash.
package render
