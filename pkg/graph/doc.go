// Package graph provides the node-link view of effect graphs.
//
// The view is what the HTTP API returns, what `vfxgraph inspect --json`
// prints, and what the DOT renderer draws. It flattens the ownership tree
// into a node list with parent pointers and turns every cross-reference into
// an edge. It is derived data only; graphs are stored as XML documents (see
// package serial).
//
// # Node IDs
//
// Only some node variants carry a document ID, so the view uses paths from
// the graph root instead:
//
//	system/0                   first system
//	system/0/context/1         its second context
//	system/0/context/1/block/2 third block of that context
//	model/3                    fourth top-level node
//	model/3/block/0            first block of a data or spawner node
//
// Ports append /port/<i> to their owner's ID and .<j> per nesting level,
// so system/0/context/1/port/0.1 is the second child of the context's first
// port. Paths are stable for a given document.
//
// # Edges
//
//	{"from": "model/0/block/0/port/0", "to": "system/0/context/1/block/2/port/0", "kind": "link"}
//	{"from": "model/2", "to": "system/0/context/0", "kind": "spawn"}
//	{"from": "model/3", "to": "model/2", "kind": "start"}
//
// Port links run from the output port to the input port. Spawner
// memberships run from the spawner node to the context; event triggers run
// from the event node to the spawner node.
//
// # Usage
//
//	res, _ := serializer.Unmarshal(data)
//	view := graph.FromModel(res.Graph)
//	view.Version = res.Version
//	graph.Write(view, os.Stdout)
package graph
