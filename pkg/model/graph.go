package model

// Graph is the root of an effect graph. Systems own the context/block tree;
// Models is the flat list of top-level nodes (data nodes, comments,
// spawners and events) in editor order.
type Graph struct {
	Systems []*System
	Models  []Node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddSystem appends s to the graph.
func (g *Graph) AddSystem(s *System) { g.Systems = append(g.Systems, s) }

// AddModel appends n to the top-level node list.
func (g *Graph) AddModel(n Node) { g.Models = append(g.Models, n) }

// IsEmpty reports whether the graph has no nodes at all.
func (g *Graph) IsEmpty() bool { return len(g.Systems) == 0 && len(g.Models) == 0 }

// Ports returns the root ports owned directly by n. Nodes that own no
// ports return nil.
func Ports(n Node) []*Port {
	switch n := n.(type) {
	case *Context:
		return n.Ports
	case *Block:
		return n.Ports
	case *DataBlock:
		if n.Port == nil {
			return nil
		}
		return []*Port{n.Port}
	case *SpawnerBlock:
		return n.Ports
	}
	return nil
}

// Children returns the nodes owned by n in document order.
func Children(n Node) []Node {
	var out []Node
	switch n := n.(type) {
	case *System:
		for _, c := range n.Contexts {
			out = append(out, c)
		}
	case *Context:
		for _, b := range n.Blocks {
			out = append(out, b)
		}
	case *DataNode:
		for _, b := range n.Blocks {
			out = append(out, b)
		}
	case *SpawnerNode:
		for _, b := range n.Blocks {
			out = append(out, b)
		}
	}
	return out
}

// Walk calls fn for every node in document order: systems depth-first,
// then the top-level models depth-first. Returning false from fn skips
// the node's children.
func (g *Graph) Walk(fn func(n Node) bool) {
	var visit func(n Node)
	visit = func(n Node) {
		if !fn(n) {
			return
		}
		for _, c := range Children(n) {
			visit(c)
		}
	}
	for _, s := range g.Systems {
		visit(s)
	}
	for _, m := range g.Models {
		visit(m)
	}
}

// Stats summarizes the size of a graph.
type Stats struct {
	Nodes    int // every node, positional ones included
	Systems  int
	Ports    int // every port, nested ones included
	Links    int // port links, each pair counted once
	Spawns   int // spawner memberships
	Triggers int // event triggers, start and stop
}

// Stats counts the nodes, ports and edges of g.
func (g *Graph) Stats() Stats {
	st := Stats{Systems: len(g.Systems)}
	links := 0
	g.Walk(func(n Node) bool {
		st.Nodes++
		for _, p := range Ports(n) {
			p.Walk(func(p *Port) {
				st.Ports++
				links += len(p.links)
			})
		}
		switch n := n.(type) {
		case *SpawnerNode:
			st.Spawns += len(n.contexts)
		case *EventNode:
			st.Triggers += len(n.start) + len(n.stop)
		}
		return true
	})
	st.Links = links / 2
	return st
}
