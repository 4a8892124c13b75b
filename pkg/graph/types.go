package graph

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/primitive"
)

// Edge kinds.
const (
	EdgeLink  = "link"  // output port to input port
	EdgeSpawn = "spawn" // spawner node to the context it drives
	EdgeStart = "start" // event node to a spawner it starts
	EdgeStop  = "stop"  // event node to a spawner it stops
)

// =============================================================================
// Graph - Node-Link View
// =============================================================================

// Graph is the node-link view of an effect graph. It is the wire format of
// the HTTP API and of `vfxgraph inspect --json`, and the input to the DOT
// renderer. It is a read-only projection: documents remain the storage
// format.
type Graph struct {
	Version int    `json:"version,omitempty" bson:"version,omitempty"` // schema version of the source document, if known
	Nodes   []Node `json:"nodes" bson:"nodes"`
	Edges   []Edge `json:"edges" bson:"edges"`
}

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Roots returns the nodes without a parent, in document order.
func (g Graph) Roots() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Parent == "" {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the nodes whose parent is id, in document order.
func (g Graph) Children(id string) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Parent == id {
			out = append(out, n)
		}
	}
	return out
}

// =============================================================================
// Node
// =============================================================================

// Node is one node of the effect graph. IDs are paths from the graph root
// (system/0/context/1/block/2, model/3/block/0), so nodes without a
// document identity are still addressable.
type Node struct {
	ID     string         `json:"id" bson:"id"`
	Kind   string         `json:"kind" bson:"kind"`
	Label  string         `json:"label,omitempty" bson:"label,omitempty"`
	Parent string         `json:"parent,omitempty" bson:"parent,omitempty"`
	Ports  []Port         `json:"ports,omitempty" bson:"ports,omitempty"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Port is a port with its subtree. Value is the text form of the port's
// value and is empty for composite ports.
type Port struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Type     string `json:"type,omitempty" bson:"type,omitempty"`
	Output   bool   `json:"output,omitempty" bson:"output,omitempty"`
	Value    string `json:"value,omitempty" bson:"value,omitempty"`
	Children []Port `json:"children,omitempty" bson:"children,omitempty"`
}

// Edge is a directed cross-reference between two nodes or ports.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
	Kind string `json:"kind" bson:"kind"`
}

// =============================================================================
// Model → Graph Conversion
// =============================================================================

// FromModel builds the view of g. Nodes are listed in document order,
// parents before children. Links and memberships that point outside g are
// left out.
func FromModel(g *model.Graph) Graph {
	b := &builder{
		out:      Graph{Nodes: []Node{}, Edges: []Edge{}},
		ports:    make(map[*model.Port]string),
		contexts: make(map[*model.Context]string),
		spawners: make(map[*model.SpawnerNode]string),
	}
	if g == nil {
		return b.out
	}
	for i, s := range g.Systems {
		b.system(s, "system/"+strconv.Itoa(i))
	}
	for i, m := range g.Models {
		b.model(m, "model/"+strconv.Itoa(i))
	}
	b.edges()
	return b.out
}

type builder struct {
	out      Graph
	order    []*model.Port
	ports    map[*model.Port]string
	contexts map[*model.Context]string
	spawners map[*model.SpawnerNode]string

	spawnerOrder []*model.SpawnerNode
	events       []eventRef
}

type eventRef struct {
	id string
	n  *model.EventNode
}

func (b *builder) add(n Node, ports []*model.Port) {
	for i, p := range ports {
		n.Ports = append(n.Ports, b.port(p, fmt.Sprintf("%s/port/%d", n.ID, i)))
	}
	b.out.Nodes = append(b.out.Nodes, n)
}

func (b *builder) port(p *model.Port, id string) Port {
	b.ports[p] = id
	b.order = append(b.order, p)
	out := Port{ID: id, Name: p.Name, Output: p.Output}
	if p.Type != primitive.TypeNone {
		out.Type = p.Type.String()
		if p.Value != nil {
			out.Value, _ = primitive.Text.Encode(p.Value)
		}
	}
	for i, c := range p.Children {
		out.Children = append(out.Children, b.port(c, id+"."+strconv.Itoa(i)))
	}
	return out
}

func (b *builder) system(s *model.System, id string) {
	b.add(Node{
		ID:    id,
		Kind:  model.KindSystem.String(),
		Label: "System",
		Meta: map[string]any{
			"capacity":   s.Capacity,
			"blend_mode": s.BlendMode.String(),
			"world":      s.WorldSpace,
		},
	}, nil)
	for i, c := range s.Contexts {
		cid := fmt.Sprintf("%s/context/%d", id, i)
		b.contexts[c] = cid
		b.add(Node{ID: cid, Kind: model.KindContext.String(), Label: descLabel(c.Desc), Parent: id}, c.Ports)
		for j, blk := range c.Blocks {
			n := Node{
				ID:     fmt.Sprintf("%s/block/%d", cid, j),
				Kind:   model.KindBlock.String(),
				Label:  descLabel(blk.Desc),
				Parent: cid,
			}
			if !blk.Enabled {
				n.Meta = map[string]any{"disabled": true}
			}
			b.add(n, blk.Ports)
		}
	}
}

func (b *builder) model(m model.Node, id string) {
	switch m := m.(type) {
	case *model.DataNode:
		b.add(Node{ID: id, Kind: m.Kind().String(), Label: "Data", Meta: exposed(m.Exposed)}, nil)
		for i, d := range m.Blocks {
			label := d.ExposedName
			if label == "" {
				label = descLabel(d.Desc)
			}
			var ports []*model.Port
			if d.Port != nil {
				ports = []*model.Port{d.Port}
			}
			b.add(Node{ID: fmt.Sprintf("%s/block/%d", id, i), Kind: d.Kind().String(), Label: label, Parent: id}, ports)
		}
	case *model.Comment:
		b.add(Node{ID: id, Kind: m.Kind().String(), Label: m.Title}, nil)
	case *model.SpawnerNode:
		b.spawners[m] = id
		b.spawnerOrder = append(b.spawnerOrder, m)
		b.add(Node{ID: id, Kind: m.Kind().String(), Label: "Spawner"}, nil)
		for i, s := range m.Blocks {
			b.add(Node{ID: fmt.Sprintf("%s/block/%d", id, i), Kind: s.Kind().String(), Label: descLabel(s.Desc), Parent: id}, s.Ports)
		}
	case *model.EventNode:
		b.events = append(b.events, eventRef{id, m})
		n := Node{ID: id, Kind: m.Kind().String(), Label: m.Name}
		if m.Locked {
			n.Meta = map[string]any{"locked": true}
		}
		b.add(n, nil)
	case nil:
	default:
		b.add(Node{ID: id, Kind: m.Kind().String()}, nil)
	}
}

// edges emits links from output ports, then spawner memberships, then
// event triggers.
func (b *builder) edges() {
	for _, p := range b.order {
		if !p.Output {
			continue
		}
		for _, q := range p.Links() {
			if to, ok := b.ports[q]; ok {
				b.out.Edges = append(b.out.Edges, Edge{From: b.ports[p], To: to, Kind: EdgeLink})
			}
		}
	}
	for _, sp := range b.spawnerOrder {
		from := b.spawners[sp]
		for _, c := range sp.LinkedContexts() {
			if to, ok := b.contexts[c]; ok {
				b.out.Edges = append(b.out.Edges, Edge{From: from, To: to, Kind: EdgeSpawn})
			}
		}
	}
	for _, e := range b.events {
		for _, sp := range e.n.StartSpawners() {
			if to, ok := b.spawners[sp]; ok {
				b.out.Edges = append(b.out.Edges, Edge{From: e.id, To: to, Kind: EdgeStart})
			}
		}
		for _, sp := range e.n.StopSpawners() {
			if to, ok := b.spawners[sp]; ok {
				b.out.Edges = append(b.out.Edges, Edge{From: e.id, To: to, Kind: EdgeStop})
			}
		}
	}
}

func descLabel(d *model.Descriptor) string {
	switch {
	case d == nil:
		return ""
	case d.Name != "":
		return d.Name
	}
	return d.Key
}

func exposed(b bool) map[string]any {
	if !b {
		return nil
	}
	return map[string]any{"exposed": true}
}
