package model

import (
	"slices"

	"github.com/matzehuels/vfxgraph/pkg/primitive"
)

// Port is a typed value holder attached to a Context, Block, DataBlock or
// SpawnerBlock. Composite ports group child ports; the tree shape always
// comes from the owner's descriptor, never from a document.
//
// Links are symmetric: linking a to b also links b to a. Only output ports
// are written to the Connections section, so the direction is recorded by
// which side is the output.
type Port struct {
	Name       string
	Type       primitive.Type
	Output     bool
	Value      primitive.Value
	Collapsed  bool
	WorldSpace bool
	Children   []*Port

	parent *Port
	links  []*Port
}

// NewPort creates a port holding the zero value of t.
func NewPort(name string, t primitive.Type, output bool) *Port {
	return &Port{Name: name, Type: t, Output: output, Value: t.Zero()}
}

// AddChild appends c as the last child of p.
func (p *Port) AddChild(c *Port) {
	c.parent = p
	p.Children = append(p.Children, c)
}

// Parent returns the enclosing composite port, or nil for a root port.
func (p *Port) Parent() *Port { return p.parent }

// Link connects p and q. Linking an already linked pair is a no-op.
// Documents store links from the output side, so at least one end must be
// an output port for the link to be written.
func (p *Port) Link(q *Port) {
	if p == q || slices.Contains(p.links, q) {
		return
	}
	p.links = append(p.links, q)
	q.links = append(q.links, p)
}

// Unlink removes the link between p and q, if any.
func (p *Port) Unlink(q *Port) {
	p.links = slices.DeleteFunc(p.links, func(x *Port) bool { return x == q })
	q.links = slices.DeleteFunc(q.links, func(x *Port) bool { return x == p })
}

// Links returns the ports linked to p in link order.
// The returned slice should not be modified.
func (p *Port) Links() []*Port { return p.links }

// IsLinked reports whether p has at least one link.
func (p *Port) IsLinked() bool { return len(p.links) > 0 }

// Walk calls fn for p and every descendant in depth-first pre-order.
// This is the order in which port IDs are assigned.
func (p *Port) Walk(fn func(*Port)) {
	fn(p)
	for _, c := range p.Children {
		c.Walk(fn)
	}
}

// Count returns the number of ports in the subtree rooted at p, p included.
func (p *Port) Count() int {
	n := 0
	p.Walk(func(*Port) { n++ })
	return n
}
