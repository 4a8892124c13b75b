// Package registry assigns document identities to nodes and ports.
//
// A [Registry] holds two independent ID spaces: one for addressable nodes
// (systems, data nodes, spawners and events) and one for ports. Each space
// is a bidirectional map between 32-bit IDs and objects with its own
// counter. A registry lives for exactly one encode or decode call and is
// discarded once cross-references are resolved, so no identity state leaks
// between calls.
//
// Automatic registration hands out the counter value and increments it.
// Explicit registration with ID k stores the object under k and moves the
// counter to k+1, which is what lets the reader reproduce the writer's
// depth-first port numbering when a document only stores root port IDs.
package registry

import (
	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
)

// Registry is the call-scoped identity map. The zero value is not usable;
// use New. A Registry is not safe for concurrent use.
type Registry struct {
	nodes *table[model.Node]
	ports *table[*model.Port]
}

// New returns an empty registry with both counters at zero.
func New() *Registry {
	return &Registry{
		nodes: newTable[model.Node]("node"),
		ports: newTable[*model.Port]("port"),
	}
}

// RegisterNode assigns the next node ID to n.
func (r *Registry) RegisterNode(n model.Node) (int32, error) { return r.nodes.register(n) }

// RegisterNodeID stores n under id and moves the node counter to id+1.
func (r *Registry) RegisterNodeID(n model.Node, id int32) error { return r.nodes.registerID(n, id) }

// ResolveNode returns the node registered under id, or UNKNOWN_ID.
func (r *Registry) ResolveNode(id int32) (model.Node, error) { return r.nodes.resolve(id) }

// TryResolveNode returns the node registered under id and whether it exists.
func (r *Registry) TryResolveNode(id int32) (model.Node, bool) { return r.nodes.lookup(id) }

// NodeID returns the ID assigned to n.
func (r *Registry) NodeID(n model.Node) (int32, bool) {
	id, ok := r.nodes.ids[n]
	return id, ok
}

// RegisterPort assigns the next port ID to p.
func (r *Registry) RegisterPort(p *model.Port) (int32, error) { return r.ports.register(p) }

// RegisterPortID stores p under id and moves the port counter to id+1.
func (r *Registry) RegisterPortID(p *model.Port, id int32) error { return r.ports.registerID(p, id) }

// ResolvePort returns the port registered under id, or UNKNOWN_ID.
func (r *Registry) ResolvePort(id int32) (*model.Port, error) { return r.ports.resolve(id) }

// TryResolvePort returns the port registered under id, or nil. It never fails.
func (r *Registry) TryResolvePort(id int32) *model.Port {
	p, _ := r.ports.lookup(id)
	return p
}

// PortID returns the ID assigned to p.
func (r *Registry) PortID(p *model.Port) (int32, bool) {
	id, ok := r.ports.ids[p]
	return id, ok
}

// ReservePorts advances the port counter by n without registering
// anything. The skipped IDs resolve to nothing.
func (r *Registry) ReservePorts(n int) { r.ports.next += int32(n) }

// Ports returns the registered ports in registration order.
func (r *Registry) Ports() []*model.Port { return r.ports.order }

// NodeCount returns the number of registered nodes.
func (r *Registry) NodeCount() int { return len(r.nodes.order) }

// PortCount returns the number of registered ports.
func (r *Registry) PortCount() int { return len(r.ports.order) }

// NextNodeID returns the ID the next automatic node registration would get.
func (r *Registry) NextNodeID() int32 { return r.nodes.next }

// NextPortID returns the ID the next automatic port registration would get.
func (r *Registry) NextPortID() int32 { return r.ports.next }

type table[T comparable] struct {
	name  string
	next  int32
	byID  map[int32]T
	ids   map[T]int32
	order []T
}

func newTable[T comparable](name string) *table[T] {
	return &table[T]{
		name: name,
		byID: make(map[int32]T),
		ids:  make(map[T]int32),
	}
}

func (t *table[T]) register(v T) (int32, error) {
	id := t.next
	if err := t.registerID(v, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (t *table[T]) registerID(v T, id int32) error {
	if _, ok := t.byID[id]; ok {
		return errors.New(errors.ErrCodeDuplicateID, "%s id %d already registered", t.name, id)
	}
	if prev, ok := t.ids[v]; ok {
		return errors.New(errors.ErrCodeDuplicateID, "%s already registered as %d", t.name, prev)
	}
	t.byID[id] = v
	t.ids[v] = id
	t.order = append(t.order, v)
	t.next = id + 1
	return nil
}

func (t *table[T]) lookup(id int32) (T, bool) {
	v, ok := t.byID[id]
	return v, ok
}

func (t *table[T]) resolve(id int32) (T, error) {
	v, ok := t.byID[id]
	if !ok {
		var zero T
		return zero, errors.New(errors.ErrCodeUnknownID, "unknown %s id %d", t.name, id)
	}
	return v, nil
}
