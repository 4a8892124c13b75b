package model

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/vfxgraph/pkg/primitive"
)

// PortSpec describes one port of a descriptor's layout.
type PortSpec struct {
	Name     string
	Type     primitive.Type
	Output   bool
	Default  primitive.Value // nil means the type's zero value
	Children []PortSpec
}

// Descriptor is a node prototype from the catalog: a stable key plus the
// port layout every instance starts with.
type Descriptor struct {
	Key   string
	Name  string
	Ports []PortSpec
}

// Hash returns the structural compatibility hash of the port layout.
// Names, types, directions and nesting contribute; default values do not,
// so changing a default never invalidates saved documents.
func (d *Descriptor) Hash() int32 {
	h := xxhash.New()
	var walk func(specs []PortSpec)
	walk = func(specs []PortSpec) {
		_, _ = h.WriteString("[")
		for _, s := range specs {
			_, _ = h.WriteString(s.Name)
			_, _ = h.WriteString(":")
			_, _ = h.WriteString(s.Type.String())
			_, _ = h.WriteString(":")
			_, _ = h.WriteString(strconv.FormatBool(s.Output))
			walk(s.Children)
			_, _ = h.WriteString(";")
		}
		_, _ = h.WriteString("]")
	}
	walk(d.Ports)
	return int32(h.Sum64())
}

// NewPorts instantiates fresh port trees holding the layout's defaults.
func (d *Descriptor) NewPorts() []*Port {
	ports := make([]*Port, len(d.Ports))
	for i, s := range d.Ports {
		ports[i] = s.instantiate()
	}
	return ports
}

func (s PortSpec) instantiate() *Port {
	p := NewPort(s.Name, s.Type, s.Output)
	if s.Default != nil && s.Default.Type() == s.Type {
		p.Value = s.Default
	}
	for _, c := range s.Children {
		p.AddChild(c.instantiate())
	}
	return p
}
