package model

import (
	"fmt"
	"slices"

	"github.com/matzehuels/vfxgraph/pkg/primitive"
)

// Kind identifies a node variant.
type Kind int

const (
	KindSystem Kind = iota
	KindContext
	KindBlock
	KindDataNode
	KindDataBlock
	KindComment
	KindSpawnerNode
	KindSpawnerBlock
	KindEventNode
)

var kindNames = [...]string{
	KindSystem:       "System",
	KindContext:      "Context",
	KindBlock:        "Block",
	KindDataNode:     "DataNode",
	KindDataBlock:    "DataBlock",
	KindComment:      "Comment",
	KindSpawnerNode:  "SpawnerNode",
	KindSpawnerBlock: "SpawnerBlock",
	KindEventNode:    "EventNode",
}

// String returns the element name of the variant.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Addressable reports whether nodes of this kind take part in
// cross-references and therefore receive a node ID.
func (k Kind) Addressable() bool {
	switch k {
	case KindSystem, KindDataNode, KindSpawnerNode, KindEventNode:
		return true
	}
	return false
}

// Node is one of the nine node variants. The set is closed: every switch
// over a Node's concrete type handles the types declared in this file.
type Node interface {
	Kind() Kind
	node()
}

// BlendMode is the blending mode of a particle system's output.
type BlendMode int

const (
	BlendAdditive BlendMode = iota
	BlendAlpha
	BlendMasked
	BlendAlphaSorted
)

var blendNames = [...]string{"Additive", "Alpha", "Masked", "AlphaSorted"}

func (m BlendMode) String() string {
	if m < 0 || int(m) >= len(blendNames) {
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
	return blendNames[m]
}

// ParseBlendMode parses a name written by BlendMode.String.
func ParseBlendMode(s string) (BlendMode, error) {
	for i, n := range blendNames {
		if n == s {
			return BlendMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown blend mode %q", s)
}

// System is a particle system: a chain of contexts sharing one buffer.
type System struct {
	WorldSpace                bool
	Capacity                  uint32
	SpawnRate                 float32
	BlendMode                 BlendMode
	SoftParticlesFadeDistance float32
	CameraFadeDistance        float32
	OrderPriority             int32
	RenderQueueDelta          int32
	Contexts                  []*Context
}

// AddContext appends c to the system and makes s its owner.
func (s *System) AddContext(c *Context) {
	c.system = s
	s.Contexts = append(s.Contexts, c)
}

// Context is one stage of a system (spawn, init, update, output).
type Context struct {
	Desc      *Descriptor
	Position  primitive.Vector2
	Collapsed bool
	Ports     []*Port
	Blocks    []*Block

	system *System
}

// NewContext creates a context with the descriptor's default ports.
func NewContext(d *Descriptor) *Context {
	return &Context{Desc: d, Ports: d.NewPorts()}
}

// System returns the owning system, or nil if c was never added to one.
func (c *Context) System() *System { return c.system }

// AddBlock appends b to the context.
func (c *Context) AddBlock(b *Block) { c.Blocks = append(c.Blocks, b) }

// Block is an operation inside a context.
type Block struct {
	Desc      *Descriptor
	Collapsed bool
	Enabled   bool
	Ports     []*Port
}

// NewBlock creates an enabled block with the descriptor's default ports.
func NewBlock(d *Descriptor) *Block {
	return &Block{Desc: d, Enabled: true, Ports: d.NewPorts()}
}

// DataNode groups data blocks that expose values to the graph.
type DataNode struct {
	Position primitive.Vector2
	Exposed  bool
	Blocks   []*DataBlock
}

// AddBlock appends b to the data node.
func (n *DataNode) AddBlock(b *DataBlock) { n.Blocks = append(n.Blocks, b) }

// DataBlock holds a single output port.
type DataBlock struct {
	Desc        *Descriptor
	Collapsed   bool
	ExposedName string
	Port        *Port
}

// NewDataBlock creates a data block from a descriptor with exactly one port.
func NewDataBlock(d *Descriptor) (*DataBlock, error) {
	ports := d.NewPorts()
	if len(ports) != 1 {
		return nil, fmt.Errorf("data block %q: want 1 port, got %d", d.Key, len(ports))
	}
	return &DataBlock{Desc: d, Port: ports[0]}, nil
}

// Comment is a free-floating note in the editor.
type Comment struct {
	Position primitive.Vector2
	Size     primitive.Vector2
	Title    string
	Body     string
	Color    primitive.Color
}

// SpawnerNode emits spawn events into the contexts it drives.
type SpawnerNode struct {
	Position primitive.Vector2
	Blocks   []*SpawnerBlock

	contexts []*Context
}

// AddBlock appends b to the spawner.
func (n *SpawnerNode) AddBlock(b *SpawnerBlock) { n.Blocks = append(n.Blocks, b) }

// LinkContext makes n drive c. Linking twice is a no-op. Documents record
// memberships per system, so only a system's first context survives a
// write; other contexts make Marshal fail with INVALID_INPUT.
func (n *SpawnerNode) LinkContext(c *Context) {
	if !slices.Contains(n.contexts, c) {
		n.contexts = append(n.contexts, c)
	}
}

// UnlinkContext stops n from driving c.
func (n *SpawnerNode) UnlinkContext(c *Context) {
	n.contexts = slices.DeleteFunc(n.contexts, func(x *Context) bool { return x == c })
}

// LinkedContexts returns the driven contexts in link order.
func (n *SpawnerNode) LinkedContexts() []*Context { return n.contexts }

// SpawnerBlock is one spawn rule (constant rate, burst, ...) of a spawner.
// Its descriptor is looked up by spawner type.
type SpawnerBlock struct {
	Desc      *Descriptor
	Collapsed bool
	Ports     []*Port
}

// NewSpawnerBlock creates a spawner block with the descriptor's default ports.
func NewSpawnerBlock(d *Descriptor) *SpawnerBlock {
	return &SpawnerBlock{Desc: d, Ports: d.NewPorts()}
}

// EventNode starts and stops spawners when a named event fires.
type EventNode struct {
	Position primitive.Vector2
	Name     string
	Locked   bool

	start []*SpawnerNode
	stop  []*SpawnerNode
}

// LinkStart adds s to the spawners started by the event.
func (n *EventNode) LinkStart(s *SpawnerNode) {
	if !slices.Contains(n.start, s) {
		n.start = append(n.start, s)
	}
}

// LinkStop adds s to the spawners stopped by the event.
func (n *EventNode) LinkStop(s *SpawnerNode) {
	if !slices.Contains(n.stop, s) {
		n.stop = append(n.stop, s)
	}
}

// StartSpawners returns the spawners started by the event.
func (n *EventNode) StartSpawners() []*SpawnerNode { return n.start }

// StopSpawners returns the spawners stopped by the event.
func (n *EventNode) StopSpawners() []*SpawnerNode { return n.stop }

// IsLinked reports whether the event triggers at least one spawner.
func (n *EventNode) IsLinked() bool { return len(n.start)+len(n.stop) > 0 }

func (*System) Kind() Kind       { return KindSystem }
func (*Context) Kind() Kind      { return KindContext }
func (*Block) Kind() Kind        { return KindBlock }
func (*DataNode) Kind() Kind     { return KindDataNode }
func (*DataBlock) Kind() Kind    { return KindDataBlock }
func (*Comment) Kind() Kind      { return KindComment }
func (*SpawnerNode) Kind() Kind  { return KindSpawnerNode }
func (*SpawnerBlock) Kind() Kind { return KindSpawnerBlock }
func (*EventNode) Kind() Kind    { return KindEventNode }

func (*System) node()       {}
func (*Context) node()      {}
func (*Block) node()        {}
func (*DataNode) node()     {}
func (*DataBlock) node()    {}
func (*Comment) node()      {}
func (*SpawnerNode) node()  {}
func (*SpawnerBlock) node() {}
func (*EventNode) node()    {}
