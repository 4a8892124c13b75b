package serial

import (
	"bytes"
	"encoding/xml"
	"io"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/primitive"
	"github.com/matzehuels/vfxgraph/pkg/registry"
	"github.com/matzehuels/vfxgraph/pkg/schema"
)

// Marshal writes g as a document at the current schema version.
//
// Systems are written first, depth-first, followed by the top-level nodes
// in list order. Port links, spawner memberships and event triggers go to
// three trailing sections once every node has an ID, so references may
// point anywhere in the document.
//
// On failure Marshal returns no data at all; callers must keep whatever
// they had stored before.
func (s *Serializer) Marshal(g *model.Graph) (data []byte, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, recovered("encode", r)
		}
		if err != nil {
			s.logger.Error("encode failed", "err", err)
		}
		var st model.Stats
		if g != nil {
			st = g.Stats()
		}
		s.codecHooks().OnEncode(schema.Current, st, time.Since(start), err)
	}()

	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil graph")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	w := &writer{
		s:   s,
		reg: registry.New(),
		enc: xml.NewEncoder(&buf),
	}
	w.enc.Indent("", "    ")
	if err := w.graph(g); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Write marshals g and writes the document to out. Nothing is written if
// encoding fails.
func (s *Serializer) Write(g *model.Graph, out io.Writer) error {
	data, err := s.Marshal(g)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write document")
	}
	return nil
}

type writer struct {
	s        *Serializer
	reg      *registry.Registry
	enc      *xml.Encoder
	spawners []*model.SpawnerNode
	events   []*model.EventNode
}

func (w *writer) graph(g *model.Graph) error {
	root := xml.StartElement{
		Name: xml.Name{Local: rootElement},
		Attr: []xml.Attr{{Name: xml.Name{Local: "Version"}, Value: strconv.Itoa(schema.Current)}},
	}
	if err := w.enc.EncodeToken(root); err != nil {
		return w.encodeErr(err)
	}

	for _, sys := range g.Systems {
		x, err := w.system(sys)
		if err != nil {
			return err
		}
		if err := w.enc.Encode(x); err != nil {
			return w.encodeErr(err)
		}
	}

	for _, n := range g.Models {
		x, err := w.model(n)
		if err != nil {
			return err
		}
		if x == nil {
			continue
		}
		if err := w.enc.Encode(x); err != nil {
			return w.encodeErr(err)
		}
	}

	sections, err := w.crossReferences()
	if err != nil {
		return err
	}
	for _, x := range sections {
		if err := w.enc.Encode(x); err != nil {
			return w.encodeErr(err)
		}
	}

	if err := w.enc.EncodeToken(root.End()); err != nil {
		return w.encodeErr(err)
	}
	if err := w.enc.Close(); err != nil {
		return w.encodeErr(err)
	}
	return nil
}

// model builds the element of a top-level node. Variants that cannot appear
// in the flat list are skipped and yield nil.
func (w *writer) model(n model.Node) (any, error) {
	switch n := n.(type) {
	case *model.DataNode:
		return w.dataNode(n)
	case *model.Comment:
		return commentElement(n)
	case *model.SpawnerNode:
		x, err := w.spawnerNode(n)
		if err != nil {
			return nil, err
		}
		w.spawners = append(w.spawners, n)
		return x, nil
	case *model.EventNode:
		x, err := w.eventNode(n)
		if err != nil {
			return nil, err
		}
		w.events = append(w.events, n)
		return x, nil
	case nil:
		w.s.logger.Warn("skipping nil top-level node")
		return nil, nil
	}
	w.s.logger.Warn("cannot serialize top-level node", "kind", n.Kind())
	return nil, nil
}

func (w *writer) nodeID(n model.Node) (string, error) {
	id, err := w.reg.RegisterNode(n)
	if err != nil {
		return "", err
	}
	return formatInt(id), nil
}

func (w *writer) system(sys *model.System) (*systemXML, error) {
	id, err := w.nodeID(sys)
	if err != nil {
		return nil, err
	}
	x := &systemXML{
		ModelID:                   id,
		WorldSpace:                formatBool(sys.WorldSpace),
		MaxNb:                     strconv.FormatUint(uint64(sys.Capacity), 10),
		SpawnRate:                 primitive.FormatFloat(sys.SpawnRate),
		BlendingMode:              sys.BlendMode.String(),
		SoftParticlesFadeDistance: primitive.FormatFloat(sys.SoftParticlesFadeDistance),
		CameraFadeDistance:        primitive.FormatFloat(sys.CameraFadeDistance),
		OrderPriority:             formatInt(sys.OrderPriority),
		RenderQueueDelta:          formatInt(sys.RenderQueueDelta),
	}
	for _, c := range sys.Contexts {
		cx, err := w.context(c)
		if err != nil {
			return nil, err
		}
		x.Contexts = append(x.Contexts, *cx)
	}
	return x, nil
}

func (w *writer) context(c *model.Context) (*contextXML, error) {
	if c.Desc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "context without descriptor")
	}
	x := &contextXML{
		DescID:    c.Desc.Key,
		Position:  formatVector2(c.Position),
		Collapsed: formatBool(c.Collapsed),
	}
	slots, err := w.slots(c.Ports)
	if err != nil {
		return nil, err
	}
	x.Slots = slots
	for _, b := range c.Blocks {
		bx, err := w.block(b)
		if err != nil {
			return nil, err
		}
		x.Blocks = append(x.Blocks, *bx)
	}
	return x, nil
}

func (w *writer) block(b *model.Block) (*blockXML, error) {
	if b.Desc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "block without descriptor")
	}
	slots, err := w.slots(b.Ports)
	if err != nil {
		return nil, err
	}
	return &blockXML{
		DescID:    b.Desc.Key,
		Hash:      formatInt(b.Desc.Hash()),
		Collapsed: formatBool(b.Collapsed),
		Enabled:   formatBool(b.Enabled),
		Slots:     slots,
	}, nil
}

func (w *writer) dataNode(n *model.DataNode) (*dataNodeXML, error) {
	id, err := w.nodeID(n)
	if err != nil {
		return nil, err
	}
	x := &dataNodeXML{
		ModelID:  id,
		Position: formatVector2(n.Position),
		Exposed:  formatBool(n.Exposed),
	}
	for _, b := range n.Blocks {
		if b.Desc == nil || b.Port == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "data block without descriptor or port")
		}
		if err := checkText("exposed name", b.ExposedName); err != nil {
			return nil, err
		}
		slot, err := w.slot(b.Port)
		if err != nil {
			return nil, err
		}
		x.Blocks = append(x.Blocks, dataBlockXML{
			DescID:      b.Desc.Key,
			Collapsed:   formatBool(b.Collapsed),
			ExposedName: b.ExposedName,
			Slot:        slot,
		})
	}
	return x, nil
}

func commentElement(c *model.Comment) (*commentXML, error) {
	if err := checkText("comment title", c.Title); err != nil {
		return nil, err
	}
	if err := checkText("comment body", c.Body); err != nil {
		return nil, err
	}
	return &commentXML{
		Position: formatVector2(c.Position),
		Size:     formatVector2(c.Size),
		Title:    c.Title,
		Body:     c.Body,
		Color:    formatColor(c.Color),
	}, nil
}

func (w *writer) spawnerNode(n *model.SpawnerNode) (*spawnerNodeXML, error) {
	id, err := w.nodeID(n)
	if err != nil {
		return nil, err
	}
	x := &spawnerNodeXML{ModelID: id, Position: formatVector2(n.Position)}
	for _, b := range n.Blocks {
		if b.Desc == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "spawner block without descriptor")
		}
		slots, err := w.slots(b.Ports)
		if err != nil {
			return nil, err
		}
		x.Blocks = append(x.Blocks, spawnerBlockXML{
			Type:      b.Desc.Key,
			Collapsed: formatBool(b.Collapsed),
			Slots:     slots,
		})
	}
	return x, nil
}

func (w *writer) eventNode(n *model.EventNode) (*eventNodeXML, error) {
	if err := checkText("event name", n.Name); err != nil {
		return nil, err
	}
	id, err := w.nodeID(n)
	if err != nil {
		return nil, err
	}
	return &eventNodeXML{
		ModelID:  id,
		Position: formatVector2(n.Position),
		Name:     n.Name,
		Locked:   formatBool(n.Locked),
	}, nil
}

func (w *writer) slots(ports []*model.Port) ([]slotXML, error) {
	var out []slotXML
	for _, p := range ports {
		x, err := w.slot(p)
		if err != nil {
			return nil, err
		}
		out = append(out, *x)
	}
	return out, nil
}

// slot registers the port tree rooted at root in depth-first pre-order and
// collects one value and one pair of flags per port. Only the root ID is
// written; readers recover the rest from the order.
func (w *writer) slot(root *model.Port) (*slotXML, error) {
	var (
		values           []string
		collapsed, world []bool
		rootID           int32
	)
	var visit func(p *model.Port, isRoot bool) error
	visit = func(p *model.Port, isRoot bool) error {
		id, err := w.reg.RegisterPort(p)
		if err != nil {
			return err
		}
		if isRoot {
			rootID = id
		}
		v, err := w.value(p)
		if err != nil {
			return err
		}
		values = append(values, v)
		collapsed = append(collapsed, p.Collapsed)
		world = append(world, p.WorldSpace)
		for _, c := range p.Children {
			if err := visit(c, false); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(root, true); err != nil {
		return nil, err
	}
	return &slotXML{
		ID:         formatInt(rootID),
		Values:     values,
		Collapsed:  formatFlags(collapsed),
		WorldSpace: formatFlags(world),
	}, nil
}

func (w *writer) value(p *model.Port) (string, error) {
	if p.Type == primitive.TypeNone {
		return "", nil
	}
	v := p.Value
	if v == nil {
		v = p.Type.Zero()
	}
	if v.Type() != p.Type {
		return "", errors.New(errors.ErrCodeInvalidInput, "port %q holds a %s value, want %s", p.Name, v.Type(), p.Type)
	}
	s, err := w.s.codec.Encode(v)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "port %q", p.Name)
	}
	if err := checkText("port "+strconv.Quote(p.Name), s); err != nil {
		return "", err
	}
	return s, nil
}

// checkText rejects text that an XML document cannot carry verbatim:
// invalid UTF-8 and characters outside the XML 1.0 Char production.
func checkText(field, s string) error {
	if !utf8.ValidString(s) {
		return errors.New(errors.ErrCodeInvalidInput, "%s is not valid UTF-8", field)
	}
	for i, r := range s {
		if !isXMLChar(r) {
			return errors.New(errors.ErrCodeInvalidInput, "%s has character %U at byte %d that XML cannot hold", field, r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09, r == 0x0A, r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// crossReferences builds the Connections, SpawnerConnections and
// EventConnections sections. Every endpoint must have been registered
// while writing nodes.
func (w *writer) crossReferences() ([]any, error) {
	conns := &connectionsXML{}
	for _, p := range w.reg.Ports() {
		if !p.IsLinked() {
			continue
		}
		src, _ := w.reg.PortID(p)
		if !p.Output {
			// Links are stored from the output side only.
			for _, q := range p.Links() {
				if q.Output {
					continue
				}
				dst, _ := w.reg.PortID(q)
				return nil, errors.New(errors.ErrCodeInvalidInput, "port %d (%s) is linked to input port %d (%s); links need an output end", src, p.Name, dst, q.Name)
			}
			continue
		}
		targets := make([]int32, 0, len(p.Links()))
		for _, q := range p.Links() {
			id, ok := w.reg.PortID(q)
			if !ok {
				return nil, errors.New(errors.ErrCodeDanglingReference, "port %d (%s) is linked to a port outside the graph", src, p.Name)
			}
			targets = append(targets, id)
		}
		slices.Sort(targets)
		conns.Items = append(conns.Items, connectionXML{ID: formatInt(src), Targets: formatIDs(targets)})
	}
	sections := []any{conns}

	for _, n := range w.spawners {
		contexts := n.LinkedContexts()
		if len(contexts) == 0 {
			continue
		}
		owner, _ := w.reg.NodeID(n)
		var systems []int32
		for _, c := range contexts {
			var (
				id int32
				ok bool
			)
			sys := c.System()
			if sys != nil {
				id, ok = w.reg.NodeID(sys)
			}
			if !ok {
				return nil, errors.New(errors.ErrCodeDanglingReference, "spawner %d drives a context outside the graph", owner)
			}
			// Memberships are stored per system and read back onto its
			// first context.
			if len(sys.Contexts) == 0 || sys.Contexts[0] != c {
				return nil, errors.New(errors.ErrCodeInvalidInput, "spawner %d drives context %q of system %d, only a system's first context can be driven", owner, contextName(c), id)
			}
			// Only the owning system is recorded, so several contexts of
			// one system collapse into one entry.
			if !slices.Contains(systems, id) {
				systems = append(systems, id)
			}
		}
		sections = append(sections, &spawnerConnectionsXML{ID: formatInt(owner), Systems: formatIDs(systems)})
	}

	for _, n := range w.events {
		if !n.IsLinked() {
			continue
		}
		owner, _ := w.reg.NodeID(n)
		start, err := w.spawnerIDs(owner, n.StartSpawners())
		if err != nil {
			return nil, err
		}
		stop, err := w.spawnerIDs(owner, n.StopSpawners())
		if err != nil {
			return nil, err
		}
		sections = append(sections, &eventConnectionsXML{ID: formatInt(owner), Start: &start, Stop: &stop})
	}
	return sections, nil
}

func contextName(c *model.Context) string {
	if c.Desc != nil {
		return c.Desc.Key
	}
	return "?"
}

func (w *writer) spawnerIDs(owner int32, spawners []*model.SpawnerNode) (string, error) {
	ids := make([]int32, 0, len(spawners))
	for _, sp := range spawners {
		id, ok := w.reg.NodeID(sp)
		if !ok {
			return "", errors.New(errors.ErrCodeDanglingReference, "event %d triggers a spawner outside the graph", owner)
		}
		ids = append(ids, id)
	}
	return formatIDs(ids), nil
}

func (w *writer) encodeErr(err error) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "encode document")
}
