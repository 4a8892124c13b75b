package serial

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/registry"
	"github.com/matzehuels/vfxgraph/pkg/schema"
)

// Unmarshal reads a document of any supported schema version.
//
// Zero-length input yields an empty graph and no error. Otherwise nodes are
// built in document order and cross-references are resolved afterwards.
// Problems that only affect one block or one edge are reported as
// [Result.Issues]; anything else aborts, in which case the returned
// result holds a fresh empty graph.
func (s *Serializer) Unmarshal(data []byte) (res *Result, err error) {
	start := time.Now()
	r := &reader{
		s:     s,
		reg:   registry.New(),
		graph: model.NewGraph(),
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = recovered("decode", rec)
		}
		if err != nil {
			s.logger.Error("decode failed", "version", r.version, "err", err)
			res = &Result{Graph: model.NewGraph(), Version: r.version, Issues: r.issues}
		}
		s.codecHooks().OnDecode(res.Version, res.Graph.Stats(), len(res.Issues), time.Since(start), err)
	}()

	if len(data) == 0 {
		return &Result{Graph: r.graph}, nil
	}
	if err := r.read(xml.NewDecoder(bytes.NewReader(data))); err != nil {
		return nil, err
	}
	return &Result{Graph: r.graph, Version: r.version, Issues: r.issues}, nil
}

// Read reads a whole document from in and decodes it with Unmarshal.
func (s *Serializer) Read(in io.Reader) (*Result, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return &Result{Graph: model.NewGraph()}, errors.Wrap(errors.ErrCodeStorage, err, "read document")
	}
	return s.Unmarshal(data)
}

type reader struct {
	s       *Serializer
	version int
	reg     *registry.Registry
	graph   *model.Graph
	issues  []Issue

	// skipped holds the port ID ranges of blocks whose layout changed.
	// Links touching them are dropped instead of failing the document.
	skipped []idRange

	connections []connectionXML
	spawners    []spawnerConnectionsXML
	events      []eventConnectionsXML
}

type idRange struct{ lo, hi int32 } // [lo, hi)

func (r *reader) isSkipped(id int32) bool {
	for _, s := range r.skipped {
		if id >= s.lo && id < s.hi {
			return true
		}
	}
	return false
}

func (r *reader) issue(code errors.Code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.issues = append(r.issues, Issue{Code: code, Message: msg})
	r.s.logger.Error(msg, "code", code, "version", r.version)
}

func (r *reader) read(dec *xml.Decoder) error {
	root, err := firstElement(dec)
	if err != nil {
		return err
	}
	if root.Name.Local != rootElement {
		return errors.New(errors.ErrCodeMalformedDocument, "root element is <%s>, want <%s>", root.Name.Local, rootElement)
	}
	if err := r.header(root); err != nil {
		return err
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return errors.New(errors.ErrCodeMalformedDocument, "unexpected end of document")
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDocument, err, "read document")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := r.element(dec, t); err != nil {
				return err
			}
		case xml.EndElement:
			return r.link()
		}
	}
}

func firstElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.New(errors.ErrCodeMalformedDocument, "document has no root element")
		}
		if err != nil {
			return xml.StartElement{}, errors.Wrap(errors.ErrCodeMalformedDocument, err, "read document")
		}
		if t, ok := tok.(xml.StartElement); ok {
			return t, nil
		}
	}
}

func (r *reader) header(root xml.StartElement) error {
	for _, a := range root.Attr {
		if a.Name.Local != "Version" {
			continue
		}
		v, err := strconv.Atoi(a.Value)
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDocument, err, "version %q", a.Value)
		}
		if err := schema.Check(v); err != nil {
			return err
		}
		r.version = v
		return nil
	}
	return errors.New(errors.ErrCodeMalformedDocument, "missing Version attribute")
}

func (r *reader) has(f schema.Field) bool { return schema.Has(f, r.version) }

// element decodes one top-level element and adds it to the graph or to the
// pending cross-reference sections.
func (r *reader) element(dec *xml.Decoder, start xml.StartElement) error {
	decode := func(v any) error {
		if err := dec.DecodeElement(v, &start); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDocument, err, "<%s>", start.Name.Local)
		}
		return nil
	}

	switch start.Name.Local {
	case "System":
		var x systemXML
		if err := decode(&x); err != nil {
			return err
		}
		sys, err := r.system(&x)
		if err != nil {
			return err
		}
		r.graph.AddSystem(sys)
	case "DataNode":
		var x dataNodeXML
		if err := decode(&x); err != nil {
			return err
		}
		n, err := r.dataNode(&x)
		if err != nil {
			return err
		}
		r.graph.AddModel(n)
	case "Comment":
		var x commentXML
		if err := decode(&x); err != nil {
			return err
		}
		n, err := r.comment(&x)
		if err != nil {
			return err
		}
		r.graph.AddModel(n)
	case "SpawnerNode":
		var x spawnerNodeXML
		if err := decode(&x); err != nil {
			return err
		}
		n, err := r.spawnerNode(&x)
		if err != nil {
			return err
		}
		r.graph.AddModel(n)
	case "EventNode":
		var x eventNodeXML
		if err := decode(&x); err != nil {
			return err
		}
		n, err := r.eventNode(&x)
		if err != nil {
			return err
		}
		r.graph.AddModel(n)
	case "Connections":
		var x connectionsXML
		if err := decode(&x); err != nil {
			return err
		}
		r.connections = append(r.connections, x.Items...)
	case "SpawnerConnections":
		var x spawnerConnectionsXML
		if err := decode(&x); err != nil {
			return err
		}
		r.spawners = append(r.spawners, x)
	case "EventConnections":
		var x eventConnectionsXML
		if err := decode(&x); err != nil {
			return err
		}
		r.events = append(r.events, x)
	default:
		r.s.logger.Warn("skipping unknown element", "element", start.Name.Local)
		if err := dec.Skip(); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDocument, err, "<%s>", start.Name.Local)
		}
	}
	return nil
}

// registerNode gives an addressable node its ID: the stored one from
// version 5 on, the next free one before that.
func (r *reader) registerNode(n model.Node, stored string) error {
	if !r.has(schema.ModelID) {
		_, err := r.reg.RegisterNode(n)
		return err
	}
	a := attrs{elem: n.Kind().String()}
	id := a.int32("ModelId", stored)
	if a.err != nil {
		return a.err
	}
	return r.reg.RegisterNodeID(n, id)
}

func (r *reader) system(x *systemXML) (*model.System, error) {
	sys := &model.System{}
	if err := r.registerNode(sys, x.ModelID); err != nil {
		return nil, err
	}

	a := attrs{elem: "System"}
	if r.has(schema.SystemWorldSpace) {
		sys.WorldSpace = a.bool("WorldSpace", x.WorldSpace)
	}
	sys.Capacity = a.uint32("MaxNb", x.MaxNb)
	sys.SpawnRate = a.float("SpawnRate", x.SpawnRate)
	sys.BlendMode = a.blend("BlendingMode", x.BlendingMode)
	if r.has(schema.SystemSoftParticlesFadeDistance) {
		sys.SoftParticlesFadeDistance = a.float("SoftParticlesFadeDistance", x.SoftParticlesFadeDistance)
	}
	if r.has(schema.SystemCameraFadeDistance) {
		sys.CameraFadeDistance = a.float("CameraFadeDistance", x.CameraFadeDistance)
	}
	sys.OrderPriority = a.int32("OrderPriority", x.OrderPriority)
	if r.has(schema.SystemRenderQueueDelta) {
		sys.RenderQueueDelta = a.int32("RenderQueueDelta", x.RenderQueueDelta)
	}
	if a.err != nil {
		return nil, a.err
	}

	for i := range x.Contexts {
		c, err := r.context(&x.Contexts[i])
		if err != nil {
			return nil, err
		}
		sys.AddContext(c)
	}
	return sys, nil
}

func (r *reader) context(x *contextXML) (*model.Context, error) {
	desc, err := r.s.catalog.Context(x.DescID)
	if err != nil {
		return nil, descriptorErr(err, "context", x.DescID)
	}
	c := model.NewContext(desc)

	a := attrs{elem: "Context"}
	c.Position = a.vector2("Position", x.Position)
	c.Collapsed = a.bool("Collapsed", x.Collapsed)
	if a.err != nil {
		return nil, a.err
	}

	// Slots come before blocks, matching the order IDs were assigned in.
	if err := r.slots(x.Slots, c.Ports, desc.Key); err != nil {
		return nil, err
	}
	for i := range x.Blocks {
		b, err := r.block(&x.Blocks[i])
		if err != nil {
			return nil, err
		}
		c.AddBlock(b)
	}
	return c, nil
}

func (r *reader) block(x *blockXML) (*model.Block, error) {
	desc, err := r.s.catalog.Block(x.DescID)
	if err != nil {
		return nil, descriptorErr(err, "block", x.DescID)
	}
	b := model.NewBlock(desc)

	a := attrs{elem: "Block"}
	b.Collapsed = a.bool("Collapsed", x.Collapsed)
	if r.has(schema.BlockEnabled) {
		b.Enabled = a.bool("Enabled", x.Enabled)
	}
	stored := a.int32("Hash", x.Hash)
	if a.err != nil {
		return nil, a.err
	}

	if current := desc.Hash(); stored != current {
		r.issue(errors.ErrCodeSchemaMismatch,
			"block %q: port layout changed (stored hash %d, current %d); port values not restored",
			desc.Key, stored, current)
		if err := r.skip(x.Slots); err != nil {
			return nil, err
		}
		return b, nil
	}
	if err := r.slots(x.Slots, b.Ports, desc.Key); err != nil {
		return nil, err
	}
	return b, nil
}

// skip accounts for the port IDs of slots that are not restored, so later
// automatic IDs stay aligned with the writer's numbering and links to them
// can be told apart from corrupt references.
func (r *reader) skip(slots []slotXML) error {
	for _, s := range slots {
		n := int32(len(s.Values))
		if n == 0 {
			return errors.New(errors.ErrCodeMalformedDocument, "Slot without values")
		}
		if r.has(schema.PortID) {
			a := attrs{elem: "Slot"}
			id := a.int32("SlotId", s.ID)
			if a.err != nil {
				return a.err
			}
			r.skipped = append(r.skipped, idRange{id, id + n})
			continue
		}
		lo := r.reg.NextPortID()
		r.reg.ReservePorts(int(n))
		r.skipped = append(r.skipped, idRange{lo, lo + n})
	}
	return nil
}

func (r *reader) dataNode(x *dataNodeXML) (*model.DataNode, error) {
	n := &model.DataNode{}
	if err := r.registerNode(n, x.ModelID); err != nil {
		return nil, err
	}
	a := attrs{elem: "DataNode"}
	n.Position = a.vector2("Position", x.Position)
	n.Exposed = a.bool("Exposed", x.Exposed)
	if a.err != nil {
		return nil, a.err
	}

	for i := range x.Blocks {
		bx := &x.Blocks[i]
		desc, err := r.s.catalog.DataBlock(bx.DescID)
		if err != nil {
			return nil, descriptorErr(err, "data block", bx.DescID)
		}
		b, err := model.NewDataBlock(desc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknownDescriptor, err, "data block %q", bx.DescID)
		}
		a := attrs{elem: "DataBlock"}
		b.Collapsed = a.bool("Collapsed", bx.Collapsed)
		if a.err != nil {
			return nil, a.err
		}
		if r.has(schema.DataBlockExposedName) {
			b.ExposedName = bx.ExposedName
		}
		if bx.Slot == nil {
			return nil, errors.New(errors.ErrCodeMalformedDocument, "DataBlock %q has no Slot", bx.DescID)
		}
		if err := r.slot(bx.Slot, b.Port); err != nil {
			return nil, err
		}
		n.AddBlock(b)
	}
	return n, nil
}

func (r *reader) comment(x *commentXML) (*model.Comment, error) {
	a := attrs{elem: "Comment"}
	c := &model.Comment{
		Position: a.vector2("Position", x.Position),
		Size:     a.vector2("Size", x.Size),
		Title:    x.Title,
		Body:     x.Body,
		Color:    a.color("Color", x.Color),
	}
	if a.err != nil {
		return nil, a.err
	}
	return c, nil
}

func (r *reader) spawnerNode(x *spawnerNodeXML) (*model.SpawnerNode, error) {
	n := &model.SpawnerNode{}
	if err := r.registerNode(n, x.ModelID); err != nil {
		return nil, err
	}
	a := attrs{elem: "SpawnerNode"}
	n.Position = a.vector2("Position", x.Position)
	if a.err != nil {
		return nil, a.err
	}

	for i := range x.Blocks {
		bx := &x.Blocks[i]
		desc, err := r.s.catalog.SpawnerBlock(bx.Type)
		if err != nil {
			return nil, descriptorErr(err, "spawner block", bx.Type)
		}
		b := model.NewSpawnerBlock(desc)
		a := attrs{elem: "SpawnerBlock"}
		b.Collapsed = a.bool("Collapsed", bx.Collapsed)
		if a.err != nil {
			return nil, a.err
		}
		if err := r.slots(bx.Slots, b.Ports, desc.Key); err != nil {
			return nil, err
		}
		n.AddBlock(b)
	}
	return n, nil
}

func (r *reader) eventNode(x *eventNodeXML) (*model.EventNode, error) {
	n := &model.EventNode{Name: x.Name}
	if err := r.registerNode(n, x.ModelID); err != nil {
		return nil, err
	}
	a := attrs{elem: "EventNode"}
	n.Position = a.vector2("Position", x.Position)
	n.Locked = a.bool("Locked", x.Locked)
	if a.err != nil {
		return nil, a.err
	}
	return n, nil
}

func (r *reader) slots(slots []slotXML, ports []*model.Port, owner string) error {
	if len(slots) > len(ports) {
		return errors.New(errors.ErrCodeMalformedDocument, "%q: %d slots, descriptor has %d ports", owner, len(slots), len(ports))
	}
	for i := range slots {
		if err := r.slot(&slots[i], ports[i]); err != nil {
			return err
		}
	}
	return nil
}

// slot restores the port tree rooted at root. The root takes the stored ID
// when the document has one and every descendant takes the next ID, which
// reproduces the writer's contiguous depth-first numbering.
func (r *reader) slot(x *slotXML, root *model.Port) error {
	var ports []*model.Port
	root.Walk(func(p *model.Port) { ports = append(ports, p) })
	if len(x.Values) != len(ports) {
		return errors.New(errors.ErrCodeMalformedDocument, "slot %q: %d values for %d ports", root.Name, len(x.Values), len(ports))
	}

	explicit := r.has(schema.PortID)
	var rootID int32
	if explicit {
		a := attrs{elem: "Slot"}
		rootID = a.int32("SlotId", x.ID)
		if a.err != nil {
			return a.err
		}
		if err := r.reg.RegisterPortID(root, rootID); err != nil {
			return err
		}
	} else if _, err := r.reg.RegisterPort(root); err != nil {
		return err
	}
	for _, p := range ports[1:] {
		if _, err := r.reg.RegisterPort(p); err != nil {
			return err
		}
	}

	for i, p := range ports {
		v, err := r.s.codec.Decode(x.Values[i], p.Type)
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDocument, err, "slot %q: value of port %q", root.Name, p.Name)
		}
		p.Value = v
	}

	if !explicit {
		return nil
	}
	a := attrs{elem: "Slot"}
	collapsed := a.flags("Collapsed", x.Collapsed, len(ports))
	var world []bool
	if r.has(schema.PortWorldSpace) {
		world = a.flags("WorldSpace", x.WorldSpace, len(ports))
	}
	if a.err != nil {
		return a.err
	}
	for i := range ports {
		p, err := r.reg.ResolvePort(rootID + int32(i))
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDocument, err, "slot %q", root.Name)
		}
		p.Collapsed = collapsed[i]
		if world != nil {
			p.WorldSpace = world[i]
		}
	}
	return nil
}

// link resolves the cross-reference sections once every node and port is
// registered. Owners must resolve; individual targets may be dropped.
func (r *reader) link() error {
	for _, c := range r.connections {
		if err := r.connection(c); err != nil {
			return err
		}
	}
	for _, sc := range r.spawners {
		if err := r.spawnerConnection(sc); err != nil {
			return err
		}
	}
	for _, ec := range r.events {
		if err := r.eventConnection(ec); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) connection(c connectionXML) error {
	a := attrs{elem: "Connection"}
	srcID := a.int32("Id", c.ID)
	targets := a.ids("Connection", c.Targets)
	if a.err != nil {
		return a.err
	}

	if r.isSkipped(srcID) {
		r.issue(errors.ErrCodeDanglingReference, "dropping %d link(s) of port %d: its block was not restored", len(targets), srcID)
		return nil
	}
	src, err := r.reg.ResolvePort(srcID)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDanglingSource, err, "connection source %d", srcID)
	}
	for _, id := range targets {
		dst := r.reg.TryResolvePort(id)
		if dst == nil {
			r.issue(errors.ErrCodeDanglingReference, "cannot link port %d to %d: target does not exist", srcID, id)
			continue
		}
		src.Link(dst)
	}
	return nil
}

func (r *reader) spawnerConnection(sc spawnerConnectionsXML) error {
	a := attrs{elem: "SpawnerConnections"}
	ownerID := a.int32("Id", sc.ID)
	targets := a.ids("SpawnerConnections", sc.Systems)
	if a.err != nil {
		return a.err
	}

	owner, err := r.reg.ResolveNode(ownerID)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDanglingSource, err, "spawner connections owner %d", ownerID)
	}
	spawner, ok := owner.(*model.SpawnerNode)
	if !ok {
		return errors.New(errors.ErrCodeDanglingSource, "spawner connections owner %d is a %s", ownerID, owner.Kind())
	}
	for _, id := range targets {
		n, _ := r.reg.TryResolveNode(id)
		sys, ok := n.(*model.System)
		if !ok || len(sys.Contexts) == 0 {
			r.issue(errors.ErrCodeDanglingReference, "spawner %d: node %d is not a system with contexts", ownerID, id)
			continue
		}
		spawner.LinkContext(sys.Contexts[0])
	}
	return nil
}

func (r *reader) eventConnection(ec eventConnectionsXML) error {
	a := attrs{elem: "EventConnections"}
	ownerID := a.int32("Id", ec.ID)
	var start, stop []int32
	if ec.Start != nil {
		start = a.ids("Start", *ec.Start)
	}
	if ec.Stop != nil {
		stop = a.ids("Stop", *ec.Stop)
	}
	if a.err != nil {
		return a.err
	}

	owner, err := r.reg.ResolveNode(ownerID)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDanglingSource, err, "event connections owner %d", ownerID)
	}
	event, ok := owner.(*model.EventNode)
	if !ok {
		return errors.New(errors.ErrCodeDanglingSource, "event connections owner %d is a %s", ownerID, owner.Kind())
	}
	for _, id := range start {
		if sp := r.spawnerTarget(ownerID, id); sp != nil {
			event.LinkStart(sp)
		}
	}
	for _, id := range stop {
		if sp := r.spawnerTarget(ownerID, id); sp != nil {
			event.LinkStop(sp)
		}
	}
	return nil
}

func (r *reader) spawnerTarget(owner, id int32) *model.SpawnerNode {
	n, _ := r.reg.TryResolveNode(id)
	sp, ok := n.(*model.SpawnerNode)
	if !ok {
		r.issue(errors.ErrCodeDanglingReference, "event %d: node %d is not a spawner", owner, id)
		return nil
	}
	return sp
}

// descriptorErr keeps the catalog's error code when it has one.
func descriptorErr(err error, what, key string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeUnknownDescriptor, err, "%s %q", what, key)
}
