package serial_test

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/primitive"
	"github.com/matzehuels/vfxgraph/pkg/schema"
	"github.com/matzehuels/vfxgraph/pkg/serial"
)

func TestRoundTrip(t *testing.T) {
	s, _ := newSerializer(t)
	f := buildFixture(t)

	data, err := s.Marshal(f.graph)
	require.NoError(t, err)

	res, err := s.Unmarshal(data)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Equal(t, schema.Current, res.Version)

	g := res.Graph
	assert.Equal(t, f.graph.Stats(), g.Stats())
	require.Len(t, g.Systems, 1)
	require.Len(t, g.Models, 6)

	sys := g.Systems[0]
	assert.True(t, sys.WorldSpace)
	assert.Equal(t, uint32(1024), sys.Capacity)
	assert.Equal(t, float32(12.5), sys.SpawnRate)
	assert.Equal(t, model.BlendAlpha, sys.BlendMode)
	assert.Equal(t, float32(0.5), sys.SoftParticlesFadeDistance)
	assert.Equal(t, float32(2), sys.CameraFadeDistance)
	assert.Equal(t, int32(3), sys.OrderPriority)
	assert.Equal(t, int32(-1), sys.RenderQueueDelta)

	require.Len(t, sys.Contexts, 4)
	for i, c := range sys.Contexts {
		assert.Same(t, sys, c.System(), "context %d owner", i)
		assert.Equal(t, f.system.Contexts[i].Desc.Key, c.Desc.Key)
		assert.Equal(t, f.system.Contexts[i].Position, c.Position)
		assert.Equal(t, f.system.Contexts[i].Collapsed, c.Collapsed)
	}

	initCtx := sys.Contexts[1]
	assert.Equal(t, primitive.Vector3{X: 4, Y: 4, Z: 4}, initCtx.Ports[0].Children[1].Value)
	require.Len(t, initCtx.Blocks, 3)
	sphere, velocity, lifetime := initCtx.Blocks[0], initCtx.Blocks[1], initCtx.Blocks[2]
	assert.Equal(t, primitive.Float(2.5), sphere.Ports[0].Children[1].Value)
	assert.True(t, sphere.Ports[0].Collapsed)
	assert.Equal(t, primitive.Vector3{X: 4, Y: 5, Z: 6}, velocity.Ports[0].Value)

	update := sys.Contexts[2]
	require.Len(t, update.Blocks, 5)
	assert.False(t, update.Blocks[0].Enabled)
	assert.True(t, update.Blocks[1].Enabled)
	assert.Equal(t, primitive.Spline{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 3}}, update.Blocks[4].Ports[0].Value)
	assert.Equal(t, primitive.String("Textures/smoke puff"), sys.Contexts[3].Ports[0].Value)

	data0 := g.Models[0].(*model.DataNode)
	assert.True(t, data0.Exposed)
	require.Len(t, data0.Blocks, 2)
	speed, direction := data0.Blocks[0], data0.Blocks[1]
	assert.Equal(t, "Speed", speed.ExposedName)
	assert.Equal(t, primitive.Float(3), speed.Port.Value)
	assert.True(t, direction.Collapsed)

	comment := g.Models[1].(*model.Comment)
	assert.Equal(t, "rises & fades <slowly>", comment.Body)
	assert.Equal(t, primitive.Color{R: 1, G: 0.5, B: 0, A: 1}, comment.Color)

	// Links come back between the same ports.
	assert.ElementsMatch(t, []*model.Port{lifetime.Ports[0], update.Blocks[0].Ports[0]}, speed.Port.Links())
	assert.Equal(t, []*model.Port{velocity.Ports[0]}, direction.Port.Links())
	assert.Equal(t, []*model.Port{sphere.Ports[1]}, sys.Contexts[0].Ports[0].Links())

	spawner := g.Models[2].(*model.SpawnerNode)
	require.Len(t, spawner.Blocks, 2)
	assert.Equal(t, "Burst", spawner.Blocks[1].Desc.Key)
	assert.True(t, spawner.Blocks[1].Collapsed)
	assert.Equal(t, []*model.Context{sys.Contexts[0]}, spawner.LinkedContexts())

	play, stop, unused := g.Models[3].(*model.EventNode), g.Models[4].(*model.EventNode), g.Models[5].(*model.EventNode)
	assert.Equal(t, "OnPlay", play.Name)
	assert.Equal(t, []*model.SpawnerNode{spawner}, play.StartSpawners())
	assert.Empty(t, play.StopSpawners())
	assert.True(t, stop.Locked)
	assert.Equal(t, []*model.SpawnerNode{spawner}, stop.StopSpawners())
	assert.False(t, unused.IsLinked())
}

func TestMarshalIdempotent(t *testing.T) {
	s, _ := newSerializer(t)
	first, err := s.Marshal(buildFixture(t).graph)
	require.NoError(t, err)

	res, err := s.Unmarshal(first)
	require.NoError(t, err)
	second, err := s.Marshal(res.Graph)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestMarshalDeterministic(t *testing.T) {
	s, _ := newSerializer(t)
	a, err := s.Marshal(buildFixture(t).graph)
	require.NoError(t, err)
	b, err := s.Marshal(buildFixture(t).graph)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

var slotIDPattern = regexp.MustCompile(`SlotId="(\d+)"`)

func TestPortIDsContiguous(t *testing.T) {
	s, _ := newSerializer(t)
	f := buildFixture(t)
	data, err := s.Marshal(f.graph)
	require.NoError(t, err)

	// Each root ID must follow the previous root's whole subtree.
	var roots []*model.Port
	for _, c := range f.system.Contexts {
		roots = append(roots, c.Ports...)
		for _, b := range c.Blocks {
			roots = append(roots, b.Ports...)
		}
	}
	roots = append(roots, f.speed.Port, f.direction.Port)
	for _, b := range f.spawner.Blocks {
		roots = append(roots, b.Ports...)
	}

	matches := slotIDPattern.FindAllStringSubmatch(string(data), -1)
	require.Len(t, matches, len(roots))
	next := 0
	for i, m := range matches {
		id, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.Equal(t, next, id, "slot %d (%s)", i, roots[i].Name)
		next += roots[i].Count()
	}
}

func TestNestedFlagsRestored(t *testing.T) {
	s, _ := newSerializer(t)
	f := buildFixture(t)
	data, err := s.Marshal(f.graph)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<Collapsed>true false true false</Collapsed>")
	assert.Contains(t, string(data), "<WorldSpace>false true false true</WorldSpace>")

	res, err := s.Unmarshal(data)
	require.NoError(t, err)
	box := res.Graph.Systems[0].Contexts[2].Blocks[1]
	require.Equal(t, "orientedBox", box.Desc.Key)

	var collapsed, world []bool
	box.Ports[0].Walk(func(p *model.Port) {
		collapsed = append(collapsed, p.Collapsed)
		world = append(world, p.WorldSpace)
	})
	assert.Equal(t, []bool{true, false, true, false}, collapsed)
	assert.Equal(t, []bool{false, true, false, true}, world)
	assert.Equal(t, primitive.Float(0.25), box.Ports[0].Children[2].Value)
	assert.Equal(t, primitive.Vector3{X: 1, Y: 1, Z: 1}, box.Ports[0].Children[1].Value)
}

func TestEmptyDocument(t *testing.T) {
	s, _ := newSerializer(t)

	res, err := s.Unmarshal(nil)
	require.NoError(t, err)
	assert.True(t, res.Graph.IsEmpty())
	assert.Zero(t, res.Version)
	assert.Empty(t, res.Issues)

	data, err := s.Marshal(model.NewGraph())
	require.NoError(t, err)
	res, err = s.Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, res.Graph.IsEmpty())
	assert.Equal(t, schema.Current, res.Version)
}

func TestSelfClosingRoot(t *testing.T) {
	s, _ := newSerializer(t)
	res, err := s.Unmarshal([]byte(`<Graph Version="7"/>`))
	require.NoError(t, err)
	assert.True(t, res.Graph.IsEmpty())
	assert.Equal(t, 7, res.Version)
}

// v10Doc is a small current-version document: one system whose spawn
// context feeds the arc of a sphere block, plus a float data node.
//
// Port IDs: spawnCount 0, sphere 1 (center 2, radius 3), arc 4, value 5.
func v10Doc(t *testing.T, connections string) []byte {
	t.Helper()
	c := lib{t, testCatalog(t)}
	hash := c.block("positionSphere").Hash()
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Graph Version="10">
    <System ModelId="0" WorldSpace="false" MaxNb="16" SpawnRate="1" BlendingMode="Additive" SoftParticlesFadeDistance="0" CameraFadeDistance="0" OrderPriority="0" RenderQueueDelta="0">
        <Context DescId="spawn" Position="0,0" Collapsed="false">
            <Slot SlotId="0">
                <Values><Value>0</Value></Values>
                <Collapsed>false</Collapsed>
                <WorldSpace>false</WorldSpace>
            </Slot>
            <Block DescId="positionSphere" Hash="` + strconv.FormatInt(int64(hash), 10) + `" Collapsed="false" Enabled="true">
                <Slot SlotId="1">
                    <Values><Value></Value><Value>0,0,0</Value><Value>1</Value></Values>
                    <Collapsed>false false false</Collapsed>
                    <WorldSpace>false false false</WorldSpace>
                </Slot>
                <Slot SlotId="4">
                    <Values><Value>6.2831855</Value></Values>
                    <Collapsed>false</Collapsed>
                    <WorldSpace>false</WorldSpace>
                </Slot>
            </Block>
        </Context>
    </System>
    <DataNode ModelId="1" Position="0,0" Exposed="false">
        <DataBlock DescId="float" Collapsed="false" ExposedName="">
            <Slot SlotId="5">
                <Values><Value>2</Value></Values>
                <Collapsed>false</Collapsed>
                <WorldSpace>false</WorldSpace>
            </Slot>
        </DataBlock>
    </DataNode>
    <SpawnerNode ModelId="2" Position="0,0"></SpawnerNode>
    <EventNode ModelId="3" Position="0,0" Name="Go" Locked="false"></EventNode>
    ` + connections + `
</Graph>
`)
}

func TestDanglingTargetDropped(t *testing.T) {
	s, logs := newSerializer(t)
	res, err := s.Unmarshal(v10Doc(t, `<Connections><Connection Id="0">4 999 3</Connection></Connections>`))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count(errors.ErrCodeDanglingReference))
	assert.Len(t, res.Issues, 1)
	assert.Contains(t, res.Issues[0].Message, "999")
	assert.Contains(t, logs.String(), "999")

	src := res.Graph.Systems[0].Contexts[0].Ports[0]
	sphere := res.Graph.Systems[0].Contexts[0].Blocks[0]
	assert.ElementsMatch(t, []*model.Port{sphere.Ports[1], sphere.Ports[0].Children[1]}, src.Links())
}

func TestCrossReferenceTargets(t *testing.T) {
	s, _ := newSerializer(t)
	res, err := s.Unmarshal(v10Doc(t, `
    <SpawnerConnections Id="2">0 1 7</SpawnerConnections>
    <EventConnections Id="3">
        <Start>2 1</Start>
        <Stop>2</Stop>
    </EventConnections>`))
	require.NoError(t, err)

	// Node 1 is a data node and 7 does not exist; both are dropped.
	assert.Equal(t, 3, res.Count(errors.ErrCodeDanglingReference))
	spawner := res.Graph.Models[1].(*model.SpawnerNode)
	assert.Equal(t, []*model.Context{res.Graph.Systems[0].Contexts[0]}, spawner.LinkedContexts())
	event := res.Graph.Models[2].(*model.EventNode)
	assert.Equal(t, []*model.SpawnerNode{spawner}, event.StartSpawners())
	assert.Equal(t, []*model.SpawnerNode{spawner}, event.StopSpawners())
}

func TestAbortingReferences(t *testing.T) {
	tests := []struct {
		name     string
		sections string
	}{
		{"unknown source", `<Connections><Connection Id="42">4</Connection></Connections>`},
		{"unknown spawner owner", `<SpawnerConnections Id="9">0</SpawnerConnections>`},
		{"spawner owner is system", `<SpawnerConnections Id="0">0</SpawnerConnections>`},
		{"unknown event owner", `<EventConnections Id="9"><Start>2</Start><Stop></Stop></EventConnections>`},
		{"event owner is spawner", `<EventConnections Id="2"><Start>2</Start><Stop></Stop></EventConnections>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSerializer(t)
			res, err := s.Unmarshal(v10Doc(t, tt.sections))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeDanglingSource), "got %v", err)
			require.NotNil(t, res)
			assert.True(t, res.Graph.IsEmpty())
		})
	}
}

func TestUnknownDescriptor(t *testing.T) {
	s, _ := newSerializer(t)
	doc := bytes.Replace(v10Doc(t, ""), []byte(`DescId="float"`), []byte(`DescId="quaternion"`), 1)

	res, err := s.Unmarshal(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownDescriptor), "got %v", err)
	assert.True(t, res.Graph.IsEmpty())
}

func TestHashMismatch(t *testing.T) {
	s, logs := newSerializer(t)
	f := buildFixture(t)
	data, err := s.Marshal(f.graph)
	require.NoError(t, err)

	hash := strconv.FormatInt(int64(f.velocity.Desc.Hash()), 10)
	old := `DescId="setVelocity" Hash="` + hash + `"`
	require.Contains(t, string(data), old)
	data = []byte(strings.Replace(string(data), old, `DescId="setVelocity" Hash="12345"`, 1))

	res, err := s.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count(errors.ErrCodeSchemaMismatch))
	assert.Equal(t, 1, res.Count(errors.ErrCodeDanglingReference))
	assert.Len(t, res.Issues, 2)
	assert.Contains(t, logs.String(), "setVelocity")

	initCtx := res.Graph.Systems[0].Contexts[1]
	velocity := initCtx.Blocks[1]
	assert.Equal(t, primitive.Vector3{X: 0, Y: 1, Z: 0}, velocity.Ports[0].Value, "default kept")
	assert.False(t, velocity.Ports[0].IsLinked())
	assert.Equal(t, primitive.Float(2.5), initCtx.Blocks[0].Ports[0].Children[1].Value, "neighbor restored")

	// Every other link survives.
	speed := res.Graph.Models[0].(*model.DataNode).Blocks[0]
	assert.Len(t, speed.Port.Links(), 2)
	assert.True(t, res.Graph.Systems[0].Contexts[0].Ports[0].IsLinked())
}

func TestLegacyVersion3(t *testing.T) {
	c := lib{t, testCatalog(t)}
	hash := strconv.FormatInt(int64(c.block("setVelocity").Hash()), 10)
	doc := `<Graph Version="3">
    <System WorldSpace="true" MaxNb="64" SpawnRate="2" BlendingMode="Masked" SoftParticlesFadeDistance="9" CameraFadeDistance="9" OrderPriority="1" RenderQueueDelta="5">
        <Context DescId="initialize" Position="1,2" Collapsed="true">
            <Slot>
                <Values><Value></Value><Value>1,2,3</Value><Value>2,2,2</Value></Values>
                <Collapsed>true true true</Collapsed>
            </Slot>
            <Block DescId="setVelocity" Hash="` + hash + `" Collapsed="true" Enabled="false">
                <Slot><Values><Value>7,8,9</Value></Values></Slot>
            </Block>
        </Context>
    </System>
    <DataNode Position="0,0" Exposed="true">
        <DataBlock DescId="vector3" Collapsed="false" ExposedName="Dir">
            <Slot><Values><Value>0,0,1</Value></Values></Slot>
        </DataBlock>
    </DataNode>
    <Connections><Connection Id="4">3</Connection></Connections>
</Graph>`

	s, _ := newSerializer(t)
	res, err := s.Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 3, res.Version)

	sys := res.Graph.Systems[0]
	assert.False(t, sys.WorldSpace, "added in 7")
	assert.Zero(t, sys.SoftParticlesFadeDistance, "added in 4")
	assert.Zero(t, sys.RenderQueueDelta, "added in 9")
	assert.Zero(t, sys.CameraFadeDistance, "added in 10")
	assert.Equal(t, uint32(64), sys.Capacity)
	assert.Equal(t, model.BlendMasked, sys.BlendMode)

	ctx := sys.Contexts[0]
	assert.True(t, ctx.Collapsed)
	assert.Equal(t, primitive.Vector3{X: 1, Y: 2, Z: 3}, ctx.Ports[0].Children[0].Value)
	assert.False(t, ctx.Ports[0].Collapsed, "port flags need explicit port IDs")

	velocity := ctx.Blocks[0]
	assert.False(t, velocity.Enabled)
	assert.Equal(t, primitive.Vector3{X: 7, Y: 8, Z: 9}, velocity.Ports[0].Value)

	dir := res.Graph.Models[0].(*model.DataNode).Blocks[0]
	assert.Equal(t, "Dir", dir.ExposedName)
	assert.Equal(t, []*model.Port{velocity.Ports[0]}, dir.Port.Links())

	// Upgrading writes every field at the current version.
	out, _, err := s.Upgrade([]byte(doc))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<Graph Version="10">`)
	assert.Contains(t, string(out), `ModelId="1"`)
}

func TestLegacyReservedPorts(t *testing.T) {
	// Version 5 has node IDs but no port IDs. The mismatched setVelocity
	// block still consumes port 3, so setLifetime keeps port 4.
	c := lib{t, testCatalog(t)}
	lifetimeHash := strconv.FormatInt(int64(c.block("setLifetime").Hash()), 10)
	doc := `<Graph Version="5">
    <System ModelId="4" WorldSpace="false" MaxNb="8" SpawnRate="1" BlendingMode="Alpha" SoftParticlesFadeDistance="0" OrderPriority="0">
        <Context DescId="initialize" Position="0,0" Collapsed="false">
            <Slot><Values><Value></Value><Value>0,0,0</Value><Value>1,1,1</Value></Values></Slot>
            <Block DescId="setVelocity" Hash="1" Collapsed="false" Enabled="true">
                <Slot><Values><Value>7,8,9</Value></Values></Slot>
            </Block>
            <Block DescId="setLifetime" Hash="` + lifetimeHash + `" Collapsed="false" Enabled="true">
                <Slot><Values><Value>4</Value></Values></Slot>
            </Block>
        </Context>
    </System>
    <DataNode ModelId="9" Position="0,0" Exposed="false">
        <DataBlock DescId="float" Collapsed="false" ExposedName="">
            <Slot><Values><Value>3</Value></Values></Slot>
        </DataBlock>
    </DataNode>
    <Connections>
        <Connection Id="5">3 4</Connection>
        <Connection Id="3">4</Connection>
    </Connections>
</Graph>`

	s, _ := newSerializer(t)
	res, err := s.Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count(errors.ErrCodeSchemaMismatch))
	assert.Equal(t, 2, res.Count(errors.ErrCodeDanglingReference))

	blocks := res.Graph.Systems[0].Contexts[0].Blocks
	assert.Equal(t, primitive.Vector3{X: 0, Y: 1, Z: 0}, blocks[0].Ports[0].Value)
	assert.Equal(t, primitive.Float(4), blocks[1].Ports[0].Value)

	value := res.Graph.Models[0].(*model.DataNode).Blocks[0].Port
	assert.Equal(t, []*model.Port{blocks[1].Ports[0]}, value.Links())
	assert.False(t, blocks[0].Ports[0].IsLinked())
}

func TestMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"not xml", `<Graph`, errors.ErrCodeMalformedDocument},
		{"no root", `<?xml version="1.0"?>`, errors.ErrCodeMalformedDocument},
		{"wrong root", `<Scene Version="10"/>`, errors.ErrCodeMalformedDocument},
		{"missing version", `<Graph/>`, errors.ErrCodeMalformedDocument},
		{"bad version", `<Graph Version="ten"/>`, errors.ErrCodeMalformedDocument},
		{"future version", `<Graph Version="11"/>`, errors.ErrCodeUnsupportedVersion},
		{"version zero", `<Graph Version="0"/>`, errors.ErrCodeUnsupportedVersion},
		{"unterminated", `<Graph Version="10">`, errors.ErrCodeMalformedDocument},
		{
			"bad bool",
			`<Graph Version="10"><EventNode ModelId="0" Position="0,0" Name="" Locked="maybe"/></Graph>`,
			errors.ErrCodeMalformedDocument,
		},
		{
			"bad position",
			`<Graph Version="10"><Comment Position="1" Size="0,0" Title="" Body="" Color="0,0,0,0"/></Graph>`,
			errors.ErrCodeMalformedDocument,
		},
		{
			"bad blend mode",
			`<Graph Version="10"><System ModelId="0" WorldSpace="false" MaxNb="1" SpawnRate="0" BlendingMode="Glow" SoftParticlesFadeDistance="0" CameraFadeDistance="0" OrderPriority="0" RenderQueueDelta="0"/></Graph>`,
			errors.ErrCodeMalformedDocument,
		},
		{
			"duplicate node id",
			`<Graph Version="10"><EventNode ModelId="0" Position="0,0" Name="" Locked="false"/><EventNode ModelId="0" Position="0,0" Name="" Locked="false"/></Graph>`,
			errors.ErrCodeDuplicateID,
		},
		{
			"value count",
			`<Graph Version="10"><DataNode ModelId="0" Position="0,0" Exposed="false"><DataBlock DescId="float" Collapsed="false" ExposedName=""><Slot SlotId="0"><Values><Value>1</Value><Value>2</Value></Values><Collapsed>false</Collapsed><WorldSpace>false</WorldSpace></Slot></DataBlock></DataNode></Graph>`,
			errors.ErrCodeMalformedDocument,
		},
		{
			"flag count",
			`<Graph Version="10"><DataNode ModelId="0" Position="0,0" Exposed="false"><DataBlock DescId="float" Collapsed="false" ExposedName=""><Slot SlotId="0"><Values><Value>1</Value></Values><Collapsed>false false</Collapsed><WorldSpace>false</WorldSpace></Slot></DataBlock></DataNode></Graph>`,
			errors.ErrCodeMalformedDocument,
		},
		{
			"bad value",
			`<Graph Version="10"><DataNode ModelId="0" Position="0,0" Exposed="false"><DataBlock DescId="float" Collapsed="false" ExposedName=""><Slot SlotId="0"><Values><Value>fast</Value></Values><Collapsed>false</Collapsed><WorldSpace>false</WorldSpace></Slot></DataBlock></DataNode></Graph>`,
			errors.ErrCodeMalformedDocument,
		},
		{
			"missing data slot",
			`<Graph Version="10"><DataNode ModelId="0" Position="0,0" Exposed="false"><DataBlock DescId="float" Collapsed="false" ExposedName=""/></DataNode></Graph>`,
			errors.ErrCodeMalformedDocument,
		},
		{
			"unknown context",
			`<Graph Version="10"><System ModelId="0" WorldSpace="false" MaxNb="1" SpawnRate="0" BlendingMode="Alpha" SoftParticlesFadeDistance="0" CameraFadeDistance="0" OrderPriority="0" RenderQueueDelta="0"><Context DescId="simulate" Position="0,0" Collapsed="false"/></System></Graph>`,
			errors.ErrCodeUnknownDescriptor,
		},
		{
			"unknown spawner block",
			`<Graph Version="10"><SpawnerNode ModelId="0" Position="0,0"><SpawnerBlock Type="Trickle" Collapsed="false"/></SpawnerNode></Graph>`,
			errors.ErrCodeUnknownDescriptor,
		},
		{
			"bad connection id",
			`<Graph Version="10"><Connections><Connection Id="x">1</Connection></Connections></Graph>`,
			errors.ErrCodeMalformedDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSerializer(t)
			res, err := s.Unmarshal([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "got %v", err)
			require.NotNil(t, res)
			assert.True(t, res.Graph.IsEmpty())
		})
	}
}

func TestUnknownElementSkipped(t *testing.T) {
	s, logs := newSerializer(t)
	res, err := s.Unmarshal([]byte(`<Graph Version="10">
    <Annotation Kind="future"><Nested/></Annotation>
    <EventNode ModelId="0" Position="0,0" Name="Go" Locked="false"/>
</Graph>`))
	require.NoError(t, err)
	require.Len(t, res.Graph.Models, 1)
	assert.Contains(t, logs.String(), "Annotation")
}

func TestBoolCaseInsensitive(t *testing.T) {
	s, _ := newSerializer(t)
	res, err := s.Unmarshal([]byte(`<Graph Version="10"><EventNode ModelId="0" Position="0,0" Name="" Locked="True"/></Graph>`))
	require.NoError(t, err)
	assert.True(t, res.Graph.Models[0].(*model.EventNode).Locked)
}

func TestUpgrade(t *testing.T) {
	s, _ := newSerializer(t)
	current, err := s.Marshal(buildFixture(t).graph)
	require.NoError(t, err)

	out, res, err := s.Upgrade(current)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Equal(t, string(current), string(out))

	out, res, err = s.Upgrade([]byte(`<Graph Version="99"/>`))
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedVersion))
	assert.True(t, res.Graph.IsEmpty())
}

func TestReadWrite(t *testing.T) {
	s, _ := newSerializer(t)
	var buf bytes.Buffer
	require.NoError(t, s.Write(buildFixture(t).graph, &buf))

	res, err := s.Read(&buf)
	require.NoError(t, err)
	assert.Len(t, res.Graph.Systems, 1)
}

func TestIssueString(t *testing.T) {
	i := serial.Issue{Code: errors.ErrCodeDanglingReference, Message: "port 3 gone"}
	assert.Equal(t, "DANGLING_REFERENCE: port 3 gone", i.String())
}
