package serial_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vfxgraph/pkg/catalog"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/primitive"
	"github.com/matzehuels/vfxgraph/pkg/serial"
)

// testCatalog is the built-in library plus a block whose single root port
// has a four-port subtree.
func testCatalog(t *testing.T) *catalog.Static {
	t.Helper()
	c := catalog.Default()
	require.NoError(t, c.RegisterBlock(&model.Descriptor{
		Key: "orientedBox",
		Ports: []model.PortSpec{{
			Name: "box",
			Children: []model.PortSpec{
				{Name: "center", Type: primitive.TypeVector3},
				{Name: "size", Type: primitive.TypeVector3, Default: primitive.Vector3{X: 1, Y: 1, Z: 1}},
				{Name: "angle", Type: primitive.TypeFloat},
			},
		}},
	}))
	return c
}

func newSerializer(t *testing.T) (*serial.Serializer, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})
	return serial.New(testCatalog(t), serial.WithLogger(logger), serial.WithHooks(&recordingHooks{})), &logs
}

// fixture is a graph that touches every node variant and cross-reference
// kind, with handles to the parts tests inspect.
type fixture struct {
	graph      *model.Graph
	system     *model.System
	spawnCtx   *model.Context
	initCtx    *model.Context
	sphere     *model.Block
	velocity   *model.Block
	lifetime   *model.Block
	box        *model.Block
	turbulence *model.Block
	speed      *model.DataBlock
	direction  *model.DataBlock
	spawner    *model.SpawnerNode
	play       *model.EventNode
	stop       *model.EventNode
}

// lib looks descriptors up in a catalog and fails the test on a miss.
type lib struct {
	t *testing.T
	c catalog.Catalog
}

func (l lib) must(d *model.Descriptor, err error) *model.Descriptor {
	l.t.Helper()
	require.NoError(l.t, err)
	return d
}

func (l lib) context(key string) *model.Descriptor { return l.must(l.c.Context(key)) }
func (l lib) block(key string) *model.Descriptor   { return l.must(l.c.Block(key)) }
func (l lib) data(key string) *model.Descriptor    { return l.must(l.c.DataBlock(key)) }
func (l lib) spawner(key string) *model.Descriptor { return l.must(l.c.SpawnerBlock(key)) }

func buildFixture(t *testing.T) *fixture {
	t.Helper()
	c := lib{t, testCatalog(t)}
	f := &fixture{graph: model.NewGraph()}

	f.system = &model.System{
		WorldSpace:                true,
		Capacity:                  1024,
		SpawnRate:                 12.5,
		BlendMode:                 model.BlendAlpha,
		SoftParticlesFadeDistance: 0.5,
		CameraFadeDistance:        2,
		OrderPriority:             3,
		RenderQueueDelta:          -1,
	}

	f.spawnCtx = model.NewContext(c.context("spawn"))
	f.spawnCtx.Position = primitive.Vector2{X: 10, Y: -20}

	f.initCtx = model.NewContext(c.context("initialize"))
	f.initCtx.Position = primitive.Vector2{X: 10, Y: 120}
	f.initCtx.Ports[0].Children[1].Value = primitive.Vector3{X: 4, Y: 4, Z: 4}

	f.sphere = model.NewBlock(c.block("positionSphere"))
	f.sphere.Ports[0].Children[1].Value = primitive.Float(2.5)
	f.sphere.Ports[0].Collapsed = true

	f.velocity = model.NewBlock(c.block("setVelocity"))
	f.velocity.Ports[0].Value = primitive.Vector3{X: 4, Y: 5, Z: 6}

	f.lifetime = model.NewBlock(c.block("setLifetime"))

	f.initCtx.AddBlock(f.sphere)
	f.initCtx.AddBlock(f.velocity)
	f.initCtx.AddBlock(f.lifetime)

	updateCtx := model.NewContext(c.context("update"))
	updateCtx.Collapsed = true
	f.turbulence = model.NewBlock(c.block("turbulence"))
	f.turbulence.Enabled = false
	f.box = model.NewBlock(c.block("orientedBox"))
	box := f.box.Ports[0]
	box.Collapsed = true
	box.Children[0].WorldSpace = true
	box.Children[1].Collapsed = true
	box.Children[2].Value = primitive.Float(0.25)
	box.Children[2].WorldSpace = true
	updateCtx.AddBlock(f.turbulence)
	updateCtx.AddBlock(f.box)

	colors := model.NewBlock(c.block("colorOverLife"))
	sizes := model.NewBlock(c.block("sizeOverLife"))
	path := model.NewBlock(c.block("followPath"))
	path.Ports[0].Value = primitive.Spline{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 3}}
	updateCtx.AddBlock(colors)
	updateCtx.AddBlock(sizes)
	updateCtx.AddBlock(path)

	outputCtx := model.NewContext(c.context("output"))
	outputCtx.Ports[0].Value = primitive.String("Textures/smoke puff")

	f.system.AddContext(f.spawnCtx)
	f.system.AddContext(f.initCtx)
	f.system.AddContext(updateCtx)
	f.system.AddContext(outputCtx)
	f.graph.AddSystem(f.system)

	data := &model.DataNode{Position: primitive.Vector2{X: -300, Y: 40}, Exposed: true}
	var err error
	f.speed, err = model.NewDataBlock(c.data("float"))
	require.NoError(t, err)
	f.speed.ExposedName = "Speed"
	f.speed.Port.Value = primitive.Float(3)
	f.direction, err = model.NewDataBlock(c.data("vector3"))
	require.NoError(t, err)
	f.direction.Port.Value = primitive.Vector3{X: 0, Y: 1, Z: 0}
	f.direction.Collapsed = true
	data.AddBlock(f.speed)
	data.AddBlock(f.direction)
	f.graph.AddModel(data)

	f.graph.AddModel(&model.Comment{
		Position: primitive.Vector2{X: 1, Y: 2},
		Size:     primitive.Vector2{X: 200, Y: 80},
		Title:    "Smoke",
		Body:     "rises & fades <slowly>",
		Color:    primitive.Color{R: 1, G: 0.5, B: 0, A: 1},
	})

	f.spawner = &model.SpawnerNode{Position: primitive.Vector2{X: 0, Y: -200}}
	f.spawner.AddBlock(model.NewSpawnerBlock(c.spawner("ConstantRate")))
	burst := model.NewSpawnerBlock(c.spawner("Burst"))
	burst.Collapsed = true
	f.spawner.AddBlock(burst)
	f.spawner.LinkContext(f.spawnCtx)
	f.graph.AddModel(f.spawner)

	f.play = &model.EventNode{Name: "OnPlay", Position: primitive.Vector2{X: 0, Y: -300}}
	f.play.LinkStart(f.spawner)
	f.stop = &model.EventNode{Name: "OnStop", Locked: true}
	f.stop.LinkStop(f.spawner)
	f.graph.AddModel(f.play)
	f.graph.AddModel(f.stop)
	f.graph.AddModel(&model.EventNode{Name: "Unused"})

	// Port links: one output feeding two inputs, and a vector feeding velocity.
	f.speed.Port.Link(f.lifetime.Ports[0])
	f.speed.Port.Link(f.turbulence.Ports[0])
	f.direction.Port.Link(f.velocity.Ports[0])
	f.spawnCtx.Ports[0].Link(f.sphere.Ports[1])

	return f
}

type recordingHooks struct {
	encodes, decodes int
	lastIssues       int
	lastErr          error
}

func (h *recordingHooks) OnEncode(_ int, _ model.Stats, _ time.Duration, err error) {
	h.encodes++
	h.lastErr = err
}

func (h *recordingHooks) OnDecode(_ int, _ model.Stats, issues int, _ time.Duration, err error) {
	h.decodes++
	h.lastIssues = issues
	h.lastErr = err
}
