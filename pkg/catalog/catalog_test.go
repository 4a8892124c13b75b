package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/primitive"
)

func TestDefault(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		lookup func(string) (*model.Descriptor, error)
		keys   []string
	}{
		{"contexts", c.Context, []string{"spawn", "initialize", "update", "output"}},
		{"blocks", c.Block, []string{"setPosition", "setVelocity", "positionSphere", "colorOverLife", "sizeOverLife"}},
		{"data", c.DataBlock, []string{"bool", "float", "vector3", "curve", "gradient", "spline", "string"}},
		{"spawners", c.SpawnerBlock, []string{"ConstantRate", "Burst", "PeriodicBurst", "VariableRate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range tt.keys {
				d, err := tt.lookup(k)
				if err != nil {
					t.Errorf("lookup %q: %v", k, err)
					continue
				}
				if d.Key != k {
					t.Errorf("descriptor key = %q, want %q", d.Key, k)
				}
			}
		})
	}

	if got := len(c.Keys(SectionDataBlock)); got != 12 {
		t.Errorf("data blocks = %d, want one per primitive type (12)", got)
	}
}

func TestDefaultPortDefaults(t *testing.T) {
	c := Default()

	d, err := c.Block("positionSphere")
	if err != nil {
		t.Fatal(err)
	}
	ports := d.NewPorts()
	if ports[0].Count() != 3 {
		t.Errorf("sphere subtree = %d ports, want 3", ports[0].Count())
	}
	if got := ports[0].Children[1].Value; got != primitive.Float(1) {
		t.Errorf("radius default = %v, want 1", got)
	}

	d, _ = c.Block("sizeOverLife")
	curve, ok := d.NewPorts()[0].Value.(primitive.Curve)
	if !ok || len(curve.Keys) != 2 {
		t.Errorf("curve default = %#v", d.NewPorts()[0].Value)
	}
}

func TestDefaultIsFresh(t *testing.T) {
	a := Default()
	_ = a.RegisterBlock(&model.Descriptor{Key: "custom"})
	if _, err := Default().Block("custom"); err == nil {
		t.Error("Default() should not share state between calls")
	}
}

func TestUnknownDescriptor(t *testing.T) {
	c := NewStatic()
	lookups := map[string]func(string) (*model.Descriptor, error){
		"context": c.Context,
		"block":   c.Block,
		"data":    c.DataBlock,
		"spawner": c.SpawnerBlock,
	}
	for name, lookup := range lookups {
		t.Run(name, func(t *testing.T) {
			_, err := lookup("missing")
			if !errors.Is(err, errors.ErrCodeUnknownDescriptor) {
				t.Errorf("err = %v, want UNKNOWN_DESCRIPTOR", err)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	c := NewStatic()
	if err := c.RegisterBlock(&model.Descriptor{}); err == nil {
		t.Error("expected error for empty key")
	}
	twoPorts := &model.Descriptor{Key: "pair", Ports: []model.PortSpec{{Name: "a"}, {Name: "b"}}}
	if err := c.RegisterDataBlock(twoPorts); err == nil {
		t.Error("expected error for data block with two ports")
	}
	if err := c.Register(Section("bogus"), &model.Descriptor{Key: "x"}); err == nil {
		t.Error("expected error for unknown section")
	}
}

func TestParse(t *testing.T) {
	src := `
[[block]]
key = "kill"

  [[block.port]]
  name = "box"

    [[block.port.port]]
    name = "min"
    type = "vector3"
    default = "-1,-1,-1"

    [[block.port.port]]
    name = "max"
    type = "vector3"
    default = "1,1,1"
`
	c, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d, err := c.Block("kill")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "kill" {
		t.Errorf("Name = %q, want key as fallback", d.Name)
	}
	if len(d.Ports) != 1 || len(d.Ports[0].Children) != 2 {
		t.Fatalf("ports = %+v", d.Ports)
	}
	if got := d.Ports[0].Children[0].Default; got != (primitive.Vector3{X: -1, Y: -1, Z: -1}) {
		t.Errorf("min default = %v", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `[[block]`},
		{"unknown type", "[[block]]\nkey = \"a\"\n[[block.port]]\nname = \"p\"\ntype = \"matrix\"\n"},
		{"bad default", "[[block]]\nkey = \"a\"\n[[block.port]]\nname = \"p\"\ntype = \"float\"\ndefault = \"x\"\n"},
		{"missing key", "[[context]]\nname = \"anon\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, DefaultTOML(), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != Default().Len() {
		t.Errorf("Len() = %d, want %d", c.Len(), Default().Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("missing file err = %v, want INVALID_PATH", err)
	}
}

func TestConcurrentLookup(t *testing.T) {
	c := Default()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = c.RegisterBlock(&model.Descriptor{Key: "extra"})
			}
			for range 100 {
				if _, err := c.Block("setVelocity"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
