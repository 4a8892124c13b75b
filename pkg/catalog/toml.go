package catalog

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/primitive"
)

// catalogFile is the on-disk layout:
//
//	[[block]]
//	key = "setVelocity"
//	name = "Set Velocity"
//
//	  [[block.port]]
//	  name = "velocity"
//	  type = "vector3"
//	  default = "0,1,0"
type catalogFile struct {
	Context []descriptorFile `toml:"context"`
	Block   []descriptorFile `toml:"block"`
	Data    []descriptorFile `toml:"data"`
	Spawner []descriptorFile `toml:"spawner"`
}

type descriptorFile struct {
	Key   string     `toml:"key"`
	Name  string     `toml:"name"`
	Ports []portFile `toml:"port"`
}

type portFile struct {
	Name     string     `toml:"name"`
	Type     string     `toml:"type"`
	Output   bool       `toml:"output"`
	Default  *string    `toml:"default"`
	Children []portFile `toml:"port"`
}

// Load reads a TOML catalog file.
func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read catalog %s", path)
	}
	return Parse(data)
}

// Parse builds a catalog from TOML. Defaults are decoded with the text codec.
func Parse(data []byte) (*Static, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse catalog")
	}

	s := NewStatic()
	sections := []struct {
		sec   Section
		descs []descriptorFile
	}{
		{SectionContext, f.Context},
		{SectionBlock, f.Block},
		{SectionDataBlock, f.Data},
		{SectionSpawnerBlock, f.Spawner},
	}
	for _, section := range sections {
		for _, df := range section.descs {
			d, err := df.descriptor()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s %q", section.sec, df.Key)
			}
			if err := s.Register(section.sec, d); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (df descriptorFile) descriptor() (*model.Descriptor, error) {
	ports, err := portSpecs(df.Ports)
	if err != nil {
		return nil, err
	}
	name := df.Name
	if name == "" {
		name = df.Key
	}
	return &model.Descriptor{Key: df.Key, Name: name, Ports: ports}, nil
}

func portSpecs(files []portFile) ([]model.PortSpec, error) {
	if len(files) == 0 {
		return nil, nil
	}
	specs := make([]model.PortSpec, len(files))
	for i, pf := range files {
		t := primitive.TypeNone
		if pf.Type != "" {
			var err error
			if t, err = primitive.ParseType(pf.Type); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "port %q", pf.Name)
			}
		}
		spec := model.PortSpec{Name: pf.Name, Type: t, Output: pf.Output}
		if pf.Default != nil {
			v, err := primitive.Text.Decode(*pf.Default, t)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "port %q default", pf.Name)
			}
			spec.Default = v
		}
		children, err := portSpecs(pf.Children)
		if err != nil {
			return nil, err
		}
		spec.Children = children
		specs[i] = spec
	}
	return specs, nil
}
