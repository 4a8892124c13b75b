// Package catalog provides node descriptors to the serializer.
//
// The serializer never builds ports on its own: every context, block, data
// block and spawner block is created from a [model.Descriptor] looked up by
// the key stored in the document. A [Catalog] is that lookup. Misses are
// reported as UNKNOWN_DESCRIPTOR, which aborts a document read.
//
// [Static] is the in-memory implementation. It can be filled by hand with
// the Register methods, from a TOML file with [Load] or [Parse], or taken
// ready-made from [Default].
package catalog

import (
	"slices"
	"sync"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
)

// Catalog resolves descriptor keys. Implementations must be safe for
// concurrent reads.
type Catalog interface {
	Context(key string) (*model.Descriptor, error)
	Block(key string) (*model.Descriptor, error)
	DataBlock(key string) (*model.Descriptor, error)
	SpawnerBlock(key string) (*model.Descriptor, error)
}

// Section identifies one of the four descriptor namespaces.
type Section string

const (
	SectionContext      Section = "context"
	SectionBlock        Section = "block"
	SectionDataBlock    Section = "data"
	SectionSpawnerBlock Section = "spawner"
)

// Sections lists every namespace in a fixed order.
var Sections = []Section{SectionContext, SectionBlock, SectionDataBlock, SectionSpawnerBlock}

// Static is a map-backed catalog. Registration and lookup may run
// concurrently.
type Static struct {
	mu      sync.RWMutex
	entries map[Section]map[string]*model.Descriptor
}

// NewStatic returns an empty catalog.
func NewStatic() *Static {
	s := &Static{entries: make(map[Section]map[string]*model.Descriptor)}
	for _, sec := range Sections {
		s.entries[sec] = make(map[string]*model.Descriptor)
	}
	return s
}

// Register adds d to the given section, replacing any descriptor with the
// same key.
func (s *Static) Register(sec Section, d *model.Descriptor) error {
	if d == nil || d.Key == "" {
		return errors.New(errors.ErrCodeInvalidInput, "%s descriptor without key", sec)
	}
	if sec == SectionDataBlock && len(d.Ports) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "data descriptor %q: want 1 port, got %d", d.Key, len(d.Ports))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.entries[sec]
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown catalog section %q", sec)
	}
	m[d.Key] = d
	return nil
}

// RegisterContext adds a context descriptor.
func (s *Static) RegisterContext(d *model.Descriptor) error { return s.Register(SectionContext, d) }

// RegisterBlock adds a block descriptor.
func (s *Static) RegisterBlock(d *model.Descriptor) error { return s.Register(SectionBlock, d) }

// RegisterDataBlock adds a data block descriptor. It must have exactly one port.
func (s *Static) RegisterDataBlock(d *model.Descriptor) error {
	return s.Register(SectionDataBlock, d)
}

// RegisterSpawnerBlock adds a spawner block descriptor keyed by spawner kind.
func (s *Static) RegisterSpawnerBlock(d *model.Descriptor) error {
	return s.Register(SectionSpawnerBlock, d)
}

func (s *Static) Context(key string) (*model.Descriptor, error) {
	return s.lookup(SectionContext, key)
}

func (s *Static) Block(key string) (*model.Descriptor, error) {
	return s.lookup(SectionBlock, key)
}

func (s *Static) DataBlock(key string) (*model.Descriptor, error) {
	return s.lookup(SectionDataBlock, key)
}

func (s *Static) SpawnerBlock(key string) (*model.Descriptor, error) {
	return s.lookup(SectionSpawnerBlock, key)
}

// Keys returns the sorted descriptor keys of a section.
func (s *Static) Keys(sec Section) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries[sec]))
	for k := range s.entries[sec] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the total number of descriptors.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.entries {
		n += len(m)
	}
	return n
}

func (s *Static) lookup(sec Section, key string) (*model.Descriptor, error) {
	s.mu.RLock()
	d, ok := s.entries[sec][key]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownDescriptor, "unknown %s descriptor %q", sec, key)
	}
	return d, nil
}
