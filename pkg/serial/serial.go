package serial

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vfxgraph/pkg/catalog"
	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/observability"
	"github.com/matzehuels/vfxgraph/pkg/primitive"
)

// Serializer converts graphs to and from documents. It holds no per-call
// state: every Marshal and Unmarshal uses a fresh identity registry, so a
// Serializer may be shared between goroutines as long as its catalog and
// codec are safe for concurrent reads.
type Serializer struct {
	catalog catalog.Catalog
	codec   primitive.Codec
	logger  *log.Logger
	hooks   observability.CodecHooks
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets the logger for warnings and dropped references.
// The default discards all output.
func WithLogger(l *log.Logger) Option {
	return func(s *Serializer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCodec replaces the port value codec. The default is [primitive.Text].
func WithCodec(c primitive.Codec) Option {
	return func(s *Serializer) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithHooks sets the hooks that receive encode and decode events.
// The default is the globally registered [observability.Codec].
func WithHooks(h observability.CodecHooks) Option {
	return func(s *Serializer) { s.hooks = h }
}

// New returns a Serializer that resolves descriptor keys through cat.
func New(cat catalog.Catalog, opts ...Option) *Serializer {
	s := &Serializer{
		catalog: cat,
		codec:   primitive.Text,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Serializer) codecHooks() observability.CodecHooks {
	if s.hooks != nil {
		return s.hooks
	}
	return observability.Codec()
}

// Issue is a recoverable problem found while reading a document. The
// affected node or edge was restored to its default or dropped; the rest
// of the graph is intact.
type Issue struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (i Issue) String() string { return fmt.Sprintf("%s: %s", i.Code, i.Message) }

// Result is the outcome of a read. Graph is never nil: on error it is a
// fresh empty graph, never a partially built one.
type Result struct {
	Graph   *model.Graph
	Version int // schema version of the document; 0 for empty input
	Issues  []Issue
}

// Count returns the number of issues with the given code.
func (r *Result) Count(code errors.Code) int {
	n := 0
	for _, i := range r.Issues {
		if i.Code == code {
			n++
		}
	}
	return n
}

// Upgrade reads a document of any supported version and writes it back at
// the current version. The returned result carries the read issues. No
// output is produced if either step fails.
func (s *Serializer) Upgrade(data []byte) ([]byte, *Result, error) {
	res, err := s.Unmarshal(data)
	if err != nil {
		return nil, res, err
	}
	out, err := s.Marshal(res.Graph)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

func recovered(op string, r any) error {
	if err, ok := r.(error); ok {
		return errors.Wrap(errors.ErrCodeInternal, err, "%s: panic", op)
	}
	return errors.New(errors.ErrCodeInternal, "%s: panic: %v", op, r)
}
