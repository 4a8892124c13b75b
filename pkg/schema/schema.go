// Package schema holds the document version policy table.
//
// Every optional document field is introduced at some schema revision.
// Writers always emit [Current]; readers consult [Has] to decide whether a
// field is present in a document of a given version, and fall back to the
// field's default otherwise. Adding a field is purely additive: append a
// [Field], give it the next version, and bump [Current].
package schema

import (
	"fmt"

	"github.com/matzehuels/vfxgraph/pkg/errors"
)

// Current is the version every new document is written with.
const Current = 10

// Field names a version-gated part of the document format.
type Field int

const (
	BlockEnabled Field = iota
	DataBlockExposedName
	SystemSoftParticlesFadeDistance
	ModelID
	PortID
	SystemWorldSpace
	PortWorldSpace
	SystemRenderQueueDelta
	SystemCameraFadeDistance
)

// Rule pairs a field with the first version that carries it.
type Rule struct {
	Field       Field
	Since       int
	Description string
}

var rules = []Rule{
	{BlockEnabled, 2, "per-block enabled flag"},
	{DataBlockExposedName, 3, "exposed name of data blocks"},
	{SystemSoftParticlesFadeDistance, 4, "soft particles fade distance"},
	{ModelID, 5, "explicit node IDs on addressable nodes"},
	{PortID, 6, "explicit IDs on root ports"},
	{SystemWorldSpace, 7, "system simulation space"},
	{PortWorldSpace, 8, "per-port world-space flags"},
	{SystemRenderQueueDelta, 9, "render queue offset"},
	{SystemCameraFadeDistance, 10, "camera fade distance"},
}

var fieldNames = [...]string{
	BlockEnabled:                    "BlockEnabled",
	DataBlockExposedName:            "DataBlockExposedName",
	SystemSoftParticlesFadeDistance: "SystemSoftParticlesFadeDistance",
	ModelID:                         "ModelID",
	PortID:                          "PortID",
	SystemWorldSpace:                "SystemWorldSpace",
	PortWorldSpace:                  "PortWorldSpace",
	SystemRenderQueueDelta:          "SystemRenderQueueDelta",
	SystemCameraFadeDistance:        "SystemCameraFadeDistance",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// Since returns the first version that carries f.
// It panics on a field that is not in the table.
func Since(f Field) int {
	for _, r := range rules {
		if r.Field == f {
			return r.Since
		}
	}
	panic(fmt.Sprintf("schema: no rule for %s", f))
}

// Has reports whether documents of version v carry f.
func Has(f Field, v int) bool { return v >= Since(f) }

// Rules returns a copy of the table ordered by version.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Check returns UNSUPPORTED_VERSION unless 1 <= v <= Current.
func Check(v int) error {
	if v < 1 || v > Current {
		return errors.New(errors.ErrCodeUnsupportedVersion, "document version %d not in [1, %d]", v, Current)
	}
	return nil
}
