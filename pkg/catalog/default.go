package catalog

import (
	_ "embed"
	"fmt"
)

//go:embed default.toml
var defaultTOML []byte

// Default returns a fresh catalog holding the built-in node library:
// the spawn, initialize, update and output contexts, a set of common
// blocks, one data block per primitive type, and the ConstantRate, Burst,
// PeriodicBurst and VariableRate spawner kinds.
func Default() *Static {
	s, err := Parse(defaultTOML)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in library: %v", err))
	}
	return s
}

// DefaultTOML returns the source of the built-in library, for use as a
// starting point for custom catalogs.
func DefaultTOML() []byte {
	out := make([]byte, len(defaultTOML))
	copy(out, defaultTOML)
	return out
}
