// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/vfxgraph/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/vfxgraph/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/vfxgraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"

	"github.com/matzehuels/vfxgraph/pkg/schema"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Info is the build and document format version of the running binary.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Schema  int    `json:"schema"`
}

// Get returns the current build info.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date, Schema: schema.Current}
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\nschema: %d", Version, Commit, Date, schema.Current)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\ndocument schema: %d\n", Version, Commit, Date, schema.Current)
}
