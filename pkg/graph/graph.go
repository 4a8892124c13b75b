package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// View Serialization API
// =============================================================================

// Marshal converts a view to indented JSON bytes.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a view as JSON to an io.Writer.
func Write(g Graph, w io.Writer) error {
	return writeTo(g, w)
}

// WriteFile writes a view to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(g, f)
}

// Unmarshal decodes a JSON view, as produced by [Marshal] or returned by the
// HTTP API.
func Unmarshal(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return g, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
