// Package pkg holds the libraries behind vfxgraph, a serialization engine
// for particle effect graphs.
//
// # Overview
//
// An effect graph is a set of particle systems (each a chain of contexts
// holding blocks) plus free-standing nodes: data nodes, spawners, events and
// comments. Ports on contexts, blocks and data nodes are wired by links,
// spawners drive contexts and events start or stop spawners. Graphs are
// stored as versioned XML documents. The packages divide the work as
// follows:
//
//  1. [model], [primitive] - the in-memory graph and typed port values
//  2. [catalog] - descriptor lookup for contexts, blocks and data nodes
//  3. [schema], [registry], [serial] - version policy, document identities
//     and the XML reader and writer
//  4. [graph], [render] - the node-link view and its Graphviz rendering
//  5. [store], [asset], [cache] - named document storage and derived
//     artifacts
//  6. [config], [errors], [observability], [buildinfo] - ambient support
//
// # Data Flow
//
//	XML document (any version 1..10)
//	         ↓
//	    [serial] Unmarshal (two-phase: build, then resolve references)
//	         ↓
//	    [model] Graph  ──→  [graph] view  ──→  [render] DOT / SVG
//	         ↓
//	    [serial] Marshal (always the current version)
//	         ↓
//	XML document (version 10)
//
// # Quick Start
//
//	ser := serial.New(catalog.Default())
//	res, err := ser.Unmarshal(data)
//	if err != nil {
//	    return err
//	}
//	for _, is := range res.Issues {
//	    log.Warn(is.Message, "code", is.Code)
//	}
//	out, err := ser.Marshal(res.Graph)
//
// Stored assets go through [asset], which never replaces a stored document
// with one that failed to encode:
//
//	st, _ := store.Open(ctx, cfg.Store)
//	rev, err := asset.Save(ctx, st, ser, "fx/fire", g)
package pkg
