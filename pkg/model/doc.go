// Package model defines the in-memory effect graph that the serializer
// reads and writes.
//
// # Node Variants
//
// [Node] is a closed sum type with nine variants. Four of them are
// addressable and take part in cross-references ([System], [DataNode],
// [SpawnerNode], [EventNode]); the other five ([Context], [Block],
// [DataBlock], [Comment], [SpawnerBlock]) are addressed purely by their
// position in the ownership tree.
//
// Ownership is strictly hierarchical:
//
//	Graph
//	├── System ── Context ── Block
//	└── Models: DataNode ── DataBlock
//	            SpawnerNode ── SpawnerBlock
//	            Comment
//	            EventNode
//
// # Ports
//
// Contexts, blocks, data blocks and spawner blocks own [Port] trees built
// from their [Descriptor]. Ports carry a [primitive.Value], two display
// flags, and symmetric links to other ports.
//
// # Cross-references
//
// Besides port links, a [SpawnerNode] drives contexts
// ([SpawnerNode.LinkContext]) and an [EventNode] starts or stops spawners
// ([EventNode.LinkStart], [EventNode.LinkStop]). These edges may point
// anywhere in the graph, which is why the serializer writes them in
// separate sections after all nodes.
//
// # Concurrency
//
// A Graph is not safe for concurrent modification. Descriptors are
// immutable once built and may be shared between graphs.
package model
