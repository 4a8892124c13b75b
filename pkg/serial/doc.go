// Package serial converts effect graphs to and from versioned XML documents.
//
// # Document Layout
//
// A document has one root element carrying the schema version, the systems
// with their nested contexts and blocks, the flat list of top-level nodes,
// and three trailing cross-reference sections:
//
//	<Graph Version="10">
//	    <System ModelId="0" WorldSpace="false" MaxNb="1024" ...>
//	        <Context DescId="spawn" Position="0,0" Collapsed="false">
//	            <Slot SlotId="0">
//	                <Values>
//	                    <Value>0</Value>
//	                </Values>
//	                <Collapsed>false</Collapsed>
//	                <WorldSpace>false</WorldSpace>
//	            </Slot>
//	            <Block DescId="setVelocity" Hash="..." Collapsed="false" Enabled="true">...</Block>
//	        </Context>
//	    </System>
//	    <DataNode ModelId="1" ...>...</DataNode>
//	    <Comment .../>
//	    <SpawnerNode ModelId="2" ...>...</SpawnerNode>
//	    <EventNode ModelId="3" .../>
//	    <Connections>
//	        <Connection Id="5">0 3</Connection>
//	    </Connections>
//	    <SpawnerConnections Id="2">0</SpawnerConnections>
//	    <EventConnections Id="3">
//	        <Start>2</Start>
//	        <Stop></Stop>
//	    </EventConnections>
//	</Graph>
//
// # Identities
//
// Addressable nodes (systems, data nodes, spawners, events) carry a node ID
// and ports carry a port ID; the two spaces are independent. Ports are
// numbered in depth-first pre-order, and only the root of each port tree
// stores its ID. Every per-port list inside a Slot is indexed relative to
// that root ID. IDs are assigned by a fresh [registry.Registry] on every
// call.
//
// # Versions
//
// The writer always emits [schema.Current]. The reader accepts every
// version from 1 up and consults the [schema] table to decide which
// attributes to expect; absent fields keep their defaults. Before version 5
// node IDs and before version 6 port IDs are assigned in document order.
//
// # Error Handling
//
// Problems are split by reach. A block whose stored layout hash no longer
// matches the catalog keeps its default port values, and a link whose
// target is gone is dropped; both are reported in [Result.Issues] and
// logged. Anything that makes the document as a whole untrustworthy
// (malformed syntax, unknown descriptors, unresolvable section owners)
// aborts the call with an *errors.Error, and the result holds an empty
// graph. The writer never returns a partial document.
package serial
