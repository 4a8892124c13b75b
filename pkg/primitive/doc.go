// Package primitive defines the typed values carried by graph ports and the
// codec that turns them into document text.
//
// The serializer treats this package as an injected collaborator: it only
// calls [Codec.Encode] and [Codec.Decode], so a different text layout can
// be swapped in without touching the document format itself.
//
// # Types
//
// [Value] is a closed set of concrete types ([Bool], [Int], [Uint],
// [Float], [Vector2], [Vector3], [Vector4], [Color], [Curve], [Gradient],
// [Spline], [String]) plus [None] for composite ports. Every [Type] has a
// default produced by [Type.Zero].
//
// # Text Codec
//
// [Text] is the default codec. Floats are written in their shortest
// float32 round-trip form, so Decode(Encode(v)) == v for every finite value.
//
//	s, _ := primitive.Text.Encode(primitive.Vector3{X: 1, Y: 2.5, Z: -3})
//	// s == "1,2.5,-3"
//	v, _ := primitive.Text.Decode(s, primitive.TypeVector3)
//
// Decode failures are reported as [*ParseError].
package primitive
