package primitive

import "fmt"

// Type identifies the kind of value a port holds.
type Type int

const (
	// TypeNone is the type of composite ports, which carry no value of
	// their own and only group child ports.
	TypeNone Type = iota
	TypeBool
	TypeInt
	TypeUint
	TypeFloat
	TypeVector2
	TypeVector3
	TypeVector4
	TypeColor
	TypeCurve
	TypeGradient
	TypeSpline
	TypeString
)

var typeNames = [...]string{
	TypeNone:     "none",
	TypeBool:     "bool",
	TypeInt:      "int",
	TypeUint:     "uint",
	TypeFloat:    "float",
	TypeVector2:  "vector2",
	TypeVector3:  "vector3",
	TypeVector4:  "vector4",
	TypeColor:    "color",
	TypeCurve:    "curve",
	TypeGradient: "gradient",
	TypeSpline:   "spline",
	TypeString:   "string",
}

// String returns the lower-case name used in catalog files.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType returns the Type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return TypeNone, fmt.Errorf("unknown primitive type %q", name)
}

// Zero returns the default value for the type.
func (t Type) Zero() Value {
	switch t {
	case TypeBool:
		return Bool(false)
	case TypeInt:
		return Int(0)
	case TypeUint:
		return Uint(0)
	case TypeFloat:
		return Float(0)
	case TypeVector2:
		return Vector2{}
	case TypeVector3:
		return Vector3{}
	case TypeVector4:
		return Vector4{}
	case TypeColor:
		return Color{}
	case TypeCurve:
		return Curve{PreWrap: WrapDefault, PostWrap: WrapDefault}
	case TypeGradient:
		return Gradient{}
	case TypeSpline:
		return Spline(nil)
	case TypeString:
		return String("")
	}
	return None{}
}

// Value is a typed port value. The set of implementations is closed.
type Value interface {
	Type() Type
	isValue()
}

// None is the value of a composite port.
type None struct{}

// Bool is a boolean value.
type Bool bool

// Int is a signed 32-bit value.
type Int int32

// Uint is an unsigned 32-bit value.
type Uint uint32

// Float is a 32-bit floating point value.
type Float float32

// Vector2 is a two-component vector. It is also used for UI positions and sizes.
type Vector2 struct{ X, Y float32 }

// Vector3 is a three-component vector.
type Vector3 struct{ X, Y, Z float32 }

// Vector4 is a four-component vector.
type Vector4 struct{ X, Y, Z, W float32 }

// Color is a linear RGBA color.
type Color struct{ R, G, B, A float32 }

// WrapMode controls how a curve is evaluated outside its key range.
type WrapMode string

const (
	WrapDefault      WrapMode = "Default"
	WrapOnce         WrapMode = "Once"
	WrapLoop         WrapMode = "Loop"
	WrapPingPong     WrapMode = "PingPong"
	WrapClampForever WrapMode = "ClampForever"
)

func (m WrapMode) valid() bool {
	switch m {
	case WrapDefault, WrapOnce, WrapLoop, WrapPingPong, WrapClampForever:
		return true
	}
	return false
}

// Keyframe is one key of an animation curve.
type Keyframe struct {
	Time        float32
	Value       float32
	InTangent   float32
	OutTangent  float32
	TangentMode int32
}

// Curve is an animation curve.
type Curve struct {
	PreWrap  WrapMode
	PostWrap WrapMode
	Keys     []Keyframe
}

// ColorKey is a color stop of a gradient.
type ColorKey struct {
	Time  float32
	Color Color
}

// AlphaKey is an alpha stop of a gradient.
type AlphaKey struct {
	Time  float32
	Alpha float32
}

// Gradient is a color gradient with separate color and alpha stops.
type Gradient struct {
	ColorKeys []ColorKey
	AlphaKeys []AlphaKey
}

// Spline is an ordered list of control points.
type Spline []Vector3

// String is a free-form text value (texture and mesh references).
type String string

func (None) Type() Type     { return TypeNone }
func (Bool) Type() Type     { return TypeBool }
func (Int) Type() Type      { return TypeInt }
func (Uint) Type() Type     { return TypeUint }
func (Float) Type() Type    { return TypeFloat }
func (Vector2) Type() Type  { return TypeVector2 }
func (Vector3) Type() Type  { return TypeVector3 }
func (Vector4) Type() Type  { return TypeVector4 }
func (Color) Type() Type    { return TypeColor }
func (Curve) Type() Type    { return TypeCurve }
func (Gradient) Type() Type { return TypeGradient }
func (Spline) Type() Type   { return TypeSpline }
func (String) Type() Type   { return TypeString }

func (None) isValue()     {}
func (Bool) isValue()     {}
func (Int) isValue()      {}
func (Uint) isValue()     {}
func (Float) isValue()    {}
func (Vector2) isValue()  {}
func (Vector3) isValue()  {}
func (Vector4) isValue()  {}
func (Color) isValue()    {}
func (Curve) isValue()    {}
func (Gradient) isValue() {}
func (Spline) isValue()   {}
func (String) isValue()   {}
