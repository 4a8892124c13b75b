package primitive

import (
	"fmt"
	"strconv"
	"strings"
)

// Codec converts port values to and from their document text.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(v Value) (string, error)
	Decode(s string, t Type) (Value, error)
}

// ParseError is returned when text cannot be decoded as the expected type.
type ParseError struct {
	Type  Type
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Type, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Text is the default codec. Scalars use their shortest round-trip form,
// vectors and colors are comma-separated, and list-shaped values separate
// entries with ';' and sections with '|':
//
//	vector3   1,2.5,-3
//	curve     Default|Loop|0,0,0,0,0;1,1,0,0,0
//	gradient  0,1,0,0,1;1,0,0,1,1|0,1;1,0
//	spline    0,0,0;1,2,3
var Text Codec = textCodec{}

type textCodec struct{}

func (textCodec) Encode(v Value) (string, error) {
	switch v := v.(type) {
	case None:
		return "", nil
	case Bool:
		return strconv.FormatBool(bool(v)), nil
	case Int:
		return strconv.FormatInt(int64(v), 10), nil
	case Uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case Float:
		return FormatFloat(float32(v)), nil
	case Vector2:
		return joinFloats(v.X, v.Y), nil
	case Vector3:
		return joinFloats(v.X, v.Y, v.Z), nil
	case Vector4:
		return joinFloats(v.X, v.Y, v.Z, v.W), nil
	case Color:
		return joinFloats(v.R, v.G, v.B, v.A), nil
	case Curve:
		keys := make([]string, len(v.Keys))
		for i, k := range v.Keys {
			keys[i] = joinFloats(k.Time, k.Value, k.InTangent, k.OutTangent) + "," + strconv.FormatInt(int64(k.TangentMode), 10)
		}
		return string(v.PreWrap) + "|" + string(v.PostWrap) + "|" + strings.Join(keys, ";"), nil
	case Gradient:
		colors := make([]string, len(v.ColorKeys))
		for i, k := range v.ColorKeys {
			colors[i] = joinFloats(k.Time, k.Color.R, k.Color.G, k.Color.B, k.Color.A)
		}
		alphas := make([]string, len(v.AlphaKeys))
		for i, k := range v.AlphaKeys {
			alphas[i] = joinFloats(k.Time, k.Alpha)
		}
		return strings.Join(colors, ";") + "|" + strings.Join(alphas, ";"), nil
	case Spline:
		points := make([]string, len(v))
		for i, p := range v {
			points[i] = joinFloats(p.X, p.Y, p.Z)
		}
		return strings.Join(points, ";"), nil
	case String:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("encode: nil value")
	}
	return "", fmt.Errorf("encode: unsupported value %T", v)
}

func (textCodec) Decode(s string, t Type) (Value, error) {
	v, err := decode(s, t)
	if err != nil {
		return nil, &ParseError{Type: t, Input: s, Err: err}
	}
	return v, nil
}

func decode(s string, t Type) (Value, error) {
	switch t {
	case TypeNone:
		if s != "" {
			return nil, fmt.Errorf("composite port carries a value")
		}
		return None{}, nil
	case TypeBool:
		b, err := ParseBool(s)
		return Bool(b), err
	case TypeInt:
		n, err := strconv.ParseInt(s, 10, 32)
		return Int(n), err
	case TypeUint:
		n, err := strconv.ParseUint(s, 10, 32)
		return Uint(n), err
	case TypeFloat:
		f, err := ParseFloat(s)
		return Float(f), err
	case TypeVector2:
		f, err := splitFloats(s, 2)
		if err != nil {
			return nil, err
		}
		return Vector2{f[0], f[1]}, nil
	case TypeVector3:
		f, err := splitFloats(s, 3)
		if err != nil {
			return nil, err
		}
		return Vector3{f[0], f[1], f[2]}, nil
	case TypeVector4:
		f, err := splitFloats(s, 4)
		if err != nil {
			return nil, err
		}
		return Vector4{f[0], f[1], f[2], f[3]}, nil
	case TypeColor:
		f, err := splitFloats(s, 4)
		if err != nil {
			return nil, err
		}
		return Color{f[0], f[1], f[2], f[3]}, nil
	case TypeCurve:
		return decodeCurve(s)
	case TypeGradient:
		return decodeGradient(s)
	case TypeSpline:
		return decodeSpline(s)
	case TypeString:
		return String(s), nil
	}
	return nil, fmt.Errorf("unsupported type")
}

func decodeCurve(s string) (Value, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("want 3 sections, got %d", len(parts))
	}
	c := Curve{PreWrap: WrapMode(parts[0]), PostWrap: WrapMode(parts[1])}
	if !c.PreWrap.valid() || !c.PostWrap.valid() {
		return nil, fmt.Errorf("invalid wrap mode")
	}
	for _, entry := range splitEntries(parts[2]) {
		fields := strings.Split(entry, ",")
		if len(fields) != 5 {
			return nil, fmt.Errorf("keyframe %q: want 5 fields", entry)
		}
		f, err := splitFloats(strings.Join(fields[:4], ","), 4)
		if err != nil {
			return nil, err
		}
		mode, err := strconv.ParseInt(fields[4], 10, 32)
		if err != nil {
			return nil, err
		}
		c.Keys = append(c.Keys, Keyframe{f[0], f[1], f[2], f[3], int32(mode)})
	}
	return c, nil
}

func decodeGradient(s string) (Value, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 2 {
		return nil, fmt.Errorf("want 2 sections, got %d", len(parts))
	}
	var g Gradient
	for _, entry := range splitEntries(parts[0]) {
		f, err := splitFloats(entry, 5)
		if err != nil {
			return nil, err
		}
		g.ColorKeys = append(g.ColorKeys, ColorKey{Time: f[0], Color: Color{f[1], f[2], f[3], f[4]}})
	}
	for _, entry := range splitEntries(parts[1]) {
		f, err := splitFloats(entry, 2)
		if err != nil {
			return nil, err
		}
		g.AlphaKeys = append(g.AlphaKeys, AlphaKey{Time: f[0], Alpha: f[1]})
	}
	return g, nil
}

func decodeSpline(s string) (Value, error) {
	var sp Spline
	for _, entry := range splitEntries(s) {
		f, err := splitFloats(entry, 3)
		if err != nil {
			return nil, err
		}
		sp = append(sp, Vector3{f[0], f[1], f[2]})
	}
	return sp, nil
}

// splitEntries splits a ';'-separated list. An empty string is an empty list.
func splitEntries(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}

// FormatFloat formats f in its shortest form that parses back to the same float32.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// ParseFloat parses a float32 written by FormatFloat.
func ParseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	return float32(f), err
}

// ParseBool parses "true"/"false" case-insensitively, which also accepts
// the capitalized spelling found in older documents.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool %q", s)
}

func joinFloats(fs ...float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = FormatFloat(f)
	}
	return strings.Join(parts, ",")
}

func splitFloats(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(parts))
	}
	out := make([]float32, n)
	for i, p := range parts {
		f, err := ParseFloat(p)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
