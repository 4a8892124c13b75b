package serial

import (
	"strconv"
	"strings"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/primitive"
)

// attrs parses the scalar attributes of one element. The first failure is
// kept and every later call is a no-op, so callers check err once at the end.
type attrs struct {
	elem string
	err  error
}

func (a *attrs) fail(name, value string, cause error) {
	if a.err == nil {
		a.err = errors.Wrap(errors.ErrCodeMalformedDocument, cause, "%s: attribute %s=%q", a.elem, name, value)
	}
}

func (a *attrs) bool(name, s string) bool {
	if a.err != nil {
		return false
	}
	b, err := primitive.ParseBool(s)
	if err != nil {
		a.fail(name, s, err)
	}
	return b
}

func (a *attrs) float(name, s string) float32 {
	if a.err != nil {
		return 0
	}
	f, err := primitive.ParseFloat(s)
	if err != nil {
		a.fail(name, s, err)
	}
	return f
}

func (a *attrs) int32(name, s string) int32 {
	if a.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		a.fail(name, s, err)
	}
	return int32(n)
}

func (a *attrs) uint32(name, s string) uint32 {
	if a.err != nil {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		a.fail(name, s, err)
	}
	return uint32(n)
}

func (a *attrs) vector2(name, s string) primitive.Vector2 {
	if a.err != nil {
		return primitive.Vector2{}
	}
	v, err := primitive.Text.Decode(s, primitive.TypeVector2)
	if err != nil {
		a.fail(name, s, err)
		return primitive.Vector2{}
	}
	return v.(primitive.Vector2)
}

func (a *attrs) color(name, s string) primitive.Color {
	if a.err != nil {
		return primitive.Color{}
	}
	v, err := primitive.Text.Decode(s, primitive.TypeColor)
	if err != nil {
		a.fail(name, s, err)
		return primitive.Color{}
	}
	return v.(primitive.Color)
}

func (a *attrs) blend(name, s string) model.BlendMode {
	if a.err != nil {
		return 0
	}
	m, err := model.ParseBlendMode(s)
	if err != nil {
		a.fail(name, s, err)
	}
	return m
}

// ids parses a whitespace-separated list of IDs. An empty list is valid.
func (a *attrs) ids(name, s string) []int32 {
	fields := strings.Fields(s)
	out := make([]int32, 0, len(fields))
	for _, f := range fields {
		id := a.int32(name, f)
		if a.err != nil {
			return nil
		}
		out = append(out, id)
	}
	return out
}

// flags parses a whitespace-separated bool list that must have n entries.
func (a *attrs) flags(name, s string, n int) []bool {
	fields := strings.Fields(s)
	if len(fields) != n {
		if a.err == nil {
			a.err = errors.New(errors.ErrCodeMalformedDocument, "%s: %s has %d entries, want %d", a.elem, name, len(fields), n)
		}
		return nil
	}
	out := make([]bool, n)
	for i, f := range fields {
		out[i] = a.bool(name, f)
	}
	if a.err != nil {
		return nil
	}
	return out
}

func formatBool(b bool) string { return strconv.FormatBool(b) }

func formatInt(n int32) string { return strconv.FormatInt(int64(n), 10) }

func formatVector2(v primitive.Vector2) string {
	return primitive.FormatFloat(v.X) + "," + primitive.FormatFloat(v.Y)
}

func formatColor(c primitive.Color) string {
	return primitive.FormatFloat(c.R) + "," + primitive.FormatFloat(c.G) + "," +
		primitive.FormatFloat(c.B) + "," + primitive.FormatFloat(c.A)
}

func formatIDs(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = formatInt(id)
	}
	return strings.Join(parts, " ")
}

func formatFlags(flags []bool) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = formatBool(f)
	}
	return strings.Join(parts, " ")
}
