package matcher

import "github.com/matchingram/matchingram/schema"

// View exposes one message as typed lookups keyed by schema field id.
// A view borrows its message for the duration of a single Match call;
// the matcher reads each field at most once per condition, in source
// order, so a view may compute values lazily.
type View interface {
	Get(id schema.FieldID) FieldValue
}

type fvKind uint8

const (
	fvNone fvKind = iota
	fvBool
	fvPresent
	fvStr
	fvInt
	fvFloat
)

// FieldValue is the tagged result of a field lookup. Value-bearing
// fields that are missing, null or empty report None; presence-kinded
// fields report Present(false) instead.
type FieldValue struct {
	kind fvKind
	b    bool
	i    int64
	f    float64
	s    string
}

// None reports a missing value-bearing field.
func None() FieldValue { return FieldValue{} }

// Bool wraps a boolean field value.
func Bool(v bool) FieldValue { return FieldValue{kind: fvBool, b: v} }

// Present wraps a presence test result.
func Present(v bool) FieldValue { return FieldValue{kind: fvPresent, b: v} }

// Str wraps a string field value.
func Str(s string) FieldValue { return FieldValue{kind: fvStr, s: s} }

// Int wraps an integer field value.
func Int(i int64) FieldValue { return FieldValue{kind: fvInt, i: i} }

// Float wraps a float field value.
func Float(f float64) FieldValue { return FieldValue{kind: fvFloat, f: f} }

// IsNone reports whether the lookup found no value.
func (v FieldValue) IsNone() bool { return v.kind == fvNone }

// truthy is the bare-condition test: set booleans, positive presence,
// and non-empty content.
func (v FieldValue) truthy() bool {
	switch v.kind {
	case fvBool, fvPresent:
		return v.b
	case fvStr:
		return v.s != ""
	case fvInt, fvFloat:
		return true
	default:
		return false
	}
}

func (v FieldValue) asFloat() float64 {
	if v.kind == fvInt {
		return float64(v.i)
	}
	return v.f
}
