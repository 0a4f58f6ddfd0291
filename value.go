package directory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueKind discriminates the closed set of attribute value shapes.
type ValueKind int

const (
	// KindAbsent is the zero Value, produced when an attribute does not
	// resolve. It never matches presence checks.
	KindAbsent ValueKind = iota
	// KindString is a UTF-8 string value.
	KindString
	// KindInt is a signed 64-bit integer value.
	KindInt
	// KindFloat is a 64-bit floating point value.
	KindFloat
	// KindBool is a boolean value.
	KindBool
	// KindList is an ordered list of values.
	KindList
)

// Value is a closed tagged variant for attribute values: a string, a number,
// a boolean, or a list of values. Using a fixed set of shapes keeps
// type-aware comparison and schema syntax checking well-defined, in contrast
// to an open interface{} payload.
//
// The zero Value is absent: it resolves no attribute and fails presence
// tests.
type Value struct {
	kind ValueKind
	str  string
	num  int64
	flt  float64
	bln  bool
	list []Value
}

// String constructs a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int constructs an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Float constructs a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, bln: b} }

// List constructs a list Value from the given elements.
func List(elems ...Value) Value {
	return Value{kind: KindList, list: elems}
}

// Strings constructs a list Value from string elements.
func Strings(elems ...string) Value {
	list := make([]Value, len(elems))
	for i, e := range elems {
		list[i] = String(e)
	}
	return Value{kind: KindList, list: list}
}

// Kind returns the value's shape discriminator.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the value is the absent zero Value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsList reports whether the value is a list.
func (v Value) IsList() bool { return v.kind == KindList }

// Elements returns the list elements, or the value itself as a one-element
// slice for scalars. Absent values yield nil.
func (v Value) Elements() []Value {
	switch v.kind {
	case KindAbsent:
		return nil
	case KindList:
		return v.list
	default:
		return []Value{v}
	}
}

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Render returns the value formatted as a string. Lists render their
// elements joined by commas.
func (v Value) Render() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.bln)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.Render()
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// numeric returns the value as a float64 when it carries a number.
func (v Value) numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.num), true
	case KindFloat:
		return v.flt, true
	default:
		return 0, false
	}
}

// Equal implements type-aware equality:
//   - two strings compare case-insensitively,
//   - two lists compare element-wise in order,
//   - a list and a scalar compare as membership,
//   - two numbers compare numerically,
//   - anything else falls back to case-insensitive string coercion.
//
// Absent values are never equal to anything, including other absent values.
func (v Value) Equal(o Value) bool {
	if v.kind == KindAbsent || o.kind == KindAbsent {
		return false
	}
	if v.kind == KindList && o.kind == KindList {
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	if v.kind == KindList {
		for _, e := range v.list {
			if e.Equal(o) {
				return true
			}
		}
		return false
	}
	if o.kind == KindList {
		return o.Equal(v)
	}
	if v.kind == KindString && o.kind == KindString {
		return strings.EqualFold(v.str, o.str)
	}
	if vn, ok := v.numeric(); ok {
		if on, ok := o.numeric(); ok {
			return vn == on
		}
	}
	if v.kind == KindBool && o.kind == KindBool {
		return v.bln == o.bln
	}
	return strings.EqualFold(v.Render(), o.Render())
}

// Compare orders two scalar values: numerically when both are numbers,
// otherwise by their rendered string forms. The second return is false when
// either side is absent or a list, for which no total order is defined.
func (v Value) Compare(o Value) (int, bool) {
	if v.kind == KindAbsent || o.kind == KindAbsent || v.kind == KindList || o.kind == KindList {
		return 0, false
	}
	if vn, ok := v.numeric(); ok {
		if on, ok := o.numeric(); ok {
			switch {
			case vn < on:
				return -1, true
			case vn > on:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	return strings.Compare(v.Render(), o.Render()), true
}

// Clone returns a deep copy of the value. List backing arrays are never
// shared between the clone and the original.
func (v Value) Clone() Value {
	if v.kind != KindList {
		return v
	}
	list := make([]Value, len(v.list))
	for i, e := range v.list {
		list[i] = e.Clone()
	}
	return Value{kind: KindList, list: list}
}

// fromAny converts a dynamically typed payload, as produced by the YAML and
// JSON decoders, into a Value. Unsupported payloads degrade to their
// fmt.Sprint rendering.
func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Value{}
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case []any:
		list := make([]Value, len(t))
		for i, e := range t {
			list[i] = fromAny(e)
		}
		return Value{kind: KindList, list: list}
	default:
		return String(fmt.Sprint(t))
	}
}

// toAny converts the value back into a dynamically typed payload for
// serialization.
func (v Value) toAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.bln
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.toAny()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toAny())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.toAny(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}
