package data

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Value represents a binding-context value, which may be one of the
// enumerated types.  The zero value represents an Undefined value.
type Value interface {
	// Truthy returns true according to the template definition of truthy
	// and falsy values: absent, null, false, numeric zero, NaN, and the
	// empty string are falsy; everything else (including empty lists and
	// maps) is truthy.
	Truthy() bool

	// String formats this value for display in a template.  Undefined and
	// Null display as the empty string; lists and maps display as a
	// deterministic JSON-style serialization.
	String() string
}

// Value types
type (
	Undefined struct{}
	Null      struct{}
	Bool      bool
	Int       int64
	Float     float64
	String    string
	List      []Value
	Map       map[string]Value
)

// Index retrieves a value from this list, or Undefined if out of bounds.
func (v List) Index(i int) Value {
	if !(0 <= i && i < len(v)) {
		return Undefined{}
	}
	return v[i]
}

// Key retrieves a value under the named key, or Undefined if it doesn't exist.
func (v Map) Key(k string) Value {
	var result, ok = v[k]
	if !ok {
		return Undefined{}
	}
	return result
}

// Truthy ----------

func (v Undefined) Truthy() bool { return false }
func (v Null) Truthy() bool      { return false }
func (v Bool) Truthy() bool      { return bool(v) }
func (v Int) Truthy() bool       { return v != 0 }
func (v Float) Truthy() bool     { return v != 0.0 && !math.IsNaN(float64(v)) }
func (v String) Truthy() bool    { return v != "" }
func (v List) Truthy() bool      { return true }
func (v Map) Truthy() bool       { return true }

// String ----------

func (v Undefined) String() string { return "" }
func (v Null) String() string      { return "" }
func (v Bool) String() string      { return strconv.FormatBool(bool(v)) }
func (v Int) String() string       { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string {
	if math.IsNaN(float64(v)) {
		return "NaN"
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}
func (v String) String() string { return string(v) }

func (v List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(serialize(item))
	}
	b.WriteByte(']')
	return b.String()
}

func (v Map) String() string {
	var keys = make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.WriteString(serialize(v[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// serialize returns the JSON-style form of a value nested within a list or
// map serialization, where strings are quoted and null is spelled out.
func serialize(v Value) string {
	switch v := v.(type) {
	case nil, Undefined, Null:
		return "null"
	case String:
		return strconv.Quote(string(v))
	default:
		return v.String()
	}
}
