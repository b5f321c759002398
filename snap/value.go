package snap

import (
	"strconv"
	"strings"
)

// ValueKind identifies which variant an ArgValue holds.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueStringList
)

func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "none"
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueStringList:
		return "[]string"
	default:
		return "unknown"
	}
}

// ArgValue is the value bound to an argument: none, bool, int64, float64,
// string or a list of strings. The zero value is None.
type ArgValue struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	list []string
}

// NoneValue returns the empty value.
func NoneValue() ArgValue { return ArgValue{} }

// BoolValue wraps a bool.
func BoolValue(v bool) ArgValue { return ArgValue{kind: ValueBool, b: v} }

// IntValue wraps an int64.
func IntValue(v int64) ArgValue { return ArgValue{kind: ValueInt, i: v} }

// FloatValue wraps a float64.
func FloatValue(v float64) ArgValue { return ArgValue{kind: ValueFloat, f: v} }

// StringValue wraps a string.
func StringValue(v string) ArgValue { return ArgValue{kind: ValueString, s: v} }

// StringListValue wraps a copy of v.
func StringListValue(v []string) ArgValue {
	list := make([]string, len(v))
	copy(list, v)
	return ArgValue{kind: ValueStringList, list: list}
}

// Kind returns the variant held.
func (v ArgValue) Kind() ValueKind { return v.kind }

// IsNone reports whether the value is empty.
func (v ArgValue) IsNone() bool { return v.kind == ValueNone }

// Bool returns the bool variant.
func (v ArgValue) Bool() (bool, bool) { return v.b, v.kind == ValueBool }

// Int returns the int64 variant.
func (v ArgValue) Int() (int64, bool) { return v.i, v.kind == ValueInt }

// Float returns the float64 variant.
func (v ArgValue) Float() (float64, bool) { return v.f, v.kind == ValueFloat }

// Str returns the string variant.
func (v ArgValue) Str() (string, bool) { return v.s, v.kind == ValueString }

// Strings returns a copy of the string list variant.
func (v ArgValue) Strings() ([]string, bool) {
	if v.kind != ValueStringList {
		return nil, false
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out, true
}

// Interface returns the value as a plain Go value (nil for None).
func (v ArgValue) Interface() any {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueInt:
		return v.i
	case ValueFloat:
		return v.f
	case ValueString:
		return v.s
	case ValueStringList:
		out, _ := v.Strings()
		return out
	default:
		return nil
	}
}

// Equal reports whether both values hold the same variant and contents.
func (v ArgValue) Equal(o ArgValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueBool:
		return v.b == o.b
	case ValueInt:
		return v.i == o.i
	case ValueFloat:
		return v.f == o.f
	case ValueString:
		return v.s == o.s
	case ValueStringList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
	}
	return true
}

// String renders the value for help output and diagnostics.
func (v ArgValue) String() string {
	switch v.kind {
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueString:
		return v.s
	case ValueStringList:
		return "[" + strings.Join(v.list, ", ") + "]"
	default:
		return "<none>"
	}
}

// appendString returns a list value with s appended. Only call it on lists
// owned by a ParseResult, never on defaults stored in the command tree.
func (v ArgValue) appendString(s string) ArgValue {
	return ArgValue{kind: ValueStringList, list: append(v.list, s)}
}
