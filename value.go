package multirow

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueKind represents a JSON-like value kind.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueNumber
	ValueString
	ValueArray
	ValueObject
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueArray:
		return "array"
	case ValueObject:
		return "object"
	default:
		return "unknown"
	}
}

var ErrUnsupportedAttrValue = errors.New("unsupported attribute value type")

// Value is a JSON-like attribute value.
// A nil Value means "undefined" (attribute absent); NullValue is an explicit null.
// 値は不変扱い（immutable）を前提とする。
type Value interface {
	Kind() ValueKind
	String() string
}

// NullValue represents null.
type NullValue struct{}

func (NullValue) Kind() ValueKind { return ValueNull }
func (NullValue) String() string  { return "null" }

// BoolValue represents a boolean.
type BoolValue bool

func (v BoolValue) Kind() ValueKind { return ValueBool }
func (v BoolValue) String() string  { return strconv.FormatBool(bool(v)) }

// NumberValue represents a number (float64).
type NumberValue float64

func (v NumberValue) Kind() ValueKind { return ValueNumber }
func (v NumberValue) String() string  { return strconv.FormatFloat(float64(v), 'f', -1, 64) }

// StringValue represents a string.
type StringValue string

func (v StringValue) Kind() ValueKind { return ValueString }
func (v StringValue) String() string  { return strconv.Quote(string(v)) }

// ArrayValue represents an array of values.
type ArrayValue []Value

func (v ArrayValue) Kind() ValueKind { return ValueArray }
func (v ArrayValue) String() string {
	if len(v) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(v))
	for _, item := range v {
		if item == nil {
			parts = append(parts, "null")
			continue
		}
		parts = append(parts, item.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectValue represents a map of string keys to values.
// NOTE: callers must treat the map as immutable.
type ObjectValue map[string]Value

func (v ObjectValue) Kind() ValueKind { return ValueObject }
func (v ObjectValue) String() string {
	if len(v) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := v[key]
		if value == nil {
			parts = append(parts, strconv.Quote(key)+": null")
			continue
		}
		parts = append(parts, strconv.Quote(key)+": "+value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Constructors for convenience.
func VNull() Value            { return NullValue{} }
func VBool(v bool) Value      { return BoolValue(v) }
func VNumber(v float64) Value { return NumberValue(v) }
func VString(v string) Value  { return StringValue(v) }

// VArray and VObject do not copy; callers must not mutate after construction.
func VArray(v []Value) Value           { return ArrayValue(v) }
func VObject(v map[string]Value) Value { return ObjectValue(v) }

// Equal reports whether two attribute values are the same.
// Arrays and objects compare by content; nil only equals nil.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case ArrayValue:
		y := b.(ArrayValue)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case ObjectValue:
		y := b.(ObjectValue)
		if len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// FromAny converts plain Go values (as produced by yaml/json decoding) to Value.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NullValue{}, nil
	case Value:
		return x, nil
	case bool:
		return BoolValue(x), nil
	case int:
		return NumberValue(float64(x)), nil
	case int64:
		return NumberValue(float64(x)), nil
	case uint:
		return NumberValue(float64(x)), nil
	case uint64:
		return NumberValue(float64(x)), nil
	case float32:
		return NumberValue(float64(x)), nil
	case float64:
		return NumberValue(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return NumberValue(f), nil
	case string:
		return StringValue(x), nil
	case []string:
		out := make(ArrayValue, 0, len(x))
		for _, s := range x {
			out = append(out, StringValue(s))
		}
		return out, nil
	case []Value:
		return ArrayValue(x), nil
	case []any:
		out := make(ArrayValue, 0, len(x))
		for _, item := range x {
			vv, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			out = append(out, vv)
		}
		return out, nil
	case map[string]Value:
		return ObjectValue(x), nil
	case map[string]any:
		out := make(ObjectValue, len(x))
		for k, item := range x {
			vv, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			out[k] = vv
		}
		return out, nil
	default:
		return nil, ErrUnsupportedAttrValue
	}
}

// MustFromAny converts plain values and panics on failure.
// Use only in tests or fixtures.
func MustFromAny(v any) Value {
	out, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return out
}

// ToAny converts a Value back to plain Go values for encoding.
func ToAny(v Value) any {
	switch x := v.(type) {
	case nil, NullValue:
		return nil
	case BoolValue:
		return bool(x)
	case NumberValue:
		f := float64(x)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case StringValue:
		return string(x)
	case ArrayValue:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = ToAny(item)
		}
		return out
	case ObjectValue:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = ToAny(item)
		}
		return out
	default:
		return x.String()
	}
}

// DeepCopyValue copies nested values.
func DeepCopyValue(v Value) Value {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case ArrayValue:
		out := make(ArrayValue, len(x))
		for i, item := range x {
			out[i] = DeepCopyValue(item)
		}
		return out
	case ObjectValue:
		out := make(ObjectValue, len(x))
		for k, item := range x {
			out[k] = DeepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
