// Package attribute provides the typed key/value bag used throughout the
// tracing and metrics pipelines to describe spans, events, and measurement
// dimensions.
package attribute

import (
	"fmt"
	"math"
	"strconv"
)

// Type identifies the kind of value a Key maps to. Two keys with the same
// name but different Type are distinct identities (spec.md §3).
type Type int

const (
	INVALID Type = iota
	BOOL
	INT64
	FLOAT64
	STRING
	BOOLSLICE
	INT64SLICE
	FLOAT64SLICE
	STRINGSLICE
)

func (t Type) String() string {
	switch t {
	case BOOL:
		return "BOOL"
	case INT64:
		return "INT64"
	case FLOAT64:
		return "FLOAT64"
	case STRING:
		return "STRING"
	case BOOLSLICE:
		return "BOOLSLICE"
	case INT64SLICE:
		return "INT64SLICE"
	case FLOAT64SLICE:
		return "FLOAT64SLICE"
	case STRINGSLICE:
		return "STRINGSLICE"
	default:
		return "INVALID"
	}
}

// Value is a variant type holding one of the value kinds supported by Type.
type Value struct {
	vtype    Type
	numeric  uint64
	stringly string
	slice    interface{}
}

func BoolValue(v bool) Value {
	n := uint64(0)
	if v {
		n = 1
	}
	return Value{vtype: BOOL, numeric: n}
}

func Int64Value(v int64) Value {
	return Value{vtype: INT64, numeric: uint64(v)}
}

func IntValue(v int) Value {
	return Int64Value(int64(v))
}

func Float64Value(v float64) Value {
	return Value{vtype: FLOAT64, numeric: math.Float64bits(v)}
}

func StringValue(v string) Value {
	return Value{vtype: STRING, stringly: v}
}

func BoolSliceValue(v []bool) Value {
	cp := make([]bool, len(v))
	copy(cp, v)
	return Value{vtype: BOOLSLICE, slice: cp}
}

func Int64SliceValue(v []int64) Value {
	cp := make([]int64, len(v))
	copy(cp, v)
	return Value{vtype: INT64SLICE, slice: cp}
}

func Float64SliceValue(v []float64) Value {
	cp := make([]float64, len(v))
	copy(cp, v)
	return Value{vtype: FLOAT64SLICE, slice: cp}
}

func StringSliceValue(v []string) Value {
	cp := make([]string, len(v))
	copy(cp, v)
	return Value{vtype: STRINGSLICE, slice: cp}
}

func (v Value) Type() Type { return v.vtype }

func (v Value) AsBool() bool { return v.numeric == 1 }

func (v Value) AsInt64() int64 { return int64(v.numeric) }

func (v Value) AsFloat64() float64 { return math.Float64frombits(v.numeric) }

func (v Value) AsString() string { return v.stringly }

func (v Value) AsBoolSlice() []bool { return append([]bool{}, v.slice.([]bool)...) }

func (v Value) AsInt64Slice() []int64 { return append([]int64{}, v.slice.([]int64)...) }

func (v Value) AsFloat64Slice() []float64 { return append([]float64{}, v.slice.([]float64)...) }

func (v Value) AsStringSlice() []string { return append([]string{}, v.slice.([]string)...) }

// Emit renders the value for debugging/logging purposes and for the
// fingerprint attribute.Set.Equivalent uses to key aggregator handle maps.
func (v Value) Emit() string {
	switch v.vtype {
	case BOOL:
		return strconv.FormatBool(v.AsBool())
	case INT64:
		return strconv.FormatInt(v.AsInt64(), 10)
	case FLOAT64:
		return strconv.FormatFloat(v.AsFloat64(), 'g', -1, 64)
	case STRING:
		return v.stringly
	case BOOLSLICE:
		return fmt.Sprint(v.slice.([]bool))
	case INT64SLICE:
		return fmt.Sprint(v.slice.([]int64))
	case FLOAT64SLICE:
		return fmt.Sprint(v.slice.([]float64))
	case STRINGSLICE:
		return fmt.Sprint(v.slice.([]string))
	default:
		return "<invalid>"
	}
}
