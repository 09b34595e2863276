package attribute

// Key is an attribute name. Identity of a KeyValue is (Key, Value.Type) —
// two keys with the same name but different value types are distinct
// (spec.md §3).
type Key string

func (k Key) String() string { return string(k) }

// KeyValue is a named, typed attribute entry.
type KeyValue struct {
	Key   Key
	Value Value
}

func Bool(k string, v bool) KeyValue                     { return KeyValue{Key(k), BoolValue(v)} }
func Int64(k string, v int64) KeyValue                   { return KeyValue{Key(k), Int64Value(v)} }
func Int(k string, v int) KeyValue                       { return KeyValue{Key(k), IntValue(v)} }
func Float64(k string, v float64) KeyValue               { return KeyValue{Key(k), Float64Value(v)} }
func String(k string, v string) KeyValue                 { return KeyValue{Key(k), StringValue(v)} }
func BoolSlice(k string, v []bool) KeyValue              { return KeyValue{Key(k), BoolSliceValue(v)} }
func Int64Slice(k string, v []int64) KeyValue            { return KeyValue{Key(k), Int64SliceValue(v)} }
func Float64Slice(k string, v []float64) KeyValue        { return KeyValue{Key(k), Float64SliceValue(v)} }
func StringSlice(k string, v []string) KeyValue          { return KeyValue{Key(k), StringSliceValue(v)} }

// identity reports the (name, type) pair that distinguishes two KeyValues
// with the same Key but different Value.Type.
func (kv KeyValue) identity() identityKey {
	return identityKey{name: string(kv.Key), vtype: kv.Value.vtype}
}

type identityKey struct {
	name  string
	vtype Type
}
