package attribute

import "sort"

// Set is an immutable, sorted, deduplicated collection of KeyValues. Last
// write wins on (name, type) collisions, matching the teacher pack's
// go.opentelemetry.io/otel/attribute.Set construction convention.
type Set struct {
	kvs []KeyValue
}

// Distinct is an opaque, comparable summary of a Set's contents. Two Sets
// built from the same (deduplicated, sorted) KeyValues produce equal
// Distinct values, which is how aggregator handle maps key on attribute
// identity without hashing the full Value payload on every lookup.
type Distinct struct {
	fingerprint string
}

// NewSet builds a Set from kvs, sorting by key name and de-duplicating
// entries that collide on (name, type) — the later entry in iteration order
// wins, per the Limits truncation policy applied by NewSetWithLimits.
func NewSet(kvs ...KeyValue) Set {
	return NewSetWithLimits(Limits{}, kvs...)
}

// Limits bounds the size of an attribute container: MaxCount truncates the
// number of entries (0 means unlimited), MaxStringLength truncates string
// and string-slice-element values in place rather than rejecting them
// (spec.md §3: "truncation, not rejection").
type Limits struct {
	MaxCount        int
	MaxStringLength int
}

func NewSetWithLimits(lim Limits, kvs ...KeyValue) Set {
	dedup := make(map[identityKey]int, len(kvs))
	ordered := make([]KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		kv = truncate(kv, lim.MaxStringLength)
		id := kv.identity()
		if idx, ok := dedup[id]; ok {
			ordered[idx] = kv
			continue
		}
		dedup[id] = len(ordered)
		ordered = append(ordered, kv)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Key != ordered[j].Key {
			return ordered[i].Key < ordered[j].Key
		}
		return ordered[i].Value.vtype < ordered[j].Value.vtype
	})
	if lim.MaxCount > 0 && len(ordered) > lim.MaxCount {
		ordered = ordered[:lim.MaxCount]
	}
	return Set{kvs: ordered}
}

func truncate(kv KeyValue, maxLen int) KeyValue {
	if maxLen <= 0 {
		return kv
	}
	switch kv.Value.vtype {
	case STRING:
		if s := kv.Value.stringly; len(s) > maxLen {
			kv.Value.stringly = s[:maxLen]
		}
	case STRINGSLICE:
		orig := kv.Value.slice.([]string)
		out := make([]string, len(orig))
		for i, s := range orig {
			if len(s) > maxLen {
				s = s[:maxLen]
			}
			out[i] = s
		}
		kv.Value.slice = out
	}
	return kv
}

// Len returns the number of entries in the set.
func (s Set) Len() int { return len(s.kvs) }

// ToSlice returns the set's entries in canonical (sorted) order. Callers
// must not mutate the returned slice.
func (s Set) ToSlice() []KeyValue { return s.kvs }

// Value looks up a key's value within the set, ignoring value type.
func (s Set) Value(k Key) (Value, bool) {
	for _, kv := range s.kvs {
		if kv.Key == k {
			return kv.Value, true
		}
	}
	return Value{}, false
}

// HasValue reports whether the set has at least one entry for k.
func (s Set) HasValue(k Key) bool {
	_, ok := s.Value(k)
	return ok
}

// Equivalent returns a comparable summary of the set suitable for use as a
// map key.
func (s Set) Equivalent() Distinct {
	b := make([]byte, 0, 32*len(s.kvs))
	for _, kv := range s.kvs {
		b = append(b, kv.Key...)
		b = append(b, '=')
		b = append(b, byte(kv.Value.vtype))
		b = append(b, ':')
		b = append(b, kv.Value.Emit()...)
		b = append(b, ';')
	}
	return Distinct{fingerprint: string(b)}
}

// Equal reports whether two sets hold the same entries.
func (s Set) Equal(other Set) bool {
	return s.Equivalent() == other.Equivalent()
}
