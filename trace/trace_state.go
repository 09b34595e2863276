package trace

import "strings"

// TraceState is an ordered list of key=value entries, unique on key
// (spec.md §3). It is immutable; Insert/Delete return a new TraceState.
type TraceState struct {
	entries []traceStateEntry
}

type traceStateEntry struct {
	key, value string
}

// ParseTraceState parses a W3C-style "k1=v1,k2=v2" header value. Only the
// list-structure and key-uniqueness rules are enforced here; full key/value
// character-set validation is left to the propagation wire-format package,
// which is out of this module's scope (spec.md §1).
func ParseTraceState(s string) (TraceState, error) {
	ts := TraceState{}
	if s == "" {
		return ts, nil
	}
	for _, member := range strings.Split(s, ",") {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}
		kv := strings.SplitN(member, "=", 2)
		if len(kv) != 2 {
			continue
		}
		ts = ts.Insert(kv[0], kv[1])
	}
	return ts, nil
}

// Get returns the value for key, and whether it was present.
func (ts TraceState) Get(key string) (string, bool) {
	for _, e := range ts.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// Insert adds or updates key=value, moving it to the front (as the W3C spec
// requires for the entry that was just updated by this process).
func (ts TraceState) Insert(key, value string) TraceState {
	next := make([]traceStateEntry, 0, len(ts.entries)+1)
	next = append(next, traceStateEntry{key, value})
	for _, e := range ts.entries {
		if e.key == key {
			continue
		}
		next = append(next, e)
	}
	return TraceState{entries: next}
}

// Delete removes key, if present.
func (ts TraceState) Delete(key string) TraceState {
	next := make([]traceStateEntry, 0, len(ts.entries))
	for _, e := range ts.entries {
		if e.key == key {
			continue
		}
		next = append(next, e)
	}
	return TraceState{entries: next}
}

func (ts TraceState) Len() int { return len(ts.entries) }

// String renders the trace state as "k1=v1,k2=v2" in entry order.
func (ts TraceState) String() string {
	parts := make([]string, len(ts.entries))
	for i, e := range ts.entries {
		parts[i] = e.key + "=" + e.value
	}
	return strings.Join(parts, ",")
}
