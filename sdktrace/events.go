package sdktrace

import (
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// Event is a timestamped annotation attached to a span.
type Event struct {
	Name                  string
	Attributes            []attribute.KeyValue
	Time                  time.Time
	DroppedAttributeCount int
}

// Link points at a causally related span, possibly in another trace.
type Link struct {
	SpanContext           trace.SpanContext
	Attributes            []attribute.KeyValue
	DroppedAttributeCount int
}

// limitedEventList is a fixed-capacity ring buffer: once full it drops the
// oldest entry and counts the drop, mirroring the span-limits behavior the
// Java BatchSpanProcessor's sibling span implementation applies to events
// and links (spec.md §4.5 step 6, supplemented by SPEC_FULL.md limits.go).
type limitedEventList struct {
	events  []Event
	limit   int
	dropped int
}

func newLimitedEventList(limit int) *limitedEventList {
	if limit < 0 {
		limit = 0
	}
	return &limitedEventList{limit: limit}
}

func (l *limitedEventList) add(e Event) {
	if l.limit == 0 {
		l.dropped++
		return
	}
	if len(l.events) >= l.limit {
		l.events = l.events[1:]
		l.dropped++
	}
	l.events = append(l.events, e)
}

func (l *limitedEventList) snapshot() ([]Event, int) {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out, l.dropped
}

type limitedLinkList struct {
	links   []Link
	limit   int
	dropped int
}

func newLimitedLinkList(limit int) *limitedLinkList {
	if limit < 0 {
		limit = 0
	}
	return &limitedLinkList{limit: limit}
}

func (l *limitedLinkList) add(link Link) {
	if l.limit == 0 {
		l.dropped++
		return
	}
	if len(l.links) >= l.limit {
		l.links = l.links[1:]
		l.dropped++
	}
	l.links = append(l.links, link)
}

func (l *limitedLinkList) snapshot() ([]Link, int) {
	out := make([]Link, len(l.links))
	copy(out, l.links)
	return out, l.dropped
}
