package sdktrace

import (
	"sync"
	"time"

	"github.com/YaoYingLong/eleven-otelcore/attribute"
	"github.com/YaoYingLong/eleven-otelcore/trace"
)

// Span is the mutable, in-flight span application code holds between
// Tracer.Start and Span.End. Its methods are safe for concurrent use,
// mirroring the synchronized accessors on the Java SDK's span implementation.
type Span struct {
	mu sync.Mutex

	name         string
	spanContext  trace.SpanContext
	parent       trace.SpanContext
	kind         SpanKind
	startTime    time.Time
	endTime      time.Time
	ended        bool
	recording    bool

	attrs   *limitedAttributeSet
	events  *limitedEventList
	links   *limitedLinkList
	status  Status

	scope     InstrumentationScope
	tracer    *Tracer
	childSpanCount int
}

// limitedAttributeSet dedups-and-truncates like attribute.Set but tracks a
// running drop count, which attribute.Set intentionally does not expose.
type limitedAttributeSet struct {
	limits  attribute.Limits
	kvs     []attribute.KeyValue
	seen    map[string]int
	dropped int
}

func newLimitedAttributeSet(countLimit, valueLenLimit int) *limitedAttributeSet {
	return &limitedAttributeSet{
		limits: attribute.Limits{MaxCount: countLimit, MaxStringLength: valueLenLimit},
		seen:   make(map[string]int),
	}
}

func (s *limitedAttributeSet) add(kvs []attribute.KeyValue) {
	for _, kv := range kvs {
		key := string(kv.Key)
		if idx, ok := s.seen[key]; ok {
			s.kvs[idx] = kv
			continue
		}
		if s.limits.MaxCount > 0 && len(s.kvs) >= s.limits.MaxCount {
			s.dropped++
			continue
		}
		s.seen[key] = len(s.kvs)
		s.kvs = append(s.kvs, kv)
	}
}

func (s *limitedAttributeSet) snapshot() ([]attribute.KeyValue, int) {
	set := attribute.NewSetWithLimits(s.limits, s.kvs...)
	return set.ToSlice(), s.dropped
}

// SpanContext returns the span's identity. Safe to call after End.
func (s *Span) SpanContext() trace.SpanContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spanContext
}

// IsRecording reports whether the span is still accepting mutations.
func (s *Span) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// SetName changes the span's name; a no-op once ended.
func (s *Span) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	s.name = name
}

// SetAttributes merges kvs into the span's attribute set, truncating or
// dropping per SpanLimits; a no-op once ended.
func (s *Span) SetAttributes(kvs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	s.attrs.add(kvs)
}

// AddEvent appends a timestamped event, subject to EventCountLimit.
func (s *Span) AddEvent(name string, opts ...EventOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	cfg := newEventConfig(opts)
	s.events.add(Event{Name: name, Attributes: cfg.attrs, Time: cfg.timestamp})
}

// AddLink appends a causal link, subject to LinkCountLimit.
func (s *Span) AddLink(link Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	s.links.add(link)
}

// SetStatus sets the span's outcome. Per the OTel status precedence rule,
// an Error status may downgrade an OK one only if explicitly described;
// here we follow the simpler documented rule: Error always wins over
// Unset, OK always wins over Unset, and Error is sticky against a later OK.
func (s *Span) SetStatus(code StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	if s.status.Code == StatusCodeError && code == StatusCodeOK {
		return
	}
	s.status = Status{Code: code, Description: description}
}

// RecordError is a convenience that adds an "exception" event carrying
// err's message as exception.message; it does not change the span status.
func (s *Span) RecordError(err error, opts ...EventOption) {
	if err == nil {
		return
	}
	cfg := newEventConfig(opts)
	cfg.attrs = append(cfg.attrs, attribute.String("exception.message", err.Error()))
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	s.events.add(Event{Name: "exception", Attributes: cfg.attrs, Time: cfg.timestamp})
}

// End freezes the span and hands it to the owning Tracer's processor chain.
// Calling End more than once only the first call has effect, matching the
// Java SDK's idempotent end() contract.
func (s *Span) End(opts ...EndOption) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	wasRecording := s.recording
	s.ended = true
	s.recording = false
	cfg := newEndConfig(opts)
	if !cfg.timestamp.IsZero() {
		s.endTime = cfg.timestamp
	} else {
		s.endTime = time.Now()
	}
	data := s.snapshotLocked()
	s.mu.Unlock()

	if wasRecording {
		s.tracer.onEnd(data)
	}
}

func (s *Span) snapshotLocked() SpanData {
	attrs, droppedAttrs := s.attrs.snapshot()
	events, droppedEvents := s.events.snapshot()
	links, droppedLinks := s.links.snapshot()
	return SpanData{
		Name:                  s.name,
		SpanContext:           s.spanContext,
		Parent:                s.parent,
		SpanKind:              s.kind,
		StartTime:             s.startTime,
		EndTime:               s.endTime,
		Attributes:            attrs,
		DroppedAttributeCount: droppedAttrs,
		Events:                events,
		DroppedEventCount:     droppedEvents,
		Links:                 links,
		DroppedLinkCount:      droppedLinks,
		Status:                s.status,
		Resource:              s.tracer.provider.resource,
		InstrumentationScope:  s.scope,
		ChildSpanCount:        s.childSpanCount,
	}
}

// EventOption configures AddEvent/RecordError.
type EventOption interface{ applyEvent(*eventConfig) }

type eventConfig struct {
	attrs     []attribute.KeyValue
	timestamp time.Time
}

func newEventConfig(opts []EventOption) eventConfig {
	c := eventConfig{timestamp: time.Now()}
	for _, o := range opts {
		o.applyEvent(&c)
	}
	return c
}

type eventAttrsOption []attribute.KeyValue

func (o eventAttrsOption) applyEvent(c *eventConfig) { c.attrs = append(c.attrs, o...) }

// WithEventAttributes attaches attributes to a single event.
func WithEventAttributes(kvs ...attribute.KeyValue) EventOption { return eventAttrsOption(kvs) }

type eventTimestampOption time.Time

func (o eventTimestampOption) applyEvent(c *eventConfig) { c.timestamp = time.Time(o) }

// WithEventTimestamp overrides an event's timestamp; default is time.Now().
func WithEventTimestamp(t time.Time) EventOption { return eventTimestampOption(t) }

// EndOption configures Span.End.
type EndOption interface{ applyEnd(*endConfig) }

type endConfig struct {
	timestamp time.Time
}

func newEndConfig(opts []EndOption) endConfig {
	c := endConfig{}
	for _, o := range opts {
		o.applyEnd(&c)
	}
	return c
}

type endTimestampOption time.Time

func (o endTimestampOption) applyEnd(c *endConfig) { c.timestamp = time.Time(o) }

// WithEndTimestamp overrides a span's end time; default is time.Now().
func WithEndTimestamp(t time.Time) EndOption { return endTimestampOption(t) }
