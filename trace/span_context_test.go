package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanContextValidity(t *testing.T) {
	valid := NewSpanContext(SpanContextConfig{
		TraceID: TraceID{1}, SpanID: SpanID{1},
	})
	assert.True(t, valid.IsValid())

	noSpan := NewSpanContext(SpanContextConfig{TraceID: TraceID{1}})
	assert.False(t, noSpan.IsValid())

	empty := SpanContext{}
	assert.False(t, empty.IsValid())
}

func TestSpanContextEqualityByAllFields(t *testing.T) {
	base := SpanContextConfig{TraceID: TraceID{1}, SpanID: SpanID{1}, TraceFlags: FromByte(1)}
	a := NewSpanContext(base)
	b := NewSpanContext(base)
	assert.True(t, a.Equal(b))

	c := a.WithRemote(true)
	assert.False(t, a.Equal(c))
}

func TestTraceIDHexRoundTrip(t *testing.T) {
	id, err := TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", id.String())
}

func TestRandomIDGeneratorProducesValidIDs(t *testing.T) {
	gen := NewRandomIDGenerator()
	tid, sid := gen.NewIDs()
	assert.True(t, tid.IsValid())
	assert.True(t, sid.IsValid())
}
