package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetDedupLastWins(t *testing.T) {
	s := NewSet(String("a", "1"), Int("b", 1), String("a", "2"))
	require.Equal(t, 2, s.Len())
	v, ok := s.Value(Key("a"))
	require.True(t, ok)
	assert.Equal(t, "2", v.AsString())
}

func TestSetDistinctKeysSameNameDifferentType(t *testing.T) {
	s := NewSet(String("k", "v"), Int64("k", 1))
	assert.Equal(t, 2, s.Len())
}

func TestSetOrderedByKey(t *testing.T) {
	s := NewSet(String("z", "1"), String("a", "2"))
	kvs := s.ToSlice()
	require.Len(t, kvs, 2)
	assert.Equal(t, Key("a"), kvs[0].Key)
	assert.Equal(t, Key("z"), kvs[1].Key)
}

func TestSetEqual(t *testing.T) {
	a := NewSet(String("x", "1"), Int("y", 2))
	b := NewSet(Int("y", 2), String("x", "1"))
	assert.True(t, a.Equal(b))
}

func TestLimitsTruncateStringsNotReject(t *testing.T) {
	s := NewSetWithLimits(Limits{MaxStringLength: 3}, String("k", "abcdef"))
	v, ok := s.Value(Key("k"))
	require.True(t, ok)
	assert.Equal(t, "abc", v.AsString())
	assert.Equal(t, 1, s.Len())
}

func TestLimitsMaxCount(t *testing.T) {
	s := NewSetWithLimits(Limits{MaxCount: 1}, String("a", "1"), String("b", "2"))
	assert.Equal(t, 1, s.Len())
}
