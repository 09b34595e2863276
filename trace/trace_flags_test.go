package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTraceFlagsInterning pins spec.md §8 property 1: for all b in
// [0,255], FromByte(b).AsByte() == b, FromByte(b) is the identical value on
// repeat calls, hex rendering is two lowercase digits, and IsSampled tracks
// bit 0.
func TestTraceFlagsInterning(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		f1 := FromByte(b)
		f2 := FromByte(b)
		assert.Equal(t, b, f1.AsByte())
		assert.Equal(t, f1, f2, "interning must return identical value for byte %d", b)
		assert.Equal(t, (b&0x01) != 0, f1.IsSampled())
	}
	assert.Equal(t, "01", FromByte(0x01).String())
	assert.Equal(t, "ff", FromByte(0xff).String())
}

func TestTraceFlagsWithSampled(t *testing.T) {
	f := FromByte(0x00)
	assert.True(t, f.WithSampled(true).IsSampled())
	assert.False(t, f.WithSampled(true).WithSampled(false).IsSampled())
}
