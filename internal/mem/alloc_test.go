package mem

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	A uint32
	B uint16
}

func TestSizeOf(t *testing.T) {
	assert.Equal(t, 4, SizeOf[uint32]())
	assert.Equal(t, 8, SizeOf[pair]())
	assert.Equal(t, 4, AlignOf[pair]())
}

func TestAsBytes(t *testing.T) {
	s := []uint32{1, 2, 0xAABBCCDD}
	b := AsBytes(s)
	require.Len(t, b, 12)

	assert.Equal(t, uint32(0xAABBCCDD), binary.NativeEndian.Uint32(b[8:]))

	// The view aliases the slice.
	s[0] = 7
	assert.Equal(t, uint32(7), binary.NativeEndian.Uint32(b[0:]))

	assert.Nil(t, AsBytes[uint32](nil))
}

func BenchmarkAsBytes(b *testing.B) {
	s := make([]pair, 4096)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = AsBytes(s)
	}
}
