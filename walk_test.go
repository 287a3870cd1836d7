package svo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk(t *testing.T) {
	t.Run("EmptyTree", func(t *testing.T) {
		tree := newTree[uint32](t, 4)

		var regions []Region
		tree.Walk(func(r Region, v uint32) bool {
			regions = append(regions, r)
			assert.Equal(t, uint32(0), v)
			return true
		})

		require.Len(t, regions, 1)
		assert.Equal(t, Region{MinX: -8, MinY: -8, MinZ: -8, Side: 16}, regions[0])
	})

	t.Run("CoversDomain", func(t *testing.T) {
		tree := newTree[uint32](t, 3)
		tree.Set(0, 0, 0, 1)
		tree.Set(-4, 3, -1, 2)

		var cells uint64
		leaves := 0
		tree.Walk(func(r Region, v uint32) bool {
			cells += r.Cells()
			leaves++
			if r.Side == 1 && r.Contains(0, 0, 0) {
				assert.Equal(t, uint32(1), v)
			}
			if r.Contains(-4, 3, -1) {
				assert.Equal(t, uint32(2), v)
				assert.Equal(t, uint32(1), r.Side)
			}
			return true
		})

		assert.Equal(t, uint64(8*8*8), cells)
		assert.Equal(t, tree.Stats().Leaves, leaves)
	})

	t.Run("OctantOrder", func(t *testing.T) {
		tree := newTree[uint32](t, 1)
		tree.Set(0, -1, -1, 1)

		var got []Region
		tree.Walk(func(r Region, _ uint32) bool {
			got = append(got, r)
			return true
		})

		require.Len(t, got, 8)
		assert.Equal(t, Region{MinX: -1, MinY: -1, MinZ: -1, Side: 1}, got[0])
		assert.Equal(t, Region{MinX: 0, MinY: -1, MinZ: -1, Side: 1}, got[1])
		assert.Equal(t, Region{MinX: -1, MinY: 0, MinZ: -1, Side: 1}, got[2])
		assert.Equal(t, Region{MinX: -1, MinY: -1, MinZ: 0, Side: 1}, got[4])
	})

	t.Run("StopsEarly", func(t *testing.T) {
		tree := newTree[uint32](t, 3)
		tree.Set(0, 0, 0, 1)

		calls := 0
		tree.Walk(func(Region, uint32) bool {
			calls++
			return calls < 3
		})
		assert.Equal(t, 3, calls)
	})
}

func TestRegion(t *testing.T) {
	r := Region{MinX: -2, MinY: 0, MinZ: 4, Side: 2}

	assert.Equal(t, uint64(8), r.Cells())
	assert.True(t, r.Contains(-2, 1, 5))
	assert.False(t, r.Contains(0, 0, 4))
	assert.False(t, r.Contains(-2, -1, 4))
}

func TestRegionCells(t *testing.T) {
	tests := []struct {
		side uint32
		want uint64
	}{
		{1, 1},
		{2, 8},
		{1 << 10, 1 << 30},
		{1 << 21, 1 << 63},
		{1 << 22, math.MaxUint64},
		{1 << 31, math.MaxUint64},
		{math.MaxUint32, math.MaxUint64},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Region{Side: tt.side}.Cells(), "side %d", tt.side)
	}
}

func TestWalkMaxDepth(t *testing.T) {
	for _, depth := range []uint32{21, 22, MaxDepth} {
		tree := newTree[uint8](t, depth, WithCapacity(MinCapacity))

		var regions []Region
		tree.Walk(func(r Region, _ uint8) bool {
			regions = append(regions, r)
			return true
		})

		require.Len(t, regions, 1)
		assert.Equal(t, tree.Side(), regions[0].Side)
		if depth <= 21 {
			assert.Equal(t, uint64(1)<<(3*depth), regions[0].Cells(), "depth %d", depth)
		} else {
			assert.Equal(t, uint64(math.MaxUint64), regions[0].Cells(), "depth %d", depth)
		}
	}
}
