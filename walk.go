package svo

import (
	"math"
	"math/bits"

	"github.com/hupe1980/svo/arena"
)

// Region is an axis-aligned cube of cells covered by one leaf.
type Region struct {
	// MinX, MinY and MinZ are the inclusive lower corner.
	MinX, MinY, MinZ int32
	// Side is the edge length in cells.
	Side uint32
}

// Cells returns the number of cells in r, saturating at math.MaxUint64 for
// sides of 2^22 and above.
func (r Region) Cells() uint64 {
	s := uint64(r.Side)
	hi, sq := bits.Mul64(s, s)
	if hi != 0 {
		return math.MaxUint64
	}
	hi, cube := bits.Mul64(sq, s)
	if hi != 0 {
		return math.MaxUint64
	}
	return cube
}

// Contains reports whether (x, y, z) lies inside r.
func (r Region) Contains(x, y, z int32) bool {
	in := func(v, lo int32) bool {
		d := int64(v) - int64(lo)
		return d >= 0 && d < int64(r.Side)
	}
	return in(x, r.MinX) && in(y, r.MinY) && in(z, r.MinZ)
}

// Walk calls fn for every leaf in octant order, depth first.
// Walking stops early when fn returns false.
func (t *Octree[T]) Walk(fn func(Region, T) bool) {
	lo, _ := t.Bounds()
	t.walk(t.root, Region{MinX: lo, MinY: lo, MinZ: lo, Side: t.Side()}, fn)
}

func (t *Octree[T]) walk(h NodeHandle[T], r Region, fn func(Region, T) bool) bool {
	node := t.nodes.Ref(h)
	if node.IsLeaf() {
		return fn(r, node.Data)
	}

	half := r.Side / 2
	for i := 0; i < arena.GroupSize; i++ {
		child := Region{MinX: r.MinX, MinY: r.MinY, MinZ: r.MinZ, Side: half}
		if i&1 != 0 {
			child.MinX += int32(half) //nolint:gosec // half <= 2^30
		}
		if i&2 != 0 {
			child.MinY += int32(half) //nolint:gosec // half <= 2^30
		}
		if i&4 != 0 {
			child.MinZ += int32(half) //nolint:gosec // half <= 2^30
		}
		if !t.walk(node.Children.Offset(i), child, fn) {
			return false
		}
	}
	return true
}
