package svo

import (
	"github.com/hupe1980/svo/arena"
	"github.com/hupe1980/svo/internal/mem"
)

// NodeHandle references a node in a tree's arena.
type NodeHandle[T any] = arena.Handle[Node[T]]

// Node is one cell of the octree.
//
// The field order is part of the exported byte layout returned by Bytes:
// parent handle, children handle, then the payload, each handle being a
// 32-bit index where 0 is null. A node is a leaf iff Children is null; an
// internal node's Children heads an 8-aligned group indexed by octant.
type Node[T any] struct {
	Parent   arena.Handle[Node[T]]
	Children arena.Handle[Node[T]]
	Data     T
}

// IsLeaf reports whether n has no children.
func (n Node[T]) IsLeaf() bool {
	return n.Children.IsNull()
}

// NodeSizeOf returns the in-memory size of Node[T] in bytes.
func NodeSizeOf[T any]() int {
	return mem.SizeOf[Node[T]]()
}

// octant selects the child containing (x, y, z) for a node centered at (cx, cy, cz).
// Bit 0 is set for the upper x half, bit 1 for y and bit 2 for z.
func octant(x, y, z, cx, cy, cz int32) int {
	i := 0
	if x >= cx {
		i |= 1
	}
	if y >= cy {
		i |= 2
	}
	if z >= cz {
		i |= 4
	}
	return i
}

// recenter moves one center coordinate into the half that holds v.
func recenter(v, c, half int32) int32 {
	if v >= c {
		return c + half
	}
	return c - half
}
