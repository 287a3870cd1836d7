// Package svo provides a sparse voxel octree backed by a fixed-capacity node arena.
//
// A tree of depth d covers a cube of 2^d cells per axis, centered on the origin:
// every coordinate lies in [-2^(d-1), 2^(d-1)). Each cell holds a value of the
// element type. Regions where every cell holds the same value are stored as a
// single leaf, so memory use tracks the amount of detail rather than the volume.
//
// # Quick Start
//
//	tree, _ := svo.New[uint32](8)
//	defer tree.Close()
//
//	tree.Set(10, 20, 30, 56)
//	tree.Get(10, 20, 30) // 56
//	tree.Get(0, 0, 0)    // 0
//
// # Compression
//
// Set subdivides leaves on the way down and, after writing, collapses every
// ancestor whose 8 children became leaves with equal values. The tree is
// therefore always maximally compressed; Validate checks this together with the
// remaining structural invariants.
//
// # Memory Layout
//
// Nodes live in an arena.Arena whose capacity is fixed at construction
// (WithCapacity). The 8 children of a node always occupy one 8-aligned group of
// slots. Bytes exposes the whole arena as raw bytes without copying, which is
// the format persisted by the snapshot package.
//
// Running out of node slots during Set is fatal and panics with an error
// wrapping ErrAllocatorExhausted. TrySet returns the error instead and leaves
// every stored value unchanged.
//
// # Concurrency
//
// An Octree is owned by one goroutine. Share it only behind external
// synchronization.
package svo
