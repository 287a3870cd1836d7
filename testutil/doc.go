// Package testutil provides testing utilities for svo.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random coordinate and value generators and a dense
// reference model to check octree contents against.
//
// # Random Coordinates
//
//	rng := testutil.NewRNG(seed)
//	p := rng.Coord(-128, 128)              // one point in [-128, 128)^3
//	ps := rng.Coords(1000, -128, 128)      // many points
//	cs := rng.ClusteredCoords(1000, 4, 8, -128, 128)
//
// # Reference Model
//
//	grid := testutil.NewGrid[uint32]()
//	grid.Set(p, 7)
//	grid.Get(p) // 7, every other point reads as 0
package testutil
