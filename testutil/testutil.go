package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// Point is a cell coordinate.
type Point struct {
	X, Y, Z int32
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

func (r *RNG) coordLocked(lo, hi int32) Point {
	span := int64(hi) - int64(lo)
	pick := func() int32 {
		return int32(int64(lo) + r.rand.Int63n(span)) //nolint:gosec // result lies in [lo, hi)
	}
	return Point{X: pick(), Y: pick(), Z: pick()}
}

// Coord returns a random point with every axis in [lo, hi).
func (r *RNG) Coord(lo, hi int32) Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coordLocked(lo, hi)
}

// Coords returns num random points with every axis in [lo, hi).
func (r *RNG) Coords(num int, lo, hi int32) []Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([]Point, num)
	for i := range points {
		points[i] = r.coordLocked(lo, hi)
	}
	return points
}

// ClusteredCoords returns num points scattered around a few random centers.
// Each axis deviates from its center by less than spread and is clamped to [lo, hi).
func (r *RNG) ClusteredCoords(num, clusters int, spread, lo, hi int32) []Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([]Point, clusters)
	for i := range centers {
		centers[i] = r.coordLocked(lo, hi)
	}

	clamp := func(v int64) int32 {
		return int32(min(max(v, int64(lo)), int64(hi)-1)) //nolint:gosec // clamped to [lo, hi)
	}
	jitter := func(c int32) int32 {
		return clamp(int64(c) + r.rand.Int63n(2*int64(spread)-1) - int64(spread) + 1)
	}

	points := make([]Point, num)
	for i := range points {
		c := centers[r.rand.Intn(clusters)]
		points[i] = Point{X: jitter(c.X), Y: jitter(c.Y), Z: jitter(c.Z)}
	}
	return points
}

// Zipf returns a random integer in [0, n) following a Zipf distribution with parameter s.
// Useful for skewed voxel palettes where a few materials dominate.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked samples by inverse transform over the normalized weights 1/k^s.
// Caller must hold r.mu.
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Grid is a dense-semantics reference model of a voxel volume.
// Unset points read as the zero value.
type Grid[T comparable] struct {
	cells map[Point]T
}

// NewGrid creates an empty grid.
func NewGrid[T comparable]() *Grid[T] {
	return &Grid[T]{cells: make(map[Point]T)}
}

// Set stores value at p.
func (g *Grid[T]) Set(p Point, value T) {
	var zero T
	if value == zero {
		delete(g.cells, p)
		return
	}
	g.cells[p] = value
}

// Get returns the value at p.
func (g *Grid[T]) Get(p Point) T {
	return g.cells[p]
}

// Len returns the number of points holding a non-zero value.
func (g *Grid[T]) Len() int {
	return len(g.cells)
}

// Each calls fn for every point holding a non-zero value, in no particular order.
func (g *Grid[T]) Each(fn func(Point, T)) {
	for p, v := range g.cells {
		fn(p, v)
	}
}
