package svo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"testing"
	"unsafe"

	"github.com/hupe1980/svo/arena"
	"github.com/hupe1980/svo/resource"
	"github.com/hupe1980/svo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree[T comparable](t testing.TB, maxDepth uint32, opts ...Option) *Octree[T] {
	t.Helper()

	tree, err := New[T](maxDepth, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tree.Close() })

	return tree
}

func assertPanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.ErrorIs(t, err, target)
	}()
	fn()
}

func TestNodeLayout(t *testing.T) {
	var n Node[uint32]

	assert.Equal(t, uintptr(12), unsafe.Sizeof(n))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(n.Parent))
	assert.Equal(t, uintptr(4), unsafe.Offsetof(n.Children))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(n.Data))
	assert.Equal(t, 12, NodeSizeOf[uint32]())
}

func TestNew(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		tree := newTree[uint32](t, 8)

		assert.Equal(t, uint32(1), tree.AllocationCount())
		assert.Equal(t, uint32(8), tree.MaxDepth())
		assert.Equal(t, uint32(256), tree.Side())
		assert.Equal(t, DefaultCapacity, tree.Capacity())
		assert.True(t, tree.Node(tree.Root()).IsLeaf())
		assert.Equal(t, uint32(0), tree.Get(3, -7, 100))
		assert.NoError(t, tree.Validate())
	})

	t.Run("InvalidDepth", func(t *testing.T) {
		for _, depth := range []uint32{0, MaxDepth + 1} {
			_, err := New[uint32](depth)

			var depthErr *ErrInvalidDepth
			require.ErrorAs(t, err, &depthErr)
			assert.Equal(t, depth, depthErr.Depth)
		}
	})

	t.Run("InvalidCapacity", func(t *testing.T) {
		_, err := New[uint32](4, WithCapacity(MinCapacity-1))

		var capErr *ErrInvalidCapacity
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, MinCapacity-1, capErr.Capacity)
	})

	t.Run("CapacityRoundsUp", func(t *testing.T) {
		tree := newTree[uint32](t, 4, WithCapacity(17))
		assert.Equal(t, 24, tree.Capacity())
	})
}

func TestSetGet(t *testing.T) {
	tree := newTree[uint32](t, 8)

	tree.Set(10, 20, 30, 56)
	tree.Set(0, 0, 0, 12)

	assert.Equal(t, uint32(56), tree.Get(10, 20, 30))
	assert.Equal(t, uint32(12), tree.Get(0, 0, 0))
	assert.Equal(t, uint32(0), tree.Get(10, 20, 31))
	assert.Equal(t, uint32(0), tree.Get(-1, -1, -1))
	assert.NoError(t, tree.Validate())
}

func TestNegativeCoordinates(t *testing.T) {
	tree := newTree[int16](t, 6)
	lo, hi := tree.Bounds()

	corners := []testutil.Point{
		{X: lo, Y: lo, Z: lo},
		{X: hi - 1, Y: hi - 1, Z: hi - 1},
		{X: lo, Y: hi - 1, Z: 0},
		{X: -1, Y: 0, Z: -1},
	}
	for i, p := range corners {
		tree.Set(p.X, p.Y, p.Z, int16(i+1))
	}
	for i, p := range corners {
		assert.Equal(t, int16(i+1), tree.Get(p.X, p.Y, p.Z), "corner %v", p)
	}
	assert.NoError(t, tree.Validate())
}

func TestAllocationCount(t *testing.T) {
	t.Run("SingleLevel", func(t *testing.T) {
		tree := newTree[uint32](t, 1)

		tree.Set(0, 0, 0, 1)
		assert.Equal(t, uint32(9), tree.AllocationCount())

		for _, x := range []int32{-1, 0} {
			for _, y := range []int32{-1, 0} {
				for _, z := range []int32{-1, 0} {
					tree.Set(x, y, z, 1)
				}
			}
		}
		assert.Equal(t, uint32(1), tree.AllocationCount())
		assert.True(t, tree.Node(tree.Root()).IsLeaf())
		assert.Equal(t, uint32(1), tree.Get(-1, 0, -1))
	})

	t.Run("ThreeLevels", func(t *testing.T) {
		tree := newTree[uint32](t, 3)

		tree.Set(0, 0, 0, 1)
		assert.Equal(t, uint32(25), tree.AllocationCount())

		for x := range int32(2) {
			for y := range int32(2) {
				for z := range int32(2) {
					tree.Set(x, y, z, 1)
				}
			}
		}
		assert.Equal(t, uint32(17), tree.AllocationCount())
		assert.NoError(t, tree.Validate())
	})

	t.Run("RevertToZero", func(t *testing.T) {
		tree := newTree[uint32](t, 5)

		tree.Set(3, -4, 5, 9)
		tree.Set(3, -4, 5, 0)

		assert.Equal(t, uint32(1), tree.AllocationCount())
		assert.NoError(t, tree.Validate())
	})

	t.Run("RedundantWrite", func(t *testing.T) {
		tree := newTree[uint32](t, 5)

		tree.Set(1, 1, 1, 0)
		assert.Equal(t, uint32(1), tree.AllocationCount())

		tree.Set(1, 1, 1, 4)
		before := tree.AllocationCount()
		tree.Set(1, 1, 1, 4)
		assert.Equal(t, before, tree.AllocationCount())
	})
}

func TestUniformFill(t *testing.T) {
	tree := newTree[uint8](t, 3)
	lo, hi := tree.Bounds()

	for x := lo; x < hi; x++ {
		for y := lo; y < hi; y++ {
			for z := lo; z < hi; z++ {
				tree.Set(x, y, z, 5)
			}
		}
	}

	assert.Equal(t, uint32(1), tree.AllocationCount())
	root := tree.Node(tree.Root())
	assert.True(t, root.IsLeaf())
	assert.Equal(t, uint8(5), root.Data)
	assert.Equal(t, uint8(5), tree.Get(lo, hi-1, 0))
}

func TestMatchesReferenceModel(t *testing.T) {
	const depth = 5

	rng := testutil.NewRNG(4711)
	grid := testutil.NewGrid[uint16]()
	tree := newTree[uint16](t, depth)
	lo, hi := tree.Bounds()

	for _, p := range rng.Coords(4000, lo, hi) {
		v := uint16(rng.Zipf(3, 1.5))
		tree.Set(p.X, p.Y, p.Z, v)
		grid.Set(p, v)
	}
	for _, p := range rng.ClusteredCoords(4000, 4, 3, lo, hi) {
		tree.Set(p.X, p.Y, p.Z, 7)
		grid.Set(p, 7)
	}

	require.NoError(t, tree.Validate())

	for x := lo; x < hi; x++ {
		for y := lo; y < hi; y++ {
			for z := lo; z < hi; z++ {
				p := testutil.Point{X: x, Y: y, Z: z}
				require.Equal(t, grid.Get(p), tree.Get(x, y, z), "cell %v", p)
			}
		}
	}
}

func TestInvariantsAfterEveryWrite(t *testing.T) {
	const depth = 4

	rng := testutil.NewRNG(2024)
	grid := testutil.NewGrid[uint8]()
	tree := newTree[uint8](t, depth)
	lo, hi := tree.Bounds()

	for i := 0; i < 5000; i++ {
		p := rng.Coord(lo, hi)
		// Few distinct values so octets become uniform and collapse often.
		v := uint8(rng.Intn(2)) //nolint:gosec // tiny
		tree.Set(p.X, p.Y, p.Z, v)
		grid.Set(p, v)

		require.NoError(t, tree.Validate(), "write %d at %v", i, p)
		require.Equal(t, v, tree.Get(p.X, p.Y, p.Z), "write %d at %v", i, p)
	}

	grid.Each(func(p testutil.Point, v uint8) {
		assert.Equal(t, v, tree.Get(p.X, p.Y, p.Z), "cell %v", p)
	})
}

func TestNaNNeverMerges(t *testing.T) {
	tree := newTree[float32](t, 2)
	nan := float32(math.NaN())
	lo, hi := tree.Bounds()

	for x := lo; x < hi; x++ {
		for y := lo; y < hi; y++ {
			for z := lo; z < hi; z++ {
				tree.Set(x, y, z, nan)
			}
		}
	}

	require.NoError(t, tree.Validate())
	// Full tree: root, 8 children and 64 cells.
	assert.Equal(t, uint32(1+8+64), tree.AllocationCount())
	assert.True(t, math.IsNaN(float64(tree.Get(lo, 0, hi-1))))

	// Overwriting NaN with a number merges as usual.
	for x := lo; x < hi; x++ {
		for y := lo; y < hi; y++ {
			for z := lo; z < hi; z++ {
				tree.Set(x, y, z, 1.5)
			}
		}
	}
	assert.Equal(t, uint32(1), tree.AllocationCount())
}

func TestBytes(t *testing.T) {
	tree := newTree[uint32](t, 3, WithCapacity(64))

	tree.Set(0, 0, 0, 77)

	raw := tree.Bytes()
	require.Len(t, raw, tree.Capacity()*tree.NodeSize())

	root := raw[:tree.NodeSize()]
	assert.Equal(t, uint32(0), binary.NativeEndian.Uint32(root[0:4]))
	assert.Equal(t, tree.Node(tree.Root()).Children.Index(), binary.NativeEndian.Uint32(root[4:8]))
	assert.Equal(t, uint32(9), binary.NativeEndian.Uint32(root[4:8]))

	// The view aliases the arena: (-1, -1, -1) lands in slot 47.
	tree.Set(-1, -1, -1, 3)
	leaf := raw[47*12 : 48*12]
	assert.Equal(t, uint32(3), binary.NativeEndian.Uint32(leaf[8:12]))
}

func TestExhaustion(t *testing.T) {
	t.Run("TrySet", func(t *testing.T) {
		tree := newTree[uint32](t, 3, WithCapacity(MinCapacity))

		err := tree.TrySet(1, 2, 3, 4)
		require.ErrorIs(t, err, ErrAllocatorExhausted)

		assert.Equal(t, uint32(1), tree.AllocationCount())
		assert.Equal(t, uint32(0), tree.Get(1, 2, 3))
		assert.NoError(t, tree.Validate())
	})

	t.Run("Set", func(t *testing.T) {
		tree := newTree[uint32](t, 3, WithCapacity(MinCapacity))

		assertPanicsWith(t, ErrAllocatorExhausted, func() {
			tree.Set(1, 2, 3, 4)
		})
	})

	t.Run("PartialPathKeepsSiblings", func(t *testing.T) {
		tree := newTree[uint32](t, 2, WithCapacity(24))

		tree.Set(0, 0, 0, 1)
		require.Equal(t, uint32(17), tree.AllocationCount())

		err := tree.TrySet(-1, -1, -1, 2)
		require.ErrorIs(t, err, ErrAllocatorExhausted)

		assert.Equal(t, uint32(1), tree.Get(0, 0, 0))
		assert.Equal(t, uint32(0), tree.Get(-1, -1, -1))
		assert.Equal(t, uint32(17), tree.AllocationCount())
		assert.NoError(t, tree.Validate())
	})
}

func TestContains(t *testing.T) {
	tree := newTree[uint32](t, 4)

	lo, hi := tree.Bounds()
	assert.Equal(t, int32(-8), lo)
	assert.Equal(t, int32(8), hi)

	assert.True(t, tree.Contains(-8, 0, 7))
	assert.False(t, tree.Contains(8, 0, 0))
	assert.False(t, tree.Contains(0, -9, 0))
}

func TestMaxDepthTree(t *testing.T) {
	tree := newTree[uint64](t, MaxDepth)
	lo, hi := tree.Bounds()

	tree.Set(lo, lo, lo, 1)
	tree.Set(hi-1, hi-1, hi-1, 2)

	assert.Equal(t, uint64(1), tree.Get(lo, lo, lo))
	assert.Equal(t, uint64(2), tree.Get(hi-1, hi-1, hi-1))
	assert.Equal(t, uint64(0), tree.Get(0, 0, 0))
	assert.Equal(t, uint32(1+2*8*MaxDepth-8), tree.AllocationCount())
	assert.NoError(t, tree.Validate())
}

func TestStats(t *testing.T) {
	tree := newTree[uint32](t, 3, WithCapacity(128))

	tree.Set(0, 0, 0, 1)
	s := tree.Stats()

	assert.Equal(t, uint32(3), s.MaxDepth)
	assert.Equal(t, 128, s.Capacity)
	assert.Equal(t, 12, s.NodeSize)
	assert.Equal(t, 25, s.LiveNodes)
	assert.Equal(t, 22, s.Leaves)
	assert.Equal(t, 3, s.InternalNodes)
	assert.Equal(t, 3, s.MaxLeafDepth)
	assert.Equal(t, int64(128*12), s.ArenaBytes)
	assert.Equal(t, int64(25*12), s.LiveBytes)
	assert.InDelta(t, 25.0/128.0, s.Utilization(), 1e-9)
}

func TestMetrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	tree := newTree[uint32](t, 3, WithMetricsCollector(metrics), WithCapacity(MinCapacity))

	tree.Set(-4, -4, -4, 0)
	_ = tree.Get(0, 0, 0)
	require.Error(t, tree.TrySet(0, 0, 0, 1))

	s := metrics.Stats()
	assert.Equal(t, int64(2), s.SetCount)
	assert.Equal(t, int64(1), s.SetErrors)
	assert.Equal(t, int64(1), s.GetCount)
	assert.Equal(t, int64(1), s.Subdivisions)
	assert.Equal(t, int64(1), s.Compressions)
	assert.Equal(t, 0, s.DeepestSplit)
}

func TestResourceController(t *testing.T) {
	t.Run("Reserve", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

		tree, err := New[uint32](4, WithCapacity(1024), WithResourceController(rc))
		require.NoError(t, err)
		assert.Equal(t, int64(1024*12), rc.MemoryUsage())

		require.NoError(t, tree.Close())
		assert.Equal(t, int64(0), rc.MemoryUsage())

		require.NoError(t, tree.Close())
		assert.Equal(t, int64(0), rc.MemoryUsage())
	})

	t.Run("LimitExceeded", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})

		_, err := New[uint32](4, WithCapacity(1024), WithResourceController(rc))
		require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Equal(t, int64(0), rc.MemoryUsage())
	})
}

func TestRestore(t *testing.T) {
	src := newTree[uint32](t, 4)
	src.Set(1, 2, 3, 4)
	src.Set(-5, 6, -7, 8)

	tree, err := Restore(src.MaxDepth(), src.Arena(), src.Root())
	require.NoError(t, err)

	assert.Equal(t, uint32(4), tree.Get(1, 2, 3))
	assert.Equal(t, uint32(8), tree.Get(-5, 6, -7))

	_, err = Restore(0, src.Arena(), src.Root())
	var depthErr *ErrInvalidDepth
	assert.ErrorAs(t, err, &depthErr)

	_, err = Restore[uint32](4, nil, src.Root())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, NoopLogger().WithDepth(3).WithCoord(1, 2, 3))

	t.Run("Noop", func(t *testing.T) {
		tree := newTree[uint32](t, 2, WithLogger(nil), WithCapacity(MinCapacity))
		err := tree.TrySet(0, 0, 0, 1)
		assert.True(t, errors.Is(err, ErrAllocatorExhausted))
	})

	t.Run("TreeFields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

		tree := newTree[uint32](t, 2, WithLogger(logger), WithCapacity(MinCapacity))
		require.Error(t, tree.TrySet(0, 0, 0, 1))

		out := buf.String()
		assert.Contains(t, out, `"max_depth":2`)
		assert.Contains(t, out, `"capacity":16`)
	})
}

func TestNilMetricsCollector(t *testing.T) {
	tree := newTree[uint32](t, 2, WithMetricsCollector(nil))
	assert.Equal(t, NoopMetricsCollector{}, tree.metrics)

	tree.Set(1, 1, 1, 4)
	assert.Equal(t, uint32(4), tree.Get(1, 1, 1))
}

func TestNewCapacityBeyondArenaLimit(t *testing.T) {
	if uint64(math.MaxInt) <= arena.MaxCapacity {
		t.Skip("int cannot exceed arena.MaxCapacity on this platform")
	}
	limit := uint64(arena.MaxCapacity) + arena.GroupSize
	_, err := New[uint32](4, WithCapacity(int(limit))) //nolint:gosec // checked above

	var capErr *ErrInvalidCapacity
	assert.ErrorAs(t, err, &capErr)
}

func BenchmarkSet(b *testing.B) {
	tree := newTree[uint32](b, 10, WithCapacity(1<<20))
	lo, hi := tree.Bounds()
	points := testutil.NewRNG(1).Coords(4096, lo, hi)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := points[i%len(points)]
		tree.Set(p.X, p.Y, p.Z, uint32(i%4))
	}
}

func BenchmarkGet(b *testing.B) {
	tree := newTree[uint32](b, 10, WithCapacity(1<<20))
	lo, hi := tree.Bounds()
	points := testutil.NewRNG(1).Coords(4096, lo, hi)
	for i, p := range points {
		tree.Set(p.X, p.Y, p.Z, uint32(i%4)+1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := points[i%len(points)]
		_ = tree.Get(p.X, p.Y, p.Z)
	}
}
