package svo

import (
	"time"

	"github.com/hupe1980/svo/arena"
	"github.com/hupe1980/svo/internal/mem"
	"github.com/hupe1980/svo/resource"
)

// MaxDepth is the deepest supported tree. A depth-31 tree covers
// [-2^30, 2^30) on each axis.
const MaxDepth = 31

// Octree is a sparse voxel octree over a cubic grid of side 2^maxDepth.
//
// Each cell holds a value of type T. Regions holding a single value are stored
// as one leaf: after every write, any node whose 8 children are leaves with
// equal values is collapsed back into a leaf.
//
// Values are compared with ==. For floating-point T a NaN never equals
// itself, so NaN cells are never merged and rewriting NaN over NaN subdivides
// down to the cell.
type Octree[T comparable] struct {
	nodes    *arena.Arena[Node[T]]
	root     NodeHandle[T]
	maxDepth uint32

	logger    *Logger
	metrics   MetricsCollector
	resources *resource.Controller
	reserved  int64
}

// New creates a tree with the given number of levels below the root.
// Every cell initially holds the zero value of T.
func New[T comparable](maxDepth uint32, optFns ...Option) (*Octree[T], error) {
	if maxDepth == 0 || maxDepth > MaxDepth {
		return nil, &ErrInvalidDepth{Depth: maxDepth}
	}

	o := applyOptions(optFns)
	if o.capacity < MinCapacity || uint64(o.capacity) > arena.MaxCapacity {
		return nil, &ErrInvalidCapacity{Capacity: o.capacity}
	}

	capacity := (o.capacity + arena.GroupSize - 1) &^ (arena.GroupSize - 1)
	reserved := int64(capacity) * int64(NodeSizeOf[T]())
	if err := o.resources.ReserveMemory(reserved); err != nil {
		return nil, err
	}

	nodes, err := arena.New[Node[T]](capacity, arena.WithLogger(o.logger.Logger))
	if err != nil {
		o.resources.ReleaseMemory(reserved)
		return nil, &ErrInvalidCapacity{Capacity: o.capacity, cause: err}
	}

	return &Octree[T]{
		nodes:     nodes,
		root:      nodes.Store(Node[T]{}),
		maxDepth:  maxDepth,
		logger:    o.logger.WithDepth(maxDepth).WithCapacity(capacity),
		metrics:   o.metrics,
		resources: o.resources,
		reserved:  reserved,
	}, nil
}

// Restore wraps an existing node arena as a tree rooted at root.
// The structure is checked with Validate before the tree is returned.
func Restore[T comparable](maxDepth uint32, nodes *arena.Arena[Node[T]], root NodeHandle[T], optFns ...Option) (*Octree[T], error) {
	if maxDepth == 0 || maxDepth > MaxDepth {
		return nil, &ErrInvalidDepth{Depth: maxDepth}
	}
	if nodes == nil {
		return nil, corruptf("nil node arena")
	}

	o := applyOptions(optFns)

	t := &Octree[T]{
		nodes:     nodes,
		root:      root,
		maxDepth:  maxDepth,
		logger:    o.logger.WithDepth(maxDepth).WithCapacity(nodes.Capacity()),
		metrics:   o.metrics,
		resources: o.resources,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	reserved := int64(nodes.Capacity()) * int64(NodeSizeOf[T]())
	if err := o.resources.ReserveMemory(reserved); err != nil {
		return nil, err
	}
	t.reserved = reserved

	return t, nil
}

// Set stores value in the cell (x, y, z).
//
// Coordinates are not bounds checked; use Contains first when they come from
// untrusted input. Set panics with an error wrapping ErrAllocatorExhausted if
// the arena cannot hold the required subdivision.
//
// A write of a value equal (==) to the cell's current value is a no-op. NaN
// is not equal to itself, see Octree.
func (t *Octree[T]) Set(x, y, z int32, value T) {
	if err := t.TrySet(x, y, z, value); err != nil {
		panic(err)
	}
}

// TrySet is like Set but returns ErrAllocatorExhausted instead of panicking.
// On failure the cell keeps its previous value and the tree is left compressed.
func (t *Octree[T]) TrySet(x, y, z int32, value T) error {
	start := time.Now()
	err := t.set(x, y, z, value)
	t.metrics.RecordSet(time.Since(start), err)
	if err != nil {
		t.logger.LogExhausted(x, y, z, err)
	}
	return err
}

func (t *Octree[T]) set(x, y, z int32, value T) error {
	half := int32(1) << (t.maxDepth - 1)
	var cx, cy, cz int32
	depth := 0
	cur := t.root

	for half > 0 {
		node := t.nodes.Ref(cur)
		if node.IsLeaf() {
			if node.Data == value {
				return nil
			}
			if err := t.subdivide(cur, node, depth); err != nil {
				t.compress(node.Parent, depth-1)
				return err
			}
		}

		cur = node.Children.Offset(octant(x, y, z, cx, cy, cz))
		half >>= 1
		cx = recenter(x, cx, half)
		cy = recenter(y, cy, half)
		cz = recenter(z, cz, half)
		depth++
	}

	leaf := t.nodes.Ref(cur)
	leaf.Data = value
	t.compress(leaf.Parent, depth-1)

	return nil
}

// subdivide turns the leaf h into an internal node whose children all inherit its value.
func (t *Octree[T]) subdivide(h NodeHandle[T], node *Node[T], depth int) error {
	var group [arena.GroupSize]Node[T]
	for i := range group {
		group[i] = Node[T]{Parent: h, Data: node.Data}
	}

	children, err := t.nodes.TryStore8Aligned(group)
	if err != nil {
		return err
	}
	node.Children = children

	t.logger.LogSubdivide(depth, h.Index(), children.Index())
	t.metrics.RecordSubdivide(depth)
	return nil
}

// compress walks from h towards the root, collapsing every node whose children
// are uniform leaves. It stops at the first node that cannot be collapsed.
func (t *Octree[T]) compress(h NodeHandle[T], depth int) {
	for !h.IsNull() {
		node := t.nodes.Ref(h)
		value, ok := t.uniform(node.Children)
		if !ok {
			return
		}

		children := node.Children
		t.nodes.Remove8Aligned(children)
		node.Children = NodeHandle[T]{}
		node.Data = value

		t.logger.LogCompress(depth, h.Index(), children.Index())
		t.metrics.RecordCompress(depth)

		h = node.Parent
		depth--
	}
}

// uniform reports whether the group headed by children consists of 8 leaves
// holding the same value, and returns that value.
func (t *Octree[T]) uniform(children NodeHandle[T]) (T, bool) {
	var zero T
	if children.IsNull() {
		return zero, false
	}

	first := t.nodes.Ref(children)
	if !first.IsLeaf() {
		return zero, false
	}
	for i := 1; i < arena.GroupSize; i++ {
		c := t.nodes.Ref(children.Offset(i))
		if !c.IsLeaf() || c.Data != first.Data {
			return zero, false
		}
	}
	return first.Data, true
}

// Get returns the value of the cell (x, y, z).
func (t *Octree[T]) Get(x, y, z int32) T {
	start := time.Now()
	value := t.get(x, y, z)
	t.metrics.RecordGet(time.Since(start))
	return value
}

func (t *Octree[T]) get(x, y, z int32) T {
	half := int32(1) << (t.maxDepth - 1)
	var cx, cy, cz int32
	cur := t.root

	for half > 0 {
		node := t.nodes.Ref(cur)
		if node.IsLeaf() {
			return node.Data
		}
		cur = node.Children.Offset(octant(x, y, z, cx, cy, cz))
		half >>= 1
		cx = recenter(x, cx, half)
		cy = recenter(y, cy, half)
		cz = recenter(z, cz, half)
	}

	return t.nodes.Ref(cur).Data
}

// Bytes returns the node arena as raw bytes without copying.
//
// The view covers every slot, live or not, and aliases the tree: it is
// invalidated by Close and observes later writes.
func (t *Octree[T]) Bytes() []byte {
	return mem.AsBytes(t.nodes.Slice())
}

// AllocationCount returns the number of live nodes.
func (t *Octree[T]) AllocationCount() uint32 {
	return t.nodes.AllocationCount()
}

// MaxDepth returns the number of levels below the root.
func (t *Octree[T]) MaxDepth() uint32 {
	return t.maxDepth
}

// Side returns the edge length of the domain in cells.
func (t *Octree[T]) Side() uint32 {
	return uint32(1) << t.maxDepth
}

// Bounds returns the half-open coordinate range [lo, hi) covered on every axis.
func (t *Octree[T]) Bounds() (lo, hi int32) {
	half := int32(1) << (t.maxDepth - 1)
	return -half, half
}

// Contains reports whether (x, y, z) lies inside the domain.
func (t *Octree[T]) Contains(x, y, z int32) bool {
	lo, hi := t.Bounds()
	return x >= lo && x < hi && y >= lo && y < hi && z >= lo && z < hi
}

// Root returns the handle of the root node.
func (t *Octree[T]) Root() NodeHandle[T] {
	return t.root
}

// Node returns a copy of the node at h. It panics if h is null.
func (t *Octree[T]) Node(h NodeHandle[T]) Node[T] {
	return t.nodes.Get(h)
}

// Arena returns the backing node arena.
func (t *Octree[T]) Arena() *arena.Arena[Node[T]] {
	return t.nodes
}

// NodeSize returns the size of one node in the exported byte layout.
func (t *Octree[T]) NodeSize() int {
	return NodeSizeOf[T]()
}

// Capacity returns the number of node slots in the arena.
func (t *Octree[T]) Capacity() int {
	return t.nodes.Capacity()
}

// Close returns the arena's memory reservation to the resource controller.
// The tree must not be used afterwards. Close is idempotent.
func (t *Octree[T]) Close() error {
	if t.nodes == nil {
		return nil
	}
	t.resources.ReleaseMemory(t.reserved)
	t.reserved = 0
	t.nodes = nil
	return nil
}
