package svo

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/svo/arena"
)

// Validate checks the structural invariants of the tree:
//
//   - the root is live and has no parent
//   - every internal node heads an 8-aligned group of live children
//   - every child points back at its parent
//   - no node below maxDepth has children
//   - no internal node has 8 leaf children holding one value
//   - the set of reachable nodes equals the set of allocated slots
//
// Violations are reported as errors wrapping ErrCorrupt.
func (t *Octree[T]) Validate() error {
	if t.root.IsNull() || !t.nodes.Live(t.root) {
		return corruptf("root %s is not live", t.root)
	}
	if parent := t.nodes.Ref(t.root).Parent; !parent.IsNull() {
		return corruptf("root has parent %s", parent)
	}

	reachable := roaring.New()
	if err := t.validate(t.root, 0, reachable); err != nil {
		return err
	}

	allocated := t.nodes.Occupancy()
	if !reachable.Equals(allocated) {
		leaked := roaring.AndNot(allocated, reachable)
		return corruptf("%d reachable nodes, %d allocated (%d unreachable)",
			reachable.GetCardinality(), allocated.GetCardinality(), leaked.GetCardinality())
	}
	return nil
}

func (t *Octree[T]) validate(h NodeHandle[T], depth uint32, reachable *roaring.Bitmap) error {
	reachable.Add(uint32(h.Slot())) //nolint:gosec // live handles are never null

	node := t.nodes.Ref(h)
	if node.IsLeaf() {
		return nil
	}

	if depth >= t.maxDepth {
		return corruptf("node %s at depth %d has children", h, depth)
	}
	if node.Children.Slot()%arena.GroupSize != 0 {
		return corruptf("children of %s at %s are not group aligned", h, node.Children)
	}
	if node.Children.Slot()+arena.GroupSize > t.nodes.Capacity() {
		return corruptf("children of %s at %s exceed capacity", h, node.Children)
	}
	if reachable.Contains(uint32(node.Children.Slot())) { //nolint:gosec // checked above
		return corruptf("children of %s at %s are shared", h, node.Children)
	}

	for i := 0; i < arena.GroupSize; i++ {
		c := node.Children.Offset(i)
		if !t.nodes.Live(c) {
			return corruptf("child %d of %s at %s is not live", i, h, c)
		}
		if parent := t.nodes.Ref(c).Parent; parent != h {
			return corruptf("child %s of %s points at parent %s", c, h, parent)
		}
	}

	if _, ok := t.uniform(node.Children); ok {
		return corruptf("children of %s are uniform leaves", h)
	}

	for i := 0; i < arena.GroupSize; i++ {
		if err := t.validate(node.Children.Offset(i), depth+1, reachable); err != nil {
			return err
		}
	}
	return nil
}
