package svo

// Stats describes the shape and memory footprint of a tree.
type Stats struct {
	MaxDepth      uint32
	Capacity      int
	NodeSize      int
	LiveNodes     int
	Leaves        int
	InternalNodes int
	// MaxLeafDepth is the depth of the deepest leaf; the root is at depth 0.
	MaxLeafDepth int
	// ArenaBytes is Capacity * NodeSize.
	ArenaBytes int64
	// LiveBytes is LiveNodes * NodeSize.
	LiveBytes int64
}

// Utilization returns the fraction of node slots in use.
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.LiveNodes) / float64(s.Capacity)
}

// Stats walks the tree and returns its current statistics.
func (t *Octree[T]) Stats() Stats {
	s := Stats{
		MaxDepth:  t.maxDepth,
		Capacity:  t.Capacity(),
		NodeSize:  t.NodeSize(),
		LiveNodes: int(t.AllocationCount()),
	}
	s.ArenaBytes = int64(s.Capacity) * int64(s.NodeSize)
	s.LiveBytes = int64(s.LiveNodes) * int64(s.NodeSize)

	t.count(t.root, 0, &s)
	return s
}

func (t *Octree[T]) count(h NodeHandle[T], depth int, s *Stats) {
	node := t.nodes.Ref(h)
	if node.IsLeaf() {
		s.Leaves++
		s.MaxLeafDepth = max(s.MaxLeafDepth, depth)
		return
	}
	s.InternalNodes++
	for i := range 8 {
		t.count(node.Children.Offset(i), depth+1, s)
	}
}
