package svo_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/svo"
)

// Example demonstrates writing and reading single cells.
func Example() {
	tree, err := svo.New[uint32](8)
	if err != nil {
		log.Fatal(err)
	}
	defer tree.Close()

	tree.Set(10, 20, 30, 56)
	tree.Set(0, 0, 0, 12)

	fmt.Println(tree.Get(10, 20, 30), tree.Get(0, 0, 0), tree.Get(1, 1, 1))
	// Output: 56 12 0
}

// Example_compression shows uniform regions collapsing into a single leaf.
func Example_compression() {
	tree, err := svo.New[uint8](1)
	if err != nil {
		log.Fatal(err)
	}
	defer tree.Close()

	tree.Set(0, 0, 0, 1)
	fmt.Println("after one write:", tree.AllocationCount())

	for _, x := range []int32{-1, 0} {
		for _, y := range []int32{-1, 0} {
			for _, z := range []int32{-1, 0} {
				tree.Set(x, y, z, 1)
			}
		}
	}
	fmt.Println("after uniform fill:", tree.AllocationCount())
	// Output:
	// after one write: 9
	// after uniform fill: 1
}

// Example_walk lists the leaves of a small tree.
func Example_walk() {
	tree, err := svo.New[uint8](1)
	if err != nil {
		log.Fatal(err)
	}
	defer tree.Close()

	tree.Set(0, 0, 0, 7)

	tree.Walk(func(r svo.Region, v uint8) bool {
		if v != 0 {
			fmt.Printf("(%d,%d,%d) side %d = %d\n", r.MinX, r.MinY, r.MinZ, r.Side, v)
		}
		return true
	})
	// Output: (0,0,0) side 1 = 7
}

// Example_metrics shows the built-in metrics collector.
func Example_metrics() {
	metrics := &svo.BasicMetricsCollector{}

	tree, err := svo.New[uint16](4, svo.WithMetricsCollector(metrics))
	if err != nil {
		log.Fatal(err)
	}
	defer tree.Close()

	tree.Set(1, 2, 3, 42)
	tree.Set(1, 2, 3, 0)

	s := metrics.Stats()
	fmt.Println(s.SetCount, s.Subdivisions, s.Compressions)
	// Output: 2 4 4
}
