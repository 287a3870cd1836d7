package arena

import "fmt"

// Handle references a slot of an Arena[T]. The zero value is the null handle.
//
// Handles carry no ownership: using a handle after its slot was removed is not
// detected beyond the null check.
type Handle[T any] struct {
	index uint32
}

// HandleFromIndex builds a handle from its raw index (slot + 1).
// It is intended for decoding exported layouts.
func HandleFromIndex[T any](index uint32) Handle[T] {
	return Handle[T]{index: index}
}

func handleForSlot[T any](slot int) Handle[T] {
	return Handle[T]{index: uint32(slot) + 1} //nolint:gosec // slot < capacity <= MaxCapacity
}

// IsNull reports whether h is the null handle.
func (h Handle[T]) IsNull() bool {
	return h.index == 0
}

// Index returns the raw handle index as stored in exported layouts.
func (h Handle[T]) Index() uint32 {
	return h.index
}

// Slot returns the backing slot index. It is -1 for the null handle.
func (h Handle[T]) Slot() int {
	return int(h.index) - 1
}

// Offset returns the handle of the i-th member of the 8-aligned group headed by h.
func (h Handle[T]) Offset(i int) Handle[T] {
	if h.IsNull() {
		return h
	}
	return Handle[T]{index: h.index + uint32(i)} //nolint:gosec // i is an octant index
}

func (h Handle[T]) String() string {
	if h.IsNull() {
		return "Handle(null)"
	}
	return fmt.Sprintf("Handle(%d)", h.index)
}
