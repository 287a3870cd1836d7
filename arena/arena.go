package arena

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/svo/internal/bitset"
	"github.com/hupe1980/svo/internal/conv"
)

const (
	// GroupSize is the number of slots in an 8-aligned group.
	GroupSize = bitset.GroupSize

	// MaxCapacity is the largest number of slots addressable by a 32-bit handle
	// with index 0 reserved, rounded down to a whole group.
	MaxCapacity = (math.MaxUint32 - 1) &^ (GroupSize - 1)
)

// Option configures an Arena.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for diagnostics such as writes through null handles.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Arena is a fixed-capacity store of T values addressed through handles.
type Arena[T any] struct {
	slots  []T
	free   *bitset.FreeList
	logger *slog.Logger
}

// New creates an arena with room for capacity slots, rounded up to a multiple of 8.
func New[T any](capacity int, opts ...Option) (*Arena[T], error) {
	if capacity <= 0 || uint64(capacity) > MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	capacity = (capacity + GroupSize - 1) &^ (GroupSize - 1)

	o := applyOptions(opts)

	return &Arena[T]{
		slots:  make([]T, capacity),
		free:   bitset.New(capacity),
		logger: o.logger,
	}, nil
}

// Restore rebuilds an arena from a slot array and the set of live slot indices.
//
// The slot count must be a multiple of 8, every live index must be in range and
// every dead slot must hold the zero value. The arena takes ownership of slots.
func Restore[T comparable](slots []T, occupancy *roaring.Bitmap, opts ...Option) (*Arena[T], error) {
	if len(slots) == 0 || uint64(len(slots)) > MaxCapacity || len(slots)%GroupSize != 0 {
		return nil, fmt.Errorf("%w: %d slots", ErrInvalidCapacity, len(slots))
	}

	if occupancy == nil {
		occupancy = roaring.New()
	}

	o := applyOptions(opts)
	free := bitset.New(len(slots))

	it := occupancy.Iterator()
	for it.HasNext() {
		slot, err := conv.Int(it.Next())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
		if slot >= len(slots) {
			return nil, fmt.Errorf("%w: live slot %d beyond capacity %d", ErrCorruptState, slot, len(slots))
		}
		free.Set(slot)
	}

	var zero T
	for i := range slots {
		if !free.Test(i) && slots[i] != zero {
			return nil, fmt.Errorf("%w: dead slot %d is not zeroed", ErrCorruptState, i)
		}
	}

	return &Arena[T]{
		slots:  slots,
		free:   free,
		logger: o.logger,
	}, nil
}

// Capacity returns the number of slots.
func (a *Arena[T]) Capacity() int {
	return len(a.slots)
}

// Store writes value into the lowest free slot and returns its handle.
// It panics with ErrAllocatorExhausted if every slot is occupied.
func (a *Arena[T]) Store(value T) Handle[T] {
	h, err := a.TryStore(value)
	if err != nil {
		panic(err)
	}
	return h
}

// TryStore is like Store but returns ErrAllocatorExhausted instead of panicking.
func (a *Arena[T]) TryStore(value T) (Handle[T], error) {
	slot, ok := a.free.Claim()
	if !ok {
		return Handle[T]{}, fmt.Errorf("%w: all %d slots in use", ErrAllocatorExhausted, len(a.slots))
	}
	a.slots[slot] = value
	return handleForSlot[T](slot), nil
}

// Store8Aligned writes values into the lowest fully free group of 8 slots and
// returns the handle of its first slot. Members are addressed with Handle.Offset.
// It panics with ErrAllocatorExhausted if no whole group is free.
func (a *Arena[T]) Store8Aligned(values [GroupSize]T) Handle[T] {
	h, err := a.TryStore8Aligned(values)
	if err != nil {
		panic(err)
	}
	return h
}

// TryStore8Aligned is like Store8Aligned but returns ErrAllocatorExhausted instead
// of panicking.
func (a *Arena[T]) TryStore8Aligned(values [GroupSize]T) (Handle[T], error) {
	first, ok := a.free.ClaimGroup()
	if !ok {
		return Handle[T]{}, fmt.Errorf("%w: no free group of %d slots", ErrAllocatorExhausted, GroupSize)
	}
	copy(a.slots[first:first+GroupSize], values[:])
	return handleForSlot[T](first), nil
}

// Get returns the value stored at h. It panics with ErrNullHandle if h is null.
func (a *Arena[T]) Get(h Handle[T]) T {
	return *a.Ref(h)
}

// Ref returns a pointer to the slot addressed by h for in-place mutation.
// The pointer stays valid for the lifetime of the arena.
// It panics with ErrNullHandle if h is null.
func (a *Arena[T]) Ref(h Handle[T]) *T {
	if h.IsNull() {
		panic(ErrNullHandle)
	}
	return &a.slots[h.index-1]
}

// Set overwrites the value at h. Writing through a null handle is a no-op that is
// reported at warn level.
func (a *Arena[T]) Set(h Handle[T], value T) {
	if h.IsNull() {
		a.logger.Warn("arena: dropped write through null handle")
		return
	}
	a.slots[h.index-1] = value
}

// Live reports whether h addresses an occupied slot.
func (a *Arena[T]) Live(h Handle[T]) bool {
	slot := h.Slot()
	if slot < 0 || slot >= len(a.slots) {
		return false
	}
	return a.free.Test(slot)
}

// Remove frees the slot addressed by h and resets it to the zero value.
// Removing a slot that is already free is undefined. Removing the null handle is
// a no-op that is reported at warn level.
func (a *Arena[T]) Remove(h Handle[T]) {
	if h.IsNull() {
		a.logger.Warn("arena: ignored remove of null handle")
		return
	}
	slot := h.Slot()
	a.free.Release(slot)

	var zero T
	a.slots[slot] = zero
}

// Remove8Aligned frees the whole group headed by h and resets its 8 slots to the
// zero value. It panics with ErrNotGroupAligned if h is not a group head.
func (a *Arena[T]) Remove8Aligned(h Handle[T]) {
	if h.IsNull() {
		a.logger.Warn("arena: ignored group remove of null handle")
		return
	}
	first := h.Slot()
	if first%GroupSize != 0 {
		panic(fmt.Errorf("%w: %s", ErrNotGroupAligned, h))
	}
	a.free.ReleaseGroup(first)
	clear(a.slots[first : first+GroupSize])
}

// AllocationCount returns the number of occupied slots.
func (a *Arena[T]) AllocationCount() uint32 {
	return uint32(a.free.Count()) //nolint:gosec // count <= capacity <= MaxCapacity
}

// Slice returns the full backing store, including free slots (which hold the zero value).
// The slice aliases the arena.
func (a *Arena[T]) Slice() []T {
	return a.slots
}

// Occupancy returns the set of live slot indices (not handle indices).
func (a *Arena[T]) Occupancy() *roaring.Bitmap {
	bm := roaring.New()
	for g, w := range a.free.Bytes() {
		if w == 0 {
			continue
		}
		base := uint32(g * GroupSize) //nolint:gosec // bounded by MaxCapacity
		if w == 0xFF {
			bm.AddRange(uint64(base), uint64(base)+GroupSize)
			continue
		}
		for bit := range uint32(GroupSize) {
			if w&(1<<bit) != 0 {
				bm.Add(base + bit)
			}
		}
	}
	return bm
}
