package arena

import "errors"

var (
	// ErrAllocatorExhausted is raised when no free slot or group is left.
	ErrAllocatorExhausted = errors.New("arena: allocator exhausted")
	// ErrNullHandle is raised when a null handle is dereferenced for reading.
	ErrNullHandle = errors.New("arena: null handle dereference")
	// ErrNotGroupAligned is raised when a group operation receives a handle that
	// does not address the first slot of an 8-aligned group.
	ErrNotGroupAligned = errors.New("arena: handle is not 8-aligned")
	// ErrInvalidCapacity is returned for capacities outside [1, MaxCapacity].
	ErrInvalidCapacity = errors.New("arena: invalid capacity")
	// ErrCorruptState is returned by Restore when slots and occupancy disagree.
	ErrCorruptState = errors.New("arena: corrupt state")
)
