package svo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/svo/arena"
)

var (
	// ErrCorrupt is returned when a tree violates a structural invariant.
	ErrCorrupt = errors.New("svo: corrupt tree")

	// ErrAllocatorExhausted is raised when the node arena has no free group left.
	ErrAllocatorExhausted = arena.ErrAllocatorExhausted

	// ErrNullHandle is raised when a null node handle is dereferenced.
	ErrNullHandle = arena.ErrNullHandle
)

// ErrInvalidDepth indicates a max depth outside [1, MaxDepth].
type ErrInvalidDepth struct {
	Depth uint32
}

func (e *ErrInvalidDepth) Error() string {
	return fmt.Sprintf("invalid max depth %d: must be in [1, %d]", e.Depth, MaxDepth)
}

// ErrInvalidCapacity indicates a node capacity too small to hold a root and one
// child group, or too large for the handle index space.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidCapacity struct {
	Capacity int
	cause    error
}

func (e *ErrInvalidCapacity) Error() string {
	return fmt.Sprintf("invalid node capacity: %d (minimum %d)", e.Capacity, MinCapacity)
}

func (e *ErrInvalidCapacity) Unwrap() error { return e.cause }

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
