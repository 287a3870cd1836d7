// Package arena provides a fixed-capacity slot allocator addressed through typed handles.
//
// # Handles
//
// A Handle[T] is a 32-bit slot reference tagged with the element type at compile
// time only. The zero Handle is the null handle; slot i is addressed by handle
// index i+1, so index 0 is never issued.
//
// # Allocation
//
// Occupancy is tracked in a bitmap with one bit per slot. Store claims the lowest
// free slot (whole bitmap bytes are scanned before the bits within a byte).
// Store8Aligned claims a whole bitmap byte, i.e. 8 contiguous slots that are
// allocated and freed together. Freed slots are reset to the zero value of T.
//
// # Failure Model
//
// Reading through a null handle and running out of slots are programming errors
// and panic with an error wrapping ErrNullHandle or ErrAllocatorExhausted. Writing
// through a null handle is tolerated: the write is dropped and a warning is logged.
// TryStore and TryStore8Aligned return the exhaustion error instead of panicking.
//
// # Concurrency
//
// An Arena is owned by a single goroutine. Callers that share one must provide
// their own synchronization.
package arena
