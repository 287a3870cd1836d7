// Package conv provides checked integer conversions.
//
// Use cases:
//   - Validating sizes read from snapshot headers before allocating
//   - Converting slot counts between Go's int and the 32-bit handle index space
//
// For conversions that are provably safe by construction (loop indices bounded by
// an arena's capacity), use direct type casts instead.
package conv
