// Package bitset provides the byte-granular free list used by the slot arena.
//
// Layout:
//   - One bit per slot: bit (i % 8) of byte (i / 8) is set iff slot i is occupied
//   - One byte per group: a group of 8 contiguous slots is free iff its byte is 0x00
//     and fully claimed iff it is 0xFF
//
// Allocation is first-fit: whole bytes are scanned before the bits within a byte,
// so the lowest free index always wins.
package bitset
