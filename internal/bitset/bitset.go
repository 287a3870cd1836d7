package bitset

import "math/bits"

const (
	// GroupSize is the number of slots described by one bitmap byte.
	GroupSize = 8

	full = 0xFF
)

// FirstZero returns the position of the lowest clear bit in b.
// It returns false if every bit is set.
func FirstZero(b byte) (uint8, bool) {
	if b == full {
		return 0, false
	}
	return uint8(bits.TrailingZeros8(^b)), true //nolint:gosec // result is in [0,7]
}

// FreeList tracks slot occupancy for a fixed number of slots.
// It is not safe for concurrent use.
type FreeList struct {
	words []byte
}

// New creates a FreeList able to track n slots, rounded up to a whole number of groups.
func New(n int) *FreeList {
	if n < 0 {
		n = 0
	}
	return &FreeList{words: make([]byte, (n+GroupSize-1)/GroupSize)}
}

// Claim marks the lowest free slot as occupied and returns its index.
func (f *FreeList) Claim() (int, bool) {
	for i, w := range f.words {
		if w == full {
			continue
		}
		pos, _ := FirstZero(w)
		f.words[i] = w | 1<<pos
		return i*GroupSize + int(pos), true
	}
	return 0, false
}

// ClaimGroup marks the lowest fully free group as occupied and returns the index of
// its first slot.
func (f *FreeList) ClaimGroup() (int, bool) {
	for i, w := range f.words {
		if w != 0 {
			continue
		}
		f.words[i] = full
		return i * GroupSize, true
	}
	return 0, false
}

// Set marks slot i as occupied.
func (f *FreeList) Set(i int) {
	f.words[i/GroupSize] |= 1 << (i % GroupSize)
}

// Release marks slot i as free.
func (f *FreeList) Release(i int) {
	f.words[i/GroupSize] &^= 1 << (i % GroupSize)
}

// ReleaseGroup frees the whole group whose first slot is i.
func (f *FreeList) ReleaseGroup(i int) {
	f.words[i/GroupSize] = 0
}

// Test reports whether slot i is occupied.
func (f *FreeList) Test(i int) bool {
	return f.words[i/GroupSize]&(1<<(i%GroupSize)) != 0
}

// Count returns the number of occupied slots.
func (f *FreeList) Count() int {
	n := 0
	for _, w := range f.words {
		n += bits.OnesCount8(w)
	}
	return n
}

// Bytes returns the underlying bitmap.
func (f *FreeList) Bytes() []byte {
	return f.words
}
