package mem

import (
	"unsafe"
)

// SizeOf returns the in-memory size of T in bytes, including padding.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// AlignOf returns the required alignment of T in bytes.
func AlignOf[T any]() int {
	var zero T
	return int(unsafe.Alignof(zero))
}

// AsBytes returns the backing memory of s as a byte slice.
// The returned slice aliases s and is valid as long as s is.
func AsBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	size := len(s) * SizeOf[T]()
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), size) //nolint:gosec // unsafe is required for zero-copy export
}
