// Package mem provides unsafe reinterpretation between typed slices and raw bytes.
//
// # Byte Views
//
// AsBytes exposes the memory of a slice without copying. It is only meaningful for
// element types without pointers (scalars, arrays and structs of scalars), which is
// what exported node layouts use.
package mem
