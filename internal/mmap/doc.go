// Package mmap maps snapshot files read-only into memory.
//
//	m, err := mmap.Open("tree.svo")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2). On Windows the file is mapped with
// CreateFileMapping/MapViewOfFile and Advise is a no-op.
//
// A Mapping may be read from several goroutines. Close is idempotent, but no
// goroutine may touch the slice returned by Bytes once Close has been called.
package mmap
