// Package snapshot persists octrees as a portable binary image.
//
// A snapshot is the raw node arena split into blocks that are optionally
// compressed with LZ4 or Zstandard, followed by the set of live slots as a
// roaring bitmap. Loading restores the arena byte for byte, so handles and
// the node layout survive the round trip unchanged.
//
// # Format
//
//	header (64 bytes, little endian)
//	  magic "SVO1" | version u16 | compression u8 | endian u8
//	  maxDepth u32 | nodeSize u32 | capacity u32 | root u32 | live u32
//	  blockSize u32 | nodeBytes u64 | nodeSection u64 | occupancySection u64
//	  crc32c u32 | reserved u32
//	node section
//	  per block: uncompressed u32 | compressed u32 (0 = stored) | payload
//	occupancy section
//	  roaring bitmap of live slot indices (portable serialization)
//
// The checksum covers the first 56 header bytes and both sections. Node bytes
// are written in host byte order; decoding on a host of the other byte order
// fails with ErrEndianMismatch.
//
// # Usage
//
//	var buf bytes.Buffer
//	err := snapshot.Encode(ctx, &buf, tree, snapshot.WithCompression(snapshot.CompressionZstd))
//	restored, err := snapshot.Decode[uint32](ctx, &buf)
//
//	err = snapshot.Save(ctx, store, "level-1.svo", tree)
//	restored, err = snapshot.Load[uint32](ctx, store, "level-1.svo")
package snapshot
