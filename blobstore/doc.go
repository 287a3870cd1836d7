// Package blobstore provides storage backends for octree snapshots.
//
// Store is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local filesystem with mmap reads and atomic renames
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Reading
//
// Blob exposes context-aware random access. Wrap it with NewReader when an
// io.Reader is needed:
//
//	blob, _ := store.Open(ctx, "scene.svo")
//	defer blob.Close()
//	tree, _ := snapshot.Decode[uint32](ctx, blobstore.NewReader(ctx, blob))
package blobstore
