// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("scenes/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = snapshot.Save(ctx, store, "level-1.svo", tree)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart streaming uploads via the SDK upload manager
//   - CRC32C checksums on single-shot puts
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
