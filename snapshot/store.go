package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/svo"
	"github.com/hupe1980/svo/blobstore"
)

// Save encodes tree into the blob name. A failed encode discards the partial
// blob, so readers never observe a truncated snapshot.
func Save[T Voxel](ctx context.Context, store blobstore.Store, name string, tree *svo.Octree[T], opts ...Option) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("snapshot: create %q: %w", name, err)
	}

	bw := bufio.NewWriterSize(w, 1<<20)
	if err := Encode(ctx, bw, tree, opts...); err != nil {
		return errors.Join(err, blobstore.Abort(w))
	}
	if err := bw.Flush(); err != nil {
		return errors.Join(fmt.Errorf("snapshot: write %q: %w", name, err), blobstore.Abort(w))
	}
	if err := w.Sync(); err != nil {
		return errors.Join(fmt.Errorf("snapshot: sync %q: %w", name, err), blobstore.Abort(w))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("snapshot: commit %q: %w", name, err)
	}
	return nil
}

// Load decodes the snapshot stored as name.
//
// Blobs that can be memory mapped are decoded in place; others are streamed
// with a single ranged read.
func Load[T Voxel](ctx context.Context, store blobstore.Store, name string, opts ...Option) (*svo.Octree[T], error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %q: %w", name, err)
	}
	defer blob.Close()

	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			return Decode[T](ctx, bytes.NewReader(data), opts...)
		}
	}

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %q: %w", name, err)
	}
	defer rc.Close()

	return Decode[T](ctx, bufio.NewReaderSize(rc, 1<<20), opts...)
}

// Stat reads the header of the snapshot stored as name.
func Stat(ctx context.Context, store blobstore.Store, name string) (Header, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: open %q: %w", name, err)
	}
	defer blob.Close()

	h, err := ReadHeader(io.LimitReader(blobstore.NewReader(ctx, blob), HeaderSize))
	if err != nil {
		return Header{}, err
	}
	size := uint64(blob.Size()) //nolint:gosec // sizes are non-negative
	switch {
	case size < h.Size():
		return Header{}, fmt.Errorf("%w: blob is %d bytes, header declares %d", ErrTruncated, size, h.Size())
	case size > h.Size():
		return Header{}, fmt.Errorf("%w: blob is %d bytes, header declares %d", ErrCorrupt, size, h.Size())
	}
	return h, nil
}
