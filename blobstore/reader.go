package blobstore

import (
	"context"
	"io"
)

// Reader adapts a Blob to io.Reader and io.ReaderAt for a fixed context.
type Reader struct {
	ctx  context.Context
	blob Blob
	off  int64
}

// NewReader returns a sequential reader over blob starting at offset 0.
func NewReader(ctx context.Context, blob Blob) *Reader {
	return &Reader{ctx: ctx, blob: blob}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= r.blob.Size() {
		return 0, io.EOF
	}
	if remaining := r.blob.Size() - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 { //nolint:errorlint // io.EOF is returned unwrapped
		err = nil
	}
	return n, err
}

// ReadAt implements io.ReaderAt.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	return r.blob.ReadAt(r.ctx, p, off)
}

// Size returns the size of the underlying blob.
func (r *Reader) Size() int64 {
	return r.blob.Size()
}
