package snapshot

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/svo"
	"github.com/hupe1980/svo/resource"
)

// Voxel is the set of value types a snapshot can carry. Their nodes hold no
// pointers, so the arena can be written as raw bytes.
type Voxel interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~bool
}

// Encode writes a snapshot of tree to w.
//
// Blocks are compressed in parallel; the tree must not be modified until
// Encode returns.
func Encode[T Voxel](ctx context.Context, w io.Writer, tree *svo.Octree[T], opts ...Option) error {
	o := applyOptions(opts)
	if !o.compression.valid() {
		return fmt.Errorf("snapshot: unknown compression %d", o.compression)
	}

	raw := tree.Bytes()

	blocks, err := compressBlocks(ctx, raw, o)
	if err != nil {
		return err
	}

	occupancy := tree.Arena().Occupancy()
	occupancy.RunOptimize()
	occ, err := occupancy.ToBytes()
	if err != nil {
		return fmt.Errorf("snapshot: encode occupancy: %w", err)
	}

	var section uint64
	for _, b := range blocks {
		section += uint64(len(b))
	}

	h := Header{
		Version:          Version,
		Compression:      o.compression,
		ByteOrder:        hostByteOrder(),
		MaxDepth:         tree.MaxDepth(),
		NodeSize:         uint32(tree.NodeSize()), //nolint:gosec // node sizes are tiny
		Capacity:         uint32(tree.Capacity()), //nolint:gosec // capacity <= arena.MaxCapacity
		Root:             tree.Root().Index(),
		Live:             tree.AllocationCount(),
		BlockSize:        uint32(o.blockSize), //nolint:gosec // block sizes are bounded by callers
		NodeBytes:        uint64(len(raw)),
		NodeSection:      section,
		OccupancySection: uint64(len(occ)),
	}

	hdr := h.marshal()
	crc := crc32.Update(0, castagnoli, hdr[:checksumOffset])
	for _, b := range blocks {
		crc = crc32.Update(crc, castagnoli, b)
	}
	crc = crc32.Update(crc, castagnoli, occ)
	h.Checksum = crc
	hdr = h.marshal()

	out := resource.NewRateLimitedWriter(ctx, w, o.resources)
	if _, err := out.Write(hdr); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	for _, b := range blocks {
		if _, err := out.Write(b); err != nil {
			return fmt.Errorf("snapshot: write nodes: %w", err)
		}
	}
	if _, err := out.Write(occ); err != nil {
		return fmt.Errorf("snapshot: write occupancy: %w", err)
	}
	return nil
}

// compressBlocks splits raw into blocks and frames each one, running up to
// o.concurrency compressions at a time.
func compressBlocks(ctx context.Context, raw []byte, o options) ([][]byte, error) {
	n := (len(raw) + o.blockSize - 1) / o.blockSize
	blocks := make([][]byte, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i := range n {
		start := i * o.blockSize
		end := min(start+o.blockSize, len(raw))

		g.Go(func() error {
			if err := o.resources.AcquireBackground(gctx); err != nil {
				return err
			}
			defer o.resources.ReleaseBackground()

			b, err := compressBlock(raw[start:end], o.compression)
			if err != nil {
				return fmt.Errorf("snapshot: compress block %d: %w", i, err)
			}
			blocks[i] = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}
