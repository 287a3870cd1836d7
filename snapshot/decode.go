package snapshot

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/svo"
	"github.com/hupe1980/svo/arena"
	"github.com/hupe1980/svo/internal/mem"
	"github.com/hupe1980/svo/resource"
)

// ReadHeader reads and checks the snapshot header at the start of r.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, readErr(err)
	}
	return parseHeader(buf)
}

// Decode reads a snapshot from r and rebuilds the tree.
//
// The restored tree is checked with Validate before it is returned. Options
// passed through WithTreeOptions configure the new tree.
func Decode[T Voxel](ctx context.Context, r io.Reader, opts ...Option) (*svo.Octree[T], error) {
	o := applyOptions(opts)
	in := resource.NewRateLimitedReader(ctx, r, o.resources)

	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(in, hdr); err != nil {
		return nil, readErr(err)
	}
	h, err := parseHeader(hdr)
	if err != nil {
		return nil, err
	}
	if err := checkNodeType[T](h); err != nil {
		return nil, err
	}
	if h.NodeBytes > o.maxNodeBytes {
		return nil, fmt.Errorf("%w: %d node bytes exceed limit of %d", ErrTooLarge, h.NodeBytes, o.maxNodeBytes)
	}

	section := make([]byte, h.NodeSection)
	if _, err := io.ReadFull(in, section); err != nil {
		return nil, readErr(err)
	}
	occ := make([]byte, h.OccupancySection)
	if _, err := io.ReadFull(in, occ); err != nil {
		return nil, readErr(err)
	}

	crc := crc32.Update(0, castagnoli, hdr[:checksumOffset])
	crc = crc32.Update(crc, castagnoli, section)
	crc = crc32.Update(crc, castagnoli, occ)
	if crc != h.Checksum {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, crc, h.Checksum)
	}

	refs, err := indexBlocks(section, h.NodeBytes, h.BlockSize)
	if err != nil {
		return nil, err
	}

	slots := make([]svo.Node[T], h.Capacity)
	if err := decompressBlocks(ctx, refs, mem.AsBytes(slots), h.Compression, o); err != nil {
		return nil, err
	}

	occupancy := roaring.New()
	if err := occupancy.UnmarshalBinary(occ); err != nil {
		return nil, fmt.Errorf("%w: occupancy: %w", ErrCorrupt, err)
	}
	if got := occupancy.GetCardinality(); got != uint64(h.Live) {
		return nil, fmt.Errorf("%w: occupancy holds %d slots, header says %d", ErrCorrupt, got, h.Live)
	}

	nodes, err := arena.Restore(slots, occupancy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	root := arena.HandleFromIndex[svo.Node[T]](h.Root)
	tree, err := svo.Restore(h.MaxDepth, nodes, root, o.treeOptions()...)
	if err != nil {
		if errors.Is(err, svo.ErrCorrupt) {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return nil, err
	}
	return tree, nil
}

func decompressBlocks(ctx context.Context, refs []blockRef, dst []byte, c Compression, o options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, ref := range refs {
		g.Go(func() error {
			if err := o.resources.AcquireBackground(gctx); err != nil {
				return err
			}
			defer o.resources.ReleaseBackground()

			return decompressBlock(ref, dst[ref.dstOffset:ref.dstOffset+uint64(ref.raw)], c)
		})
	}
	return g.Wait()
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return fmt.Errorf("snapshot: read: %w", err)
}
