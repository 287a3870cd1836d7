package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression of the node section.
type Compression uint8

const (
	// CompressionNone stores blocks as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, the default).
	CompressionLZ4 Compression = 1
	// CompressionZstd uses Zstandard (better ratio, slower).
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZstd
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block layout: [uncompressed uint32][compressed uint32][payload].
// A compressed size of 0 marks a stored block.
const blockHeaderSize = 8

// storeThreshold is the compressed/raw ratio above which a block is stored.
const storeThreshold = 0.9

var errSizeMismatch = errors.New("decompressed size mismatch")

// compressBlock frames data as one block, falling back to a stored block
// when compression does not pay off.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var (
		compressed []byte
		err        error
	)

	switch c {
	case CompressionLZ4:
		compressed, err = compressBlockLZ4(data)
	case CompressionZstd:
		compressed = compressBlockZstd(data)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*storeThreshold {
		return frame(data, 0, data), nil
	}
	return frame(data, len(compressed), compressed), nil
}

func frame(raw []byte, compressedSize int, payload []byte) []byte {
	out := make([]byte, blockHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(raw)))       //nolint:gosec // blocks are at most BlockSize
	binary.LittleEndian.PutUint32(out[4:], uint32(compressedSize)) //nolint:gosec // compressed <= raw
	copy(out[blockHeaderSize:], payload)
	return out
}

func compressBlockLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return dst[:n], nil
}

func compressBlockZstd(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// blockRef locates one framed block inside the node section.
type blockRef struct {
	raw        uint32
	compressed uint32
	payload    []byte
	dstOffset  uint64
}

// indexBlocks walks the framed blocks of section and checks that they tile
// exactly nodeBytes of output.
func indexBlocks(section []byte, nodeBytes uint64, blockSize uint32) ([]blockRef, error) {
	var (
		refs []blockRef
		off  uint64
	)

	for len(section) > 0 {
		if len(section) < blockHeaderSize {
			return nil, fmt.Errorf("%w: block header cut short", ErrCorrupt)
		}
		raw := binary.LittleEndian.Uint32(section[0:])
		compressed := binary.LittleEndian.Uint32(section[4:])
		section = section[blockHeaderSize:]

		if raw == 0 || raw > blockSize {
			return nil, fmt.Errorf("%w: block of %d bytes", ErrCorrupt, raw)
		}
		if off+uint64(raw) > nodeBytes {
			return nil, fmt.Errorf("%w: blocks exceed %d node bytes", ErrCorrupt, nodeBytes)
		}

		size := compressed
		if size == 0 {
			size = raw
		}
		if uint64(len(section)) < uint64(size) {
			return nil, fmt.Errorf("%w: block payload cut short", ErrCorrupt)
		}

		refs = append(refs, blockRef{
			raw:        raw,
			compressed: compressed,
			payload:    section[:size],
			dstOffset:  off,
		})
		section = section[size:]
		off += uint64(raw)
	}

	if off != nodeBytes {
		return nil, fmt.Errorf("%w: blocks cover %d of %d node bytes", ErrCorrupt, off, nodeBytes)
	}
	return refs, nil
}

// decompressBlock expands ref into dst, which must be exactly ref.raw bytes.
func decompressBlock(ref blockRef, dst []byte, c Compression) error {
	if ref.compressed == 0 {
		copy(dst, ref.payload)
		return nil
	}

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(ref.payload, dst)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if n != len(dst) {
			return fmt.Errorf("%w: %w", ErrCorrupt, errSizeMismatch)
		}
	case CompressionZstd:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(ref.payload, dst[:0])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if len(out) != len(dst) {
			return fmt.Errorf("%w: %w", ErrCorrupt, errSizeMismatch)
		}
	default:
		return fmt.Errorf("%w: compressed block in %s snapshot", ErrCorrupt, c)
	}
	return nil
}
