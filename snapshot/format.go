package snapshot

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/hupe1980/svo"
	"github.com/hupe1980/svo/arena"
	"github.com/hupe1980/svo/internal/mem"
)

const (
	// Magic identifies a snapshot stream.
	Magic = "SVO1"

	// Version is the format version written by Encode.
	Version uint16 = 1

	// HeaderSize is the fixed size of the snapshot header.
	HeaderSize = 64

	checksumOffset = 56
)

const (
	endianLittle uint8 = 1
	endianBig    uint8 = 2
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Header describes a snapshot without loading its sections.
type Header struct {
	Version     uint16
	Compression Compression
	ByteOrder   uint8
	MaxDepth    uint32
	NodeSize    uint32
	Capacity    uint32
	Root        uint32
	Live        uint32
	BlockSize   uint32

	// NodeBytes is the uncompressed size of the node arena.
	NodeBytes uint64
	// NodeSection is the encoded size of the node section.
	NodeSection uint64
	// OccupancySection is the encoded size of the live slot bitmap.
	OccupancySection uint64

	Checksum uint32
}

// Size returns the total encoded size of the snapshot.
func (h Header) Size() uint64 {
	return HeaderSize + h.NodeSection + h.OccupancySection
}

// Ratio returns the node section size relative to the raw node bytes.
func (h Header) Ratio() float64 {
	if h.NodeBytes == 0 {
		return 0
	}
	return float64(h.NodeSection) / float64(h.NodeBytes)
}

func (h Header) marshal() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:], h.Version)
	buf[6] = uint8(h.Compression)
	buf[7] = h.ByteOrder
	binary.LittleEndian.PutUint32(buf[8:], h.MaxDepth)
	binary.LittleEndian.PutUint32(buf[12:], h.NodeSize)
	binary.LittleEndian.PutUint32(buf[16:], h.Capacity)
	binary.LittleEndian.PutUint32(buf[20:], h.Root)
	binary.LittleEndian.PutUint32(buf[24:], h.Live)
	binary.LittleEndian.PutUint32(buf[28:], h.BlockSize)
	binary.LittleEndian.PutUint64(buf[32:], h.NodeBytes)
	binary.LittleEndian.PutUint64(buf[40:], h.NodeSection)
	binary.LittleEndian.PutUint64(buf[48:], h.OccupancySection)
	binary.LittleEndian.PutUint32(buf[checksumOffset:], h.Checksum)
	return buf
}

// parseHeader decodes buf and checks the fields that do not depend on the
// voxel type.
func parseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrTruncated
	}
	if string(buf[0:4]) != Magic {
		return Header{}, ErrBadMagic
	}

	h := Header{
		Version:          binary.LittleEndian.Uint16(buf[4:]),
		Compression:      Compression(buf[6]),
		ByteOrder:        buf[7],
		MaxDepth:         binary.LittleEndian.Uint32(buf[8:]),
		NodeSize:         binary.LittleEndian.Uint32(buf[12:]),
		Capacity:         binary.LittleEndian.Uint32(buf[16:]),
		Root:             binary.LittleEndian.Uint32(buf[20:]),
		Live:             binary.LittleEndian.Uint32(buf[24:]),
		BlockSize:        binary.LittleEndian.Uint32(buf[28:]),
		NodeBytes:        binary.LittleEndian.Uint64(buf[32:]),
		NodeSection:      binary.LittleEndian.Uint64(buf[40:]),
		OccupancySection: binary.LittleEndian.Uint64(buf[48:]),
		Checksum:         binary.LittleEndian.Uint32(buf[checksumOffset:]),
	}

	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.ByteOrder != hostByteOrder() {
		return Header{}, ErrEndianMismatch
	}
	if !h.Compression.valid() {
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, h.Compression)
	}
	if h.MaxDepth == 0 || h.MaxDepth > svo.MaxDepth {
		return Header{}, fmt.Errorf("%w: max depth %d", ErrCorrupt, h.MaxDepth)
	}
	if h.Capacity == 0 || h.Capacity > arena.MaxCapacity || h.Capacity%arena.GroupSize != 0 {
		return Header{}, fmt.Errorf("%w: capacity %d", ErrCorrupt, h.Capacity)
	}
	if h.NodeBytes != uint64(h.Capacity)*uint64(h.NodeSize) {
		return Header{}, fmt.Errorf("%w: %d node bytes for %d slots of %d bytes", ErrCorrupt, h.NodeBytes, h.Capacity, h.NodeSize)
	}
	if h.BlockSize == 0 {
		return Header{}, fmt.Errorf("%w: zero block size", ErrCorrupt)
	}
	if h.Root == 0 || h.Root > h.Capacity {
		return Header{}, fmt.Errorf("%w: root index %d", ErrCorrupt, h.Root)
	}
	if h.Live == 0 || h.Live > h.Capacity {
		return Header{}, fmt.Errorf("%w: %d live nodes", ErrCorrupt, h.Live)
	}

	blocks := (h.NodeBytes + uint64(h.BlockSize) - 1) / uint64(h.BlockSize)
	if h.NodeSection > h.NodeBytes+blocks*blockHeaderSize {
		return Header{}, fmt.Errorf("%w: node section of %d bytes", ErrCorrupt, h.NodeSection)
	}
	if h.OccupancySection > maxOccupancyBytes(h.Capacity) {
		return Header{}, fmt.Errorf("%w: occupancy section of %d bytes", ErrCorrupt, h.OccupancySection)
	}

	return h, nil
}

// checkNodeType verifies the header against the node layout for voxel type T.
func checkNodeType[T any](h Header) error {
	if want := uint32(svo.NodeSizeOf[T]()); h.NodeSize != want { //nolint:gosec // node sizes are tiny
		return fmt.Errorf("%w: snapshot has %d bytes per node, want %d", ErrNodeSizeMismatch, h.NodeSize, want)
	}
	return nil
}

// maxOccupancyBytes bounds the portable roaring encoding of a bitmap over
// capacity slots: one bitmap container per 2^16 slots plus headers.
func maxOccupancyBytes(capacity uint32) uint64 {
	containers := uint64(capacity)>>16 + 1
	return 16 + containers*(8192+16)
}

func hostByteOrder() uint8 {
	if mem.AsBytes([]uint16{1})[0] == 1 {
		return endianLittle
	}
	return endianBig
}
