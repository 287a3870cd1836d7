package snapshot

import "errors"

var (
	// ErrBadMagic is returned when the input does not start with a snapshot header.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrUnsupportedVersion is returned for snapshots written by a newer format version.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

	// ErrNodeSizeMismatch is returned when the stored node size differs from the
	// size of the requested node type.
	ErrNodeSizeMismatch = errors.New("snapshot: node size mismatch")

	// ErrEndianMismatch is returned when the snapshot was written on a host of the
	// other byte order.
	ErrEndianMismatch = errors.New("snapshot: byte order mismatch")

	// ErrChecksum is returned when the stored CRC32C does not match the contents.
	ErrChecksum = errors.New("snapshot: checksum mismatch")

	// ErrTruncated is returned when the input ends before the declared sections.
	ErrTruncated = errors.New("snapshot: truncated")

	// ErrCorrupt is returned for malformed headers, blocks or bitmaps.
	ErrCorrupt = errors.New("snapshot: corrupt")

	// ErrTooLarge is returned when a snapshot declares more node bytes than allowed
	// by WithMaxNodeBytes.
	ErrTooLarge = errors.New("snapshot: too large")
)
