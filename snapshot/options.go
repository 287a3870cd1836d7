package snapshot

import (
	"runtime"

	"github.com/hupe1980/svo"
	"github.com/hupe1980/svo/resource"
)

const (
	// DefaultBlockSize is the uncompressed size of a node section block.
	DefaultBlockSize = 256 * 1024

	// DefaultMaxNodeBytes bounds the node arena accepted by Decode.
	DefaultMaxNodeBytes = 1 << 30
)

type options struct {
	compression  Compression
	blockSize    int
	concurrency  int
	maxNodeBytes uint64
	resources    *resource.Controller
	treeOpts     []svo.Option
}

// Option configures Encode, Decode, Save and Load.
type Option func(*options)

// WithCompression selects the block compression used by Encode.
// Decode reads the algorithm from the header and ignores this option.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed block size used by Encode.
// Values <= 0 select DefaultBlockSize.
func WithBlockSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultBlockSize
		}
		o.blockSize = n
	}
}

// WithConcurrency bounds the number of blocks compressed or decompressed in parallel.
// Values <= 0 select GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.concurrency = n
	}
}

// WithMaxNodeBytes bounds the size of the node arena Decode is willing to allocate.
func WithMaxNodeBytes(n uint64) Option {
	return func(o *options) {
		o.maxNodeBytes = n
	}
}

// WithResourceController throttles snapshot IO and bounds block workers through rc.
// Decoded trees also reserve their arena memory with rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithTreeOptions passes options to the tree created by Decode and Load.
func WithTreeOptions(opts ...svo.Option) Option {
	return func(o *options) {
		o.treeOpts = append(o.treeOpts, opts...)
	}
}

func applyOptions(opts []Option) options {
	o := options{
		compression:  CompressionLZ4,
		blockSize:    DefaultBlockSize,
		concurrency:  runtime.GOMAXPROCS(0),
		maxNodeBytes: DefaultMaxNodeBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) treeOptions() []svo.Option {
	if o.resources == nil {
		return o.treeOpts
	}
	return append([]svo.Option{svo.WithResourceController(o.resources)}, o.treeOpts...)
}
