package svo

import (
	"github.com/hupe1980/svo/resource"
)

const (
	// DefaultCapacity is the default number of node slots in a tree's arena.
	DefaultCapacity = 1 << 16

	// MinCapacity is the smallest usable arena: one group for the root and one
	// group for its children.
	MinCapacity = 16
)

type options struct {
	capacity  int
	logger    *Logger
	metrics   MetricsCollector
	resources *resource.Controller
}

// Option configures an Octree.
type Option func(*options)

// WithCapacity sets the number of node slots in the arena.
// The value is rounded up to a multiple of 8. Capacity is fixed for the lifetime
// of the tree; running out of slots during a write is fatal.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithLogger configures structured logging.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection (NoopMetricsCollector).
//
// Example with BasicMetricsCollector:
//
//	metrics := &svo.BasicMetricsCollector{}
//	tree, _ := svo.New[uint16](8, svo.WithMetricsCollector(metrics))
//	tree.Set(1, 2, 3, 42)
//	fmt.Println(metrics.SetCount.Load())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithResourceController accounts the arena's memory against rc.
// The reservation is taken in New and returned by Close.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

func applyOptions(opts []Option) options {
	o := options{
		capacity: DefaultCapacity,
		logger:   NoopLogger(),
		metrics:  NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
