package svo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSet is called after each write.
	// duration is the total time taken, err is nil if successful.
	RecordSet(duration time.Duration, err error)

	// RecordGet is called after each read.
	RecordGet(duration time.Duration)

	// RecordSubdivide is called when a leaf at the given depth is split.
	RecordSubdivide(depth int)

	// RecordCompress is called when the children of a node at the given depth
	// are collapsed back into it.
	RecordCompress(depth int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSet(time.Duration, error) {}
func (NoopMetricsCollector) RecordGet(time.Duration)        {}
func (NoopMetricsCollector) RecordSubdivide(int)            {}
func (NoopMetricsCollector) RecordCompress(int)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SetCount      atomic.Int64
	SetErrors     atomic.Int64
	SetTotalNanos atomic.Int64
	GetCount      atomic.Int64
	GetTotalNanos atomic.Int64
	Subdivisions  atomic.Int64
	Compressions  atomic.Int64
	DeepestSplit  atomic.Int64
}

// RecordSet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSet(duration time.Duration, err error) {
	b.SetCount.Add(1)
	b.SetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SetErrors.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
}

// RecordSubdivide implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSubdivide(depth int) {
	b.Subdivisions.Add(1)
	d := int64(depth)
	for {
		cur := b.DeepestSplit.Load()
		if d <= cur || b.DeepestSplit.CompareAndSwap(cur, d) {
			return
		}
	}
}

// RecordCompress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompress(int) {
	b.Compressions.Add(1)
}

// Stats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) Stats() MetricsStats {
	sets := b.SetCount.Load()
	gets := b.GetCount.Load()

	var avgSet, avgGet time.Duration
	if sets > 0 {
		avgSet = time.Duration(b.SetTotalNanos.Load() / sets)
	}
	if gets > 0 {
		avgGet = time.Duration(b.GetTotalNanos.Load() / gets)
	}

	return MetricsStats{
		SetCount:     sets,
		SetErrors:    b.SetErrors.Load(),
		AvgSet:       avgSet,
		GetCount:     gets,
		AvgGet:       avgGet,
		Subdivisions: b.Subdivisions.Load(),
		Compressions: b.Compressions.Load(),
		DeepestSplit: int(b.DeepestSplit.Load()),
	}
}

// MetricsStats is a point-in-time view of BasicMetricsCollector.
type MetricsStats struct {
	SetCount     int64
	SetErrors    int64
	AvgSet       time.Duration
	GetCount     int64
	AvgGet       time.Duration
	Subdivisions int64
	Compressions int64
	DeepestSplit int
}
