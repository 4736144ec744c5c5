// Package metrics wraps an allocator with Prometheus instrumentation:
// a per-order free-block gauge and allocate/free success/failure
// counters, exposed as a scrapeable /metrics surface. It is purely
// observational — it changes no allocator state beyond the counters
// it owns — and supplements the allocator's text-only Dump rather than
// replacing it.
package metrics

import (
	"io"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Target is the subset of *allocator.Allocator (or *allocator.Synchronized)
// a Collector instruments. Declared here, rather than imported from
// the allocator package, so metrics stays usable against anything
// shaped like an allocator, including test doubles.
type Target interface {
	Allocate(size int64) (uint64, error)
	Free(addr uint64) error
	Dump(w io.Writer) error
	MinOrder() int
	MaxOrder() int
	FreeCount(order int) int
}

// Collector is a prometheus.Collector that instruments a Target.
// Allocate and Free must be called through the Collector (not the
// wrapped Target directly) for the counters to observe them; FreeCount
// is read live from the target at scrape time, so no separate
// bookkeeping is needed for the gauge.
type Collector struct {
	target Target

	allocTotal    uint64
	allocFailures uint64
	freeTotal     uint64
	freeFailures  uint64

	freeBlocksDesc *prometheus.Desc
	allocTotalDesc *prometheus.Desc
	allocFailDesc  *prometheus.Desc
	freeTotalDesc  *prometheus.Desc
	freeFailDesc   *prometheus.Desc
}

// NewCollector builds a Collector instrumenting target. namespace is
// used as the Prometheus metric namespace (e.g. "buddyalloc").
func NewCollector(target Target, namespace string) *Collector {
	return &Collector{
		target: target,
		freeBlocksDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "free_blocks"),
			"Number of free blocks currently linked at this order.",
			[]string{"order"}, nil,
		),
		allocTotalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "allocate_total"),
			"Total successful Allocate calls.", nil, nil,
		),
		allocFailDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "allocate_failures_total"),
			"Total failed Allocate calls (InvalidSize or OutOfMemory).", nil, nil,
		),
		freeTotalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "free_total"),
			"Total successful Free calls.", nil, nil,
		),
		freeFailDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "free_failures_total"),
			"Total failed Free calls.", nil, nil,
		),
	}
}

// Allocate delegates to the wrapped target and records the outcome.
func (c *Collector) Allocate(size int64) (uint64, error) {
	addr, err := c.target.Allocate(size)
	if err != nil {
		atomic.AddUint64(&c.allocFailures, 1)
		return 0, err
	}
	atomic.AddUint64(&c.allocTotal, 1)
	return addr, nil
}

// Free delegates to the wrapped target and records the outcome.
func (c *Collector) Free(addr uint64) error {
	err := c.target.Free(addr)
	if err != nil {
		atomic.AddUint64(&c.freeFailures, 1)
		return err
	}
	atomic.AddUint64(&c.freeTotal, 1)
	return nil
}

// Dump delegates to the wrapped target; Dump calls are not counted.
func (c *Collector) Dump(w io.Writer) error {
	return c.target.Dump(w)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.freeBlocksDesc
	ch <- c.allocTotalDesc
	ch <- c.allocFailDesc
	ch <- c.freeTotalDesc
	ch <- c.freeFailDesc
}

// Collect implements prometheus.Collector, reading live free-list
// lengths from the target and the Collector's own running counters.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for order := c.target.MinOrder(); order <= c.target.MaxOrder(); order++ {
		ch <- prometheus.MustNewConstMetric(
			c.freeBlocksDesc, prometheus.GaugeValue,
			float64(c.target.FreeCount(order)), strconv.Itoa(order),
		)
	}
	ch <- prometheus.MustNewConstMetric(c.allocTotalDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&c.allocTotal)))
	ch <- prometheus.MustNewConstMetric(c.allocFailDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&c.allocFailures)))
	ch <- prometheus.MustNewConstMetric(c.freeTotalDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&c.freeTotal)))
	ch <- prometheus.MustNewConstMetric(c.freeFailDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&c.freeFailures)))
}
