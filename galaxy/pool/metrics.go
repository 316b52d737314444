package pool

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/galkit/galaxy/props"
)

// Collector exports pool usage and registry counts to Prometheus.
type Collector struct {
	pool *Pool
	reg  *props.Registry

	capacity *prometheus.Desc
	used     *prometheus.Desc
	free     *prometheus.Desc
	blocks   *prometheus.Desc
	peak     *prometheus.Desc
	allocs   *prometheus.Desc
	releases *prometheus.Desc
	reuses   *prometheus.Desc
	props    *prometheus.Desc
	live     *prometheus.Desc
}

// NewCollector returns a collector for p. reg may be nil, in which case the
// registry metrics are omitted.
func NewCollector(namespace string, p *Pool, reg *props.Registry) *Collector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "pool", n) }
	return &Collector{
		pool:     p,
		reg:      reg,
		capacity: prometheus.NewDesc(name("capacity"), "Total slots across all blocks.", nil, nil),
		used:     prometheus.NewDesc(name("used"), "Slots currently allocated.", nil, nil),
		free:     prometheus.NewDesc(name("free"), "Slots on the free list.", nil, nil),
		blocks:   prometheus.NewDesc(name("blocks"), "Blocks allocated.", nil, nil),
		peak:     prometheus.NewDesc(name("peak_used"), "High-water mark of used slots.", nil, nil),
		allocs:   prometheus.NewDesc(name("allocations_total"), "Cumulative Alloc calls that succeeded.", nil, nil),
		releases: prometheus.NewDesc(name("releases_total"), "Cumulative Release calls that succeeded.", nil, nil),
		reuses:   prometheus.NewDesc(name("reuses_total"), "Allocations that recycled a previously used slot.", nil, nil),
		props: prometheus.NewDesc(prometheus.BuildFQName(namespace, "registry", "ids_issued"),
			"Extension ids issued by the property registry.", nil, nil),
		live: prometheus.NewDesc(prometheus.BuildFQName(namespace, "registry", "live_properties"),
			"Registered properties not yet unregistered.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.used
	ch <- c.free
	ch <- c.blocks
	ch <- c.peak
	ch <- c.allocs
	ch <- c.releases
	ch <- c.reuses
	if c.reg != nil {
		ch <- c.props
		ch <- c.live
	}
}

// Collect implements prometheus.Collector. Pool counters are read
// atomically. Registry counts are read without locking and must only be
// scraped while no registration is in flight.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stats()
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.used, prometheus.GaugeValue, float64(s.Used))
	ch <- prometheus.MustNewConstMetric(c.free, prometheus.GaugeValue, float64(s.FreeLen))
	ch <- prometheus.MustNewConstMetric(c.blocks, prometheus.GaugeValue, float64(s.Blocks))
	ch <- prometheus.MustNewConstMetric(c.peak, prometheus.GaugeValue, float64(s.Peak))
	ch <- prometheus.MustNewConstMetric(c.allocs, prometheus.CounterValue, float64(s.TotalAllocs))
	ch <- prometheus.MustNewConstMetric(c.releases, prometheus.CounterValue, float64(s.Releases))
	ch <- prometheus.MustNewConstMetric(c.reuses, prometheus.CounterValue, float64(s.Reuses))
	if c.reg != nil {
		ch <- prometheus.MustNewConstMetric(c.props, prometheus.GaugeValue, float64(c.reg.Len()))
		ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(c.reg.Live()))
	}
}
