package shrmem64

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports the process-wide request metrics to Prometheus.
type Collector struct {
	requests *prometheus.Desc
	failures *prometheus.Desc
	allocs   *prometheus.Desc
	segments *prometheus.Desc
	avgTime  *prometheus.Desc
}

// NewCollector returns a Collector with metric names under namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		requests: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "shrmem64", "requests_total"),
			"IARV64 requests issued.",
			[]string{"request"}, nil),
		failures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "shrmem64", "request_failures_total"),
			"IARV64 requests that returned rc >= 8.",
			[]string{"request"}, nil),
		allocs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "shrmem64", "allocations_total"),
			"Memory objects allocated.",
			nil, nil),
		segments: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "shrmem64", "segments_allocated_total"),
			"1 MiB segments allocated.",
			nil, nil),
		avgTime: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "shrmem64", "request_duration_avg_seconds"),
			"Average IARV64 request latency.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.failures
	ch <- c.allocs
	ch <- c.segments
	ch <- c.avgTime
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := GetMetrics()
	for i := 0; i < numRequests; i++ {
		name := Request(i).String()
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(m.Requests[name]), name)
		ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(m.RequestFailures[name]), name)
	}
	ch <- prometheus.MustNewConstMetric(c.allocs, prometheus.CounterValue, float64(m.Allocations))
	ch <- prometheus.MustNewConstMetric(c.segments, prometheus.CounterValue, float64(m.SegmentsAllocated))
	ch <- prometheus.MustNewConstMetric(c.avgTime, prometheus.GaugeValue, float64(m.AvgRequestTimeNs)/1e9)
}
