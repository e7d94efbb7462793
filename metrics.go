package shrmem64

import (
	"sync/atomic"
	"time"
)

const numRequests = int(RequestReleaseAll) + 1

// Process-wide counters for monitoring shrmem64 requests
var (
	// Per-request counters, indexed by Request
	requestCounts [numRequests]uint64
	failureCounts [numRequests]uint64

	// Allocation volume
	allocations       uint64
	segmentsAllocated uint64

	// Timing metrics (nanoseconds)
	totalRequestTime uint64
)

// Metrics is a snapshot of the process-wide request counters.
type Metrics struct {
	SharedAllocs      uint64 `json:"shared_allocs"`
	CommonAllocs      uint64 `json:"common_allocs"`
	Shares            uint64 `json:"shares"`
	Detaches          uint64 `json:"detaches"`
	Releases          uint64 `json:"releases"`
	ReleaseAlls       uint64 `json:"release_alls"`
	Allocations       uint64 `json:"allocations"`
	SegmentsAllocated uint64 `json:"segments_allocated"`
	Failures          uint64 `json:"failures"`
	AvgRequestTimeNs  uint64 `json:"avg_request_time_ns"`

	// Requests and RequestFailures are keyed by Request.String().
	Requests        map[string]uint64 `json:"requests"`
	RequestFailures map[string]uint64 `json:"request_failures"`
}

// GetMetrics returns current request metrics
func GetMetrics() Metrics {
	m := Metrics{
		Requests:        make(map[string]uint64, numRequests),
		RequestFailures: make(map[string]uint64, numRequests),
	}
	var total uint64
	for i := 0; i < numRequests; i++ {
		req := Request(i)
		n := atomic.LoadUint64(&requestCounts[i])
		f := atomic.LoadUint64(&failureCounts[i])
		m.Requests[req.String()] = n
		m.RequestFailures[req.String()] = f
		total += n
		m.Failures += f
	}

	m.SharedAllocs = m.Requests[RequestGetShared.String()]
	m.CommonAllocs = m.Requests[RequestGetCommon.String()]
	m.Shares = m.Requests[RequestShareMemObj.String()]
	m.Detaches = m.Requests[RequestDetachSingleOwner.String()] +
		m.Requests[RequestDetachSingleNotOwner.String()] +
		m.Requests[RequestDetachByToken.String()]
	m.Releases = m.Requests[RequestReleaseSingle.String()]
	m.ReleaseAlls = m.Requests[RequestReleaseAll.String()]
	m.Allocations = atomic.LoadUint64(&allocations)
	m.SegmentsAllocated = atomic.LoadUint64(&segmentsAllocated)

	if total > 0 {
		m.AvgRequestTimeNs = atomic.LoadUint64(&totalRequestTime) / total
	}
	return m
}

// ResetMetrics clears all request metrics
func ResetMetrics() {
	for i := 0; i < numRequests; i++ {
		atomic.StoreUint64(&requestCounts[i], 0)
		atomic.StoreUint64(&failureCounts[i], 0)
	}
	atomic.StoreUint64(&allocations, 0)
	atomic.StoreUint64(&segmentsAllocated, 0)
	atomic.StoreUint64(&totalRequestTime, 0)
}

// Internal metric recording functions
func recordRequest(req Request, duration time.Duration) {
	if req < 0 || int(req) >= numRequests {
		return
	}
	atomic.AddUint64(&requestCounts[req], 1)
	atomic.AddUint64(&totalRequestTime, uint64(duration.Nanoseconds()))
}

func recordFailure(req Request) {
	if req < 0 || int(req) >= numRequests {
		return
	}
	atomic.AddUint64(&failureCounts[req], 1)
}

func recordAlloc(segments uint64) {
	atomic.AddUint64(&allocations, 1)
	atomic.AddUint64(&segmentsAllocated, segments)
}
