package shrmem64_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shrmem64 "github.com/blacktop/go-shrmem64"
	"github.com/blacktop/go-shrmem64/shrmem64test"
)

func TestMetrics(t *testing.T) {
	// Reset metrics for clean test
	shrmem64.ResetMetrics()

	metrics := shrmem64.GetMetrics()
	if metrics.SharedAllocs != 0 || metrics.Failures != 0 {
		t.Fatalf("Expected zeroed metrics, got %+v", metrics)
	}

	c, err := shrmem64.NewWithFacility(shrmem64test.NewFacility(), shrmem64.Options{})
	require.NoError(t, err)

	obj, err := c.AllocShared(tokenA, 3*shrmem64.SegmentSize)
	require.NoError(t, err)
	_, err = c.AllocCommon(tokenA, 1)
	require.NoError(t, err)
	require.NoError(t, c.GrantAccess(tokenB, obj))
	require.NoError(t, c.RevokeAccessAs(tokenB, obj, false))
	require.NoError(t, c.Release(tokenA, obj))
	require.Error(t, c.Release(tokenA, obj))

	metrics = shrmem64.GetMetrics()
	assert.Equal(t, uint64(1), metrics.SharedAllocs)
	assert.Equal(t, uint64(1), metrics.CommonAllocs)
	assert.Equal(t, uint64(1), metrics.Shares)
	assert.Equal(t, uint64(1), metrics.Detaches)
	assert.Equal(t, uint64(2), metrics.Releases)
	assert.Equal(t, uint64(2), metrics.Allocations)
	assert.Equal(t, uint64(4), metrics.SegmentsAllocated)
	assert.Equal(t, uint64(1), metrics.Failures)
	assert.Equal(t, uint64(1), metrics.RequestFailures["release_single"])

	t.Logf("Final metrics: %+v", metrics)

	shrmem64.ResetMetrics()
	assert.Zero(t, shrmem64.GetMetrics().Releases)
}

func TestCollector(t *testing.T) {
	shrmem64.ResetMetrics()

	f := shrmem64test.NewFacility()
	c, err := shrmem64.NewWithFacility(f, shrmem64.Options{})
	require.NoError(t, err)
	_, err = c.AllocShared(tokenA, 2*shrmem64.SegmentSize)
	require.NoError(t, err)
	f.FailNext(shrmem64.RequestReleaseAll, 8, 0)
	require.Error(t, c.ReleaseAll(tokenA))

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(shrmem64.NewCollector("test")))

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	requests := byName["test_shrmem64_requests_total"]
	require.NotNil(t, requests)
	assert.Equal(t, 1.0, counterWithLabel(t, requests, "request", "getshared"))
	assert.Equal(t, 1.0, counterWithLabel(t, requests, "request", "release_all"))
	assert.Equal(t, 0.0, counterWithLabel(t, requests, "request", "sharememobj"))

	failures := byName["test_shrmem64_request_failures_total"]
	require.NotNil(t, failures)
	assert.Equal(t, 1.0, counterWithLabel(t, failures, "request", "release_all"))

	segments := byName["test_shrmem64_segments_allocated_total"]
	require.NotNil(t, segments)
	require.Len(t, segments.GetMetric(), 1)
	assert.Equal(t, 2.0, segments.GetMetric()[0].GetCounter().GetValue())
}

// counterWithLabel returns the value of the counter in mf whose label name
// equals value.
func counterWithLabel(t *testing.T, mf *dto.MetricFamily, name, value string) float64 {
	t.Helper()
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("no %s sample with %s=%q", mf.GetName(), name, value)
	return 0
}
