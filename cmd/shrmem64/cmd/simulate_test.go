package cmd

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blacktop/go-shrmem64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	tok, err := parseToken("0x00F8A10000000042")
	require.NoError(t, err)
	assert.Equal(t, shrmem64.Token(0x00F8A10000000042), tok)

	_, err = parseToken("asid")
	assert.Error(t, err)
}

func TestRunSimulation(t *testing.T) {
	res, err := runSimulation(simulation{size: 1, peer: 0x00F9B20000000057})
	require.NoError(t, err)

	assert.Equal(t, "0xf8a10000000042", res.Token)
	assert.Equal(t, uint64(1), res.Segments)

	ops := make([]string, 0, len(res.Steps))
	for _, s := range res.Steps {
		ops = append(ops, s.Op)
	}
	assert.Equal(t, []string{
		"getshared",
		"sharememobj",
		"detach_single_not_owner",
		"release_single",
		"release_single",
		"release_all",
	}, ops)

	for i, s := range res.Steps {
		if i == 4 {
			assert.False(t, s.OK, "second release must fail")
			assert.Equal(t, "SINGLE_SYS_DETACH_FAILED", s.Kind)
			assert.Equal(t, "0x0B08000C", s.Status)
			continue
		}
		assert.True(t, s.OK, "step %d (%s): %s", i, s.Op, s.Error)
	}
	assert.Equal(t, uint64(1), res.Metrics.Failures)
}

func TestRunSimulationInjectedFailure(t *testing.T) {
	res, err := runSimulation(simulation{
		size:    3 << 20,
		fail:    "getshared",
		failRC:  8,
		failRSN: 0x0A000301,
	})
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	assert.False(t, res.Steps[0].OK)
	assert.Equal(t, "GETSHARED_FAILED", res.Steps[0].Kind)
	assert.Equal(t, "0x08080003", res.Steps[0].Status)
	assert.Equal(t, uint64(3), res.Segments)
}

func TestRunSimulationCommon(t *testing.T) {
	res, err := runSimulation(simulation{size: 1, common: true, key: 8})
	require.NoError(t, err)
	require.NotEmpty(t, res.Steps)
	assert.Equal(t, "getcommon", res.Steps[0].Op)
	assert.True(t, res.Steps[0].OK)
}

func TestRunSimulationUnknownRequest(t *testing.T) {
	_, err := runSimulation(simulation{size: 1, fail: "getprivate"})
	assert.Error(t, err)
}

func TestServeMux(t *testing.T) {
	if _, err := runSimulation(simulation{size: 1}); err != nil {
		t.Fatal(err)
	}
	mux := newServeMux("test")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `test_shrmem64_requests_total{request="getshared"} 1`), body)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	ok, _ := shrmem64.Supported()
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if ok {
		assert.Equal(t, http.StatusOK, rec.Code)
	} else {
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
}
