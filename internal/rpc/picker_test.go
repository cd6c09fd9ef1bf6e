package rpc_test

import (
	"testing"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checked builds an endpoint that has been health-checked (Checked: true).
func checked(url string, latency time.Duration, block uint64, healthy bool) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block, Healthy: healthy, Checked: true}
}

// unchecked builds an endpoint with latency/block data but no health-check status.
func unchecked(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block}
}

func TestParseAlgorithm(t *testing.T) {
	assert.Equal(t, rpc.AlgorithmRoundRobin, rpc.ParseAlgorithm("round-robin"))
	assert.Equal(t, rpc.AlgorithmFailover, rpc.ParseAlgorithm("failover"))
	assert.Equal(t, rpc.AlgorithmFastest, rpc.ParseAlgorithm(""))
	assert.Equal(t, rpc.AlgorithmFastest, rpc.ParseAlgorithm("bogus"))
}

func TestPickerSelectsFastest(t *testing.T) {
	endpoints := []rpc.Endpoint{
		unchecked("http://slow.rpc", 200*time.Millisecond, 100),
		unchecked("http://fast.rpc", 30*time.Millisecond, 100),
		unchecked("http://medium.rpc", 80*time.Millisecond, 100),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickerDiscardsStaleNodes(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://fresh.rpc", 50*time.Millisecond, 1000, true),
		checked("http://stale.rpc", 10*time.Millisecond, 990, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL, "stale node should be discarded even if faster")
}

func TestPickerIgnoresUnhealthyTip(t *testing.T) {
	// A dead node reporting a far-ahead block must not make live ones look stale.
	endpoints := []rpc.Endpoint{
		checked("http://dead.rpc", 0, 5000, false),
		checked("http://live.rpc", 40*time.Millisecond, 1000, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://live.rpc", winner.URL)
}

func TestPickerCachesFastestWinner(t *testing.T) {
	picker := rpc.NewPicker(rpc.AlgorithmFastest)
	first, err := picker.Pick([]rpc.Endpoint{
		unchecked("http://a", 10*time.Millisecond, 1),
		unchecked("http://b", 90*time.Millisecond, 1),
	})
	require.NoError(t, err)
	require.Equal(t, "http://a", first.URL)

	again, err := picker.Pick([]rpc.Endpoint{
		unchecked("http://a", 90*time.Millisecond, 1),
		unchecked("http://b", 10*time.Millisecond, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://a", again.URL)
}

func TestPickerRoundRobin(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://rpc1", 0, 100, true),
		checked("http://rpc2", 0, 100, false),
		checked("http://rpc3", 0, 100, true),
	}

	picker := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	var urls []string
	for range 4 {
		e, err := picker.Pick(endpoints)
		require.NoError(t, err)
		urls = append(urls, e.URL)
	}
	assert.Equal(t, []string{"http://rpc1", "http://rpc3", "http://rpc1", "http://rpc3"}, urls)
}

func TestPickerFailover(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://primary", 0, 100, false),
		checked("http://backup", 0, 100, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFailover).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://backup", winner.URL)
}

func TestPickerAllUnhealthy(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://a", 0, 0, false),
		checked("http://b", 0, 0, false),
	}
	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmRoundRobin, rpc.AlgorithmFailover} {
		t.Run(string(algo), func(t *testing.T) {
			_, err := rpc.NewPicker(algo).Pick(endpoints)
			assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
		})
	}
}

func TestPickerEmpty(t *testing.T) {
	_, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}
