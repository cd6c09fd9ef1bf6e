package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
)

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// BenchmarkEVM pings all URLs in parallel; results keep the input order.
func BenchmarkEVM(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			latency, block, err := chain.NewEVMClient(u).Ping(ctx)
			results[idx] = BenchmarkResult{URL: u, Latency: latency, BlockNumber: block, Err: err}
		}(i, url)
	}
	wg.Wait()
	return results
}

// ResultsToEndpoints converts benchmark results into checked endpoints.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// BestEVM returns the URL to use. A single URL is returned without probing.
func BestEVM(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	winner, err := NewPicker(algo).Pick(ResultsToEndpoints(BenchmarkEVM(ctx, urls)))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
