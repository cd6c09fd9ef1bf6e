// Package rpc chooses which endpoint of a network to talk to.
package rpc

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	// Keep the fastest winner this long before choosing again.
	cacheTTL = 5 * time.Minute
)

// ParseAlgorithm maps a config value onto an Algorithm; unknown values mean fastest.
func ParseAlgorithm(s string) Algorithm {
	switch a := Algorithm(s); a {
	case AlgorithmRoundRobin, AlgorithmFailover:
		return a
	default:
		return AlgorithmFastest
	}
}

// Endpoint is one RPC URL with what was measured about it.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked
	Checked     bool
}

func (e *Endpoint) usable() bool { return !e.Checked || e.Healthy }

// Picker selects an endpoint according to its algorithm. Safe for concurrent use.
type Picker struct {
	algo Algorithm

	mu        sync.Mutex
	next      int
	cachedURL string
	expires   time.Time
}

// NewPicker creates a Picker.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick selects an endpoint from the list.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.algo {
	case AlgorithmRoundRobin:
		return p.roundRobin(endpoints)
	case AlgorithmFailover:
		return failover(endpoints)
	default:
		return p.fastest(endpoints)
	}
}

func (p *Picker) fastest(endpoints []Endpoint) (*Endpoint, error) {
	if p.cachedURL != "" && time.Now().Before(p.expires) {
		for i := range endpoints {
			if endpoints[i].URL == p.cachedURL && endpoints[i].usable() {
				return &endpoints[i], nil
			}
		}
	}

	var tip uint64
	for _, e := range endpoints {
		if e.usable() && e.BlockNumber > tip {
			tip = e.BlockNumber
		}
	}

	var winner *Endpoint
	var best float64
	for i := range endpoints {
		e := &endpoints[i]
		if !e.usable() || (tip > 0 && tip-e.BlockNumber > staleBlockThreshold) {
			continue
		}
		if s := score(e, tip); winner == nil || s > best {
			winner, best = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}

	p.cachedURL = winner.URL
	p.expires = time.Now().Add(cacheTTL)
	return winner, nil
}

func (p *Picker) roundRobin(endpoints []Endpoint) (*Endpoint, error) {
	var usable []*Endpoint
	for i := range endpoints {
		if endpoints[i].usable() {
			usable = append(usable, &endpoints[i])
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoHealthyRPC
	}
	e := usable[p.next%len(usable)]
	p.next = (p.next + 1) % len(usable)
	return e, nil
}

func failover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		if endpoints[i].usable() {
			return &endpoints[i], nil
		}
	}
	return nil, ErrNoHealthyRPC
}

// score favours low latency, then recency. One point lost per block behind tip.
func score(e *Endpoint, tip uint64) float64 {
	var s float64
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	} else if e.Latency > 0 {
		s += 1000.0
	}
	if tip > 0 {
		s += float64(10 - int64(tip-e.BlockNumber))
	}
	return s
}
