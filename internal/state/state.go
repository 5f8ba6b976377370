// Package state holds the process-wide Shared State that coordinates
// workers, the printer, and the signal handler for a single run.
package state

import (
	"sort"
	"sync"

	"go.uber.org/atomic"
)

// State is one instance per run. All counter fields are safe for
// concurrent use; requests_latency and worker_states are additionally
// guarded by an internal mutex since they are not plain scalars.
type State struct {
	lastRequestID   atomic.Int64
	requestsTotal   atomic.Int64
	requestsPrinted atomic.Int64
	requestsSuccess atomic.Int64
	requestsFailed  atomic.Int64

	latencyMu sync.Mutex
	latency   []float64

	methodsMu sync.Mutex
	methods   map[string]struct{}

	workersMu sync.Mutex
	workers   []string

	shutdown atomic.Bool
}

// New creates a Shared State sized for workerCount worker slots.
func New(workerCount int) *State {
	return &State{
		methods: make(map[string]struct{}),
		workers: make([]string, workerCount),
	}
}

// NextRequestID hands out a unique, dense positive integer id.
func (s *State) NextRequestID() int64 { return s.lastRequestID.Inc() }

// AddTotal increments requests_total by n and returns the new value.
func (s *State) AddTotal(n int64) int64 { return s.requestsTotal.Add(n) }

// Total returns the current requests_total.
func (s *State) Total() int64 { return s.requestsTotal.Load() }

// IncPrinted increments requests_printed.
func (s *State) IncPrinted() int64 { return s.requestsPrinted.Inc() }

// Printed returns the current requests_printed.
func (s *State) Printed() int64 { return s.requestsPrinted.Load() }

// IncSuccess increments requests_success.
func (s *State) IncSuccess() int64 { return s.requestsSuccess.Inc() }

// Success returns the current requests_success.
func (s *State) Success() int64 { return s.requestsSuccess.Load() }

// IncFailed increments requests_failed.
func (s *State) IncFailed() int64 { return s.requestsFailed.Inc() }

// Failed returns the current requests_failed.
func (s *State) Failed() int64 { return s.requestsFailed.Load() }

// RecordLatency appends a latency observation (seconds). Safe for
// concurrent use by multiple workers.
func (s *State) RecordLatency(seconds float64) {
	s.latencyMu.Lock()
	s.latency = append(s.latency, seconds)
	s.latencyMu.Unlock()
}

// SortedLatencies returns a sorted copy of the recorded latencies. Must
// be called only after all workers have joined.
func (s *State) SortedLatencies() []float64 {
	s.latencyMu.Lock()
	out := make([]float64, len(s.latency))
	copy(out, s.latency)
	s.latencyMu.Unlock()
	sort.Float64s(out)
	return out
}

// Median returns the median of the recorded (sorted) latencies, or 0 and
// false if none were recorded.
func Median(sorted []float64) (float64, bool) {
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// AddMethod records a method as observed during seeding. Only called
// before workers start; no producer runs concurrently with consumers.
func (s *State) AddMethod(method string) {
	s.methodsMu.Lock()
	s.methods[method] = struct{}{}
	s.methodsMu.Unlock()
}

// UsedMethods returns the set of methods seen during seeding.
func (s *State) UsedMethods() []string {
	s.methodsMu.Lock()
	defer s.methodsMu.Unlock()
	out := make([]string, 0, len(s.methods))
	for m := range s.methods {
		out = append(out, m)
	}
	return out
}

// SetWorkerState records the diagnostic state of worker slot i. Each
// worker mutates only its own slot.
func (s *State) SetWorkerState(i int, state string) {
	s.workersMu.Lock()
	if i >= 0 && i < len(s.workers) {
		s.workers[i] = state
	}
	s.workersMu.Unlock()
}

// WorkerStates returns a snapshot of all worker diagnostic states.
func (s *State) WorkerStates() []string {
	s.workersMu.Lock()
	defer s.workersMu.Unlock()
	out := make([]string, len(s.workers))
	copy(out, s.workers)
	return out
}

// Shutdown sets the one-way shutdown latch. Once set, it never clears.
func (s *State) Shutdown() { s.shutdown.Store(true) }

// ShuttingDown reports whether the shutdown latch has been set.
func (s *State) ShuttingDown() bool { return s.shutdown.Load() }
