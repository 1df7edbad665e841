package routing

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats implements thread-safe routing statistics using atomic operations.
// All counters are updated atomically for lock-free performance.
type Stats struct {
	// totalRequests is the total number of inbound requests routed
	totalRequests atomic.Int64

	// attemptsPerInstance is indexed by instance position; its length is
	// fixed at construction because the instance set never changes.
	attemptsPerInstance []atomic.Int64

	// outcomeCount tracks how many attempts ended with each outcome
	// Uses sync.Map for thread-safe concurrent access
	outcomeCount sync.Map // map[string]*atomic.Int64

	// successes is the number of requests relayed from a successful attempt
	successes atomic.Int64

	// terminal is the number of requests relayed from a terminal 4xx
	terminal atomic.Int64

	// exhausted is the number of requests answered with an aggregate failure
	exhausted atomic.Int64

	// cancelled is the number of requests abandoned by the client mid-loop
	cancelled atomic.Int64

	// lastResetTime is when statistics were last reset
	lastResetTime time.Time

	// mu protects lastResetTime
	mu sync.RWMutex
}

// StatsSnapshot is a point-in-time copy of Stats, safe to read without locks.
type StatsSnapshot struct {
	TotalRequests       int64            `json:"total_requests"`
	AttemptsPerInstance []int64          `json:"attempts_per_instance"`
	OutcomeCount        map[string]int64 `json:"outcome_count"`
	Successes           int64            `json:"successes"`
	Terminal            int64            `json:"terminal"`
	Exhausted           int64            `json:"exhausted"`
	Cancelled           int64            `json:"cancelled"`
	LastResetTime       time.Time        `json:"last_reset_time"`
}

// NewStats creates a statistics tracker for n instances.
func NewStats(n int) *Stats {
	if n < 0 {
		n = 0
	}
	return &Stats{
		attemptsPerInstance: make([]atomic.Int64, n),
		lastResetTime:       time.Now(),
	}
}

// IncrementTotal increments the total request counter.
func (s *Stats) IncrementTotal() {
	s.totalRequests.Add(1)
}

// RecordAttempt counts one attempt against instance idx with its outcome.
// Indices outside the instance range only count toward the outcome.
func (s *Stats) RecordAttempt(idx int, outcome string) {
	if idx >= 0 && idx < len(s.attemptsPerInstance) {
		s.attemptsPerInstance[idx].Add(1)
	}

	// Get or create counter for this outcome
	val, _ := s.outcomeCount.LoadOrStore(outcome, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

// IncrementSuccess increments the relayed-success counter.
func (s *Stats) IncrementSuccess() {
	s.successes.Add(1)
}

// IncrementTerminal increments the relayed-terminal counter.
func (s *Stats) IncrementTerminal() {
	s.terminal.Add(1)
}

// IncrementExhausted increments the aggregate-failure counter.
func (s *Stats) IncrementExhausted() {
	s.exhausted.Add(1)
}

// IncrementCancelled increments the client-cancelled counter.
func (s *Stats) IncrementCancelled() {
	s.cancelled.Add(1)
}

// Snapshot returns a point-in-time snapshot of the statistics.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := make([]int64, len(s.attemptsPerInstance))
	for i := range s.attemptsPerInstance {
		attempts[i] = s.attemptsPerInstance[i].Load()
	}

	outcomes := make(map[string]int64)
	s.outcomeCount.Range(func(key, value any) bool {
		outcomes[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	return StatsSnapshot{
		TotalRequests:       s.totalRequests.Load(),
		AttemptsPerInstance: attempts,
		OutcomeCount:        outcomes,
		Successes:           s.successes.Load(),
		Terminal:            s.terminal.Load(),
		Exhausted:           s.exhausted.Load(),
		Cancelled:           s.cancelled.Load(),
		LastResetTime:       s.lastResetTime,
	}
}

// Reset resets all statistics to zero.
func (s *Stats) Reset() {
	s.totalRequests.Store(0)
	s.successes.Store(0)
	s.terminal.Store(0)
	s.exhausted.Store(0)
	s.cancelled.Store(0)

	for i := range s.attemptsPerInstance {
		s.attemptsPerInstance[i].Store(0)
	}

	// Clear all outcome counters
	s.outcomeCount.Range(func(key, value any) bool {
		s.outcomeCount.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastResetTime = time.Now()
	s.mu.Unlock()
}
