package routing

import "sync"

// Rotation is the shared rotation pointer: the index of the instance that
// the next request tries first. It is the only mutable routing state.
//
// The mutex is held for exactly one read or one write and never across a
// network call. Concurrent requests may therefore observe the same start
// index and race to advance it; the last write wins and the pointer is
// always in [0, Size()).
type Rotation struct {
	mu      sync.Mutex
	pointer int
	size    int
}

// NewRotation creates a rotation over n instances, starting at index 0.
func NewRotation(n int) (*Rotation, error) {
	if n < 1 {
		return nil, &InvalidSizeError{Size: n}
	}
	return &Rotation{size: n}, nil
}

// Start returns the current pointer. It is read once per request, before
// any upstream call, to derive the attempt order.
func (r *Rotation) Start() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pointer
}

// Peek returns the current pointer without any routing intent. It exists so
// readiness checks and metrics do not read like request handling.
func (r *Rotation) Peek() int {
	return r.Start()
}

// AdvanceTo stores idx reduced modulo Size (always non-negative) and returns
// the stored value.
func (r *Rotation) AdvanceTo(idx int) int {
	next := Wrap(idx, r.size)

	r.mu.Lock()
	r.pointer = next
	r.mu.Unlock()

	return next
}

// Size returns the number of instances. It never changes.
func (r *Rotation) Size() int {
	return r.size
}

// Wrap reduces idx into [0, n). n must be positive.
func Wrap(idx, n int) int {
	m := idx % n
	if m < 0 {
		m += n
	}
	return m
}

// AttemptOrder returns the instance indices a request tries, in order:
// [(start+k) mod n for k in 0..n). Every index appears exactly once.
func AttemptOrder(start, n int) []int {
	if n < 1 {
		return nil
	}
	order := make([]int, n)
	for k := range order {
		order[k] = Wrap(start+k, n)
	}
	return order
}
