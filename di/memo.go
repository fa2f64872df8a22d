package di

import (
	"sync"
	"sync/atomic"
)

// Producer yields the value bound to a key.
type Producer func() (any, error)

// Constant returns a producer that always yields v.
func Constant(v any) Producer {
	return func() (any, error) { return v, nil }
}

// Memoized caches the first non-nil result of a producer.
//
// A nil result counts as "not computed yet" and the producer runs again on
// the next call; errors are never cached. The cell is safe for concurrent use
// and runs the producer at most once per successful computation. The producer
// must not call back into its own cell.
type Memoized struct {
	mu    sync.Mutex
	fn    Producer
	value atomic.Pointer[any]
}

// NewMemoized wraps fn in a memoizing cell.
func NewMemoized(fn Producer) *Memoized {
	return &Memoized{fn: fn}
}

// Call returns the cached value, computing it first if needed.
func (m *Memoized) Call() (any, error) {
	if v, ok := m.Peek(); ok {
		return v, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.Peek(); ok {
		return v, nil
	}
	v, err := m.fn()
	if err != nil {
		return nil, err
	}
	if v != nil {
		m.value.Store(&v)
	}
	return v, nil
}

// Peek returns the cached value without running the producer. It does not
// wait for a computation in progress.
func (m *Memoized) Peek() (any, bool) {
	if p := m.value.Load(); p != nil {
		return *p, true
	}
	return nil, false
}

// Computed reports whether a value has been cached.
func (m *Memoized) Computed() bool {
	_, ok := m.Peek()
	return ok
}
