// Package debounce collapses bursts of calls into one trailing call.
//
// A [Debouncer] wraps a function. Every [Debouncer.Trigger] cancels the
// pending invocation and restarts the wait; only the last argument of a
// burst reaches the function once the window elapses quietly.
//
//	d := debounce.New(250*time.Millisecond, func(q string) { search(q) })
//	d.Trigger("g")
//	d.Trigger("go")   // search("go") runs 250ms after this call
//
// Independent debouncers never share a cancellation scope. Timers come from
// a [Clock], so tests can drive time with [FakeClock].
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays calls to fn until wait has passed without a new trigger.
// It is safe for concurrent use.
type Debouncer[T any] struct {
	wait  time.Duration
	fn    func(T)
	clock Clock

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	pending bool
	arg     T
}

// Option configures a Debouncer.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// New creates a debouncer for fn with the given window.
func New[T any](wait time.Duration, fn func(T), opts ...Option) *Debouncer[T] {
	o := options{clock: RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Debouncer[T]{wait: wait, fn: fn, clock: o.clock}
}

// Wait returns the debounce window.
func (d *Debouncer[T]) Wait() time.Duration { return d.wait }

// Trigger schedules fn(arg), replacing any pending call.
func (d *Debouncer[T]) Trigger(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.arg = arg
	d.pending = true
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen) })
}

// fire runs the pending call unless a newer trigger or a cancel superseded it.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	arg := d.arg
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn(arg)
}

// Cancel drops the pending call, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
}

// Flush runs the pending call immediately and reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	arg := d.arg
	d.pending = false
	d.mu.Unlock()

	d.fn(arg)
	return true
}

// Pending reports whether a call is waiting for its window to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
