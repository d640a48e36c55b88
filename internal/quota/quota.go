// Package quota bounds the number of external search calls a run may issue.
package quota

// Counter tracks the remaining permitted external calls for one run. It is
// a plain value threaded through the processor; there is no shared global.
// The count never goes below zero.
type Counter struct {
	limit     int
	remaining int
	consumed  int
}

// NewCounter creates a counter permitting at most remaining calls. Negative
// values are clamped to zero.
func NewCounter(remaining int) *Counter {
	if remaining < 0 {
		remaining = 0
	}
	return &Counter{limit: remaining, remaining: remaining}
}

// Remaining returns the calls still permitted.
func (c *Counter) Remaining() int { return c.remaining }

// Consumed returns the calls used so far.
func (c *Counter) Consumed() int { return c.consumed }

// Exhausted reports whether no further calls are permitted.
func (c *Counter) Exhausted() bool { return c.remaining == 0 }

// Consume uses one call from the budget. It reports false, without going
// negative, when the budget was already exhausted.
func (c *Counter) Consume() bool {
	if c.remaining == 0 {
		return false
	}
	c.remaining--
	c.consumed++
	return true
}
