package engine

import "sync"

// DefaultMaxDepth is the nested dispatch limit of a store created without
// WithMaxDepth.
const DefaultMaxDepth = 1000

// depthLimiter counts the Dispatch calls currently in progress on a store.
//
// Middlewares and thunks may dispatch while handling an action. Two stages
// that keep answering each other's actions would recurse until the stack
// overflows; the limiter turns that into a DispatchError instead.
type depthLimiter struct {
	mu      sync.Mutex
	max     int
	current int
}

func newDepthLimiter(max int) *depthLimiter {
	return &depthLimiter{max: max}
}

// enter reserves one level. It fails without reserving when the limit is
// already reached.
func (d *depthLimiter) enter(actionType any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current >= d.max {
		return newDepthExceededError(actionType, d.max)
	}
	d.current++
	return nil
}

func (d *depthLimiter) leave() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current > 0 {
		d.current--
	}
}

// Current returns the number of dispatches in progress.
func (d *depthLimiter) Current() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Max returns the limit.
func (d *depthLimiter) Max() int {
	return d.max
}
