package async

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopStopped is returned when the loop was stopped before the awaited
// condition became true.
var ErrLoopStopped = errors.New("async: loop stopped")

// Job is a unit of work run by a Loop.
type Job func()

// Loop is a thread-safe FIFO queue of jobs run cooperatively by whichever
// goroutine drives it.
//
// Post may be called from any goroutine. Jobs run one at a time in the order
// they were posted; a job posted while another job runs is queued behind
// everything already waiting.
type Loop struct {
	mu      sync.Mutex
	jobs    []Job
	stopped bool
	signal  chan struct{} // buffered, size 1
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{
		jobs:   make([]Job, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Post appends a job to the back of the queue.
// Returns false if the loop has been stopped.
func (l *Loop) Post(job Job) bool {
	if job == nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return false
	}

	l.jobs = append(l.jobs, job)

	select {
	case l.signal <- struct{}{}:
	default:
	}

	return true
}

// next pops the front job without blocking.
func (l *Loop) next() (Job, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.jobs) == 0 {
		return nil, false
	}

	job := l.jobs[0]
	l.jobs[0] = nil // release the closure

	if len(l.jobs) == 1 {
		l.jobs = l.jobs[:0]
	} else {
		l.jobs = l.jobs[1:]
	}

	return job, true
}

// RunPending runs jobs until the queue is empty, including jobs posted by the
// jobs it runs. Returns the number of jobs run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		job, ok := l.next()
		if !ok {
			return n
		}
		job()
		n++
	}
}

// RunUntil runs jobs until cond reports true.
//
// cond is checked before each job. When the queue is empty and cond is still
// false, RunUntil waits for another goroutine to post a job. It returns
// ctx.Err() on cancellation and ErrLoopStopped if the loop is stopped and
// drained first.
func (l *Loop) RunUntil(ctx context.Context, cond func() bool) error {
	for {
		if cond != nil && cond() {
			return nil
		}

		if job, ok := l.next(); ok {
			job()
			continue
		}

		if l.isStopped() {
			if cond == nil {
				return nil
			}
			return ErrLoopStopped
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.signal:
		}
	}
}

// Run runs jobs until ctx is cancelled or the loop is stopped and drained.
// Returns nil when stopped, ctx.Err() on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	return l.RunUntil(ctx, nil)
}

// Stop rejects further posts and wakes any goroutine waiting in Run.
// Jobs already queued still run.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return
	}

	l.stopped = true
	close(l.signal)
}

// Len returns the number of queued jobs.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.jobs)
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}
