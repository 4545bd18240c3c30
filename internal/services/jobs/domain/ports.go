package domain

import "context"

// EnqueuePort accepts change events for analysis. Enqueue returns a capacity
// error when the queue is full; callers surface that as backpressure
type EnqueuePort interface {
	Enqueue(ctx context.Context, ev Event) (jobID string, err error)
}

// RunnerPort drives the worker pool
type RunnerPort interface {
	// Run blocks processing queued events until ctx is canceled
	Run(ctx context.Context) error
}
