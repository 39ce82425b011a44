package workpool

import "errors"

const Namespace = "workpool"

var (
	// ErrInvalidConfig is returned by New when the worker count, the queue capacity
	// or an option value is out of range. No worker is started in that case.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	// ErrWorkerStart is returned by New when a worker fails to initialize.
	// Workers started before the failure are stopped and joined first.
	ErrWorkerStart = errors.New(Namespace + ": worker start failed")
	ErrClosed      = errors.New(Namespace + ": pool is closed")
	ErrNilRoutine  = errors.New(Namespace + ": routine cannot be nil")
	ErrJobPanicked = errors.New(Namespace + ": job execution panicked")
	// ErrJobExited is reported for a job whose routine ended its goroutine
	// with runtime.Goexit. The worker running it is replaced.
	ErrJobExited  = errors.New(Namespace + ": job exited its worker goroutine")
	ErrNilContext = errors.New(Namespace + ": nil context")
)
