// Package workpool provides a fixed-size worker pool that executes submitted
// jobs from a bounded FIFO queue.
//
// It is meant for servers that hand each accepted connection to a pool instead
// of starting one goroutine per connection: the pool bounds both the number of
// jobs running at once (the worker count) and the number waiting (the queue
// capacity), and pushes back on the submitter when both are exhausted.
//
// Constructor
//   - New[A](workers, capacity, opts...): validates the bounds, starts every
//     worker and returns a running pool. Construction either fully succeeds or
//     leaves nothing running.
//
// Submission
//   - Submit: blocks while the queue is full. The wait is unbounded on purpose;
//     it is the backpressure that keeps a saturated server from accepting more
//     work than it can queue.
//   - SubmitContext: like Submit, with the wait bounded by a context.
//   - TrySubmit: never blocks.
//   - All three return ErrClosed once shutdown has begun.
//
// Jobs are fire-and-forget. A Routine's returned error is its status: the pool
// counts it, logs it and passes it to the handler set with WithFailureHandler,
// and otherwise ignores it. A panicking routine is recovered the same way and
// never takes its worker down.
//
// Shutdown
// Shutdown closes admission, waits until every queued job has been picked up,
// stops the idle workers and joins all of them. Every job accepted before
// shutdown began has run by the time Shutdown returns. Shutdown is idempotent
// and safe to call concurrently. It must not be called from inside a job, and a
// job must not Submit to its own pool when that could block, since both would
// wait on the worker running them.
//
// Defaults
//   - Logger: slog.Default()
//   - Metrics: metrics.NewNoopProvider()
//   - Workers are bounded by MaxWorkers, capacity by MaxCapacity.
package workpool
