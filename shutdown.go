package workpool

import "context"

// Shutdown stops the pool gracefully and blocks until it has stopped.
//
// The sequence runs exactly once, whichever of Shutdown, ShutdownContext or
// Close gets there first:
//  1. stop admitting: Accepting turns false and blocked submitters return ErrClosed
//  2. wait on drained until every queued job has been taken by a worker
//  3. set terminate and wake every idle worker
//  4. join the workers, which finish the jobs they are running
//  5. release the queue storage, mark the pool stopped and close Done
//
// Later and concurrent calls wait for the same completion and return.
// Shutdown must not be called from inside a job: the job's worker would wait
// for itself.
func (p *Pool[A]) Shutdown() {
	if p.begin() {
		p.finish()
	}
	<-p.done
}

// ShutdownContext starts the same sequence as Shutdown but returns ctx.Err()
// if ctx ends before the pool has stopped. Admission is closed before it
// returns either way; the remaining jobs keep draining in the background and
// Done reports when they are through.
func (p *Pool[A]) ShutdownContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if p.begin() {
		go p.finish()
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is Shutdown for io.Closer. It always returns nil.
func (p *Pool[A]) Close() error {
	p.Shutdown()
	return nil
}

// begin performs step 1. It returns false if shutdown had already begun.
func (p *Pool[A]) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.accepting {
		return false
	}
	p.accepting = false
	p.draining = true
	p.notFull.Broadcast()
	p.log.Debug(Namespace+": shutting down", "queued", p.queue.Len())
	return true
}

// finish performs steps 2 to 5.
func (p *Pool[A]) finish() {
	p.mu.Lock()
	for !p.queue.Empty() {
		p.drained.Wait()
	}
	p.draining = false
	p.terminate = true
	p.notEmpty.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.queue = nil
	p.stopped = true
	stats := p.statsLocked()
	p.mu.Unlock()

	p.log.Debug(Namespace+": stopped", "completed", stats.Completed, "failed", stats.Failed, "rejected", stats.Rejected)
	close(p.done)
}
