package workpool

import (
	"log/slog"
	"time"
)

// outcome is what a worker reports about its previous job when asking for the next one.
type outcome uint8

const (
	outcomeNone outcome = iota
	outcomeOK
	outcomeFailed
)

// worker is one of the pool's long-lived goroutines. It runs one job at a time,
// to completion, and never shares a job with another worker.
type worker[A any] struct {
	id   int
	pool *Pool[A]
	log  *slog.Logger
}

func newWorker[A any](id int, p *Pool[A]) *worker[A] {
	return &worker[A]{id: id, pool: p, log: p.log.With("worker", id)}
}

// run loops Idle -> Running -> Idle until the pool terminates with an empty queue.
func (w *worker[A]) run() {
	defer w.pool.wg.Done()

	var (
		cur    job[A]
		normal bool
	)
	defer func() {
		if !normal {
			w.abandon(cur)
		}
	}()

	last := outcomeNone
	for {
		j, ok := w.pool.next(last)
		if !ok {
			normal = true
			return
		}
		cur = j
		last = w.execute(j)
	}
}

// abandon runs when the worker goroutine unwinds out of a job without
// returning, which recover cannot stop (runtime.Goexit). It settles j as
// failed and starts a replacement worker with the same id before anything
// else can observe the missing slot.
func (w *worker[A]) abandon(j job[A]) {
	p := w.pool

	p.mu.Lock()
	p.settle(outcomeFailed)
	p.wg.Add(1)
	p.mu.Unlock()
	go newWorker(w.id, p).run()

	err := newJobError(ErrJobExited, j.seq, w.id)
	w.log.Error(Namespace+": job exited worker goroutine, replacing worker", "seq", j.seq, "error", err)
	w.report(err)
}

// execute runs j and records its status. Failures never leave this method.
// The instruments are updated even when the routine never returns.
func (w *worker[A]) execute(j job[A]) (o outcome) {
	ins := &w.pool.ins

	start := time.Now()
	o = outcomeFailed
	defer func() {
		ins.duration.Record(time.Since(start).Seconds())
		ins.busy.Add(-1)
		ins.completed.Add(1)
		if o == outcomeFailed {
			ins.failed.Add(1)
		}
	}()

	stack, err := j.run()
	if err == nil {
		return outcomeOK
	}

	err = newJobError(err, j.seq, w.id)
	if stack != nil {
		w.log.Error(Namespace+": job panicked", "seq", j.seq, "error", err, "stack", string(stack))
	} else {
		w.log.Warn(Namespace+": job failed", "seq", j.seq, "error", err)
	}
	w.report(err)
	return outcomeFailed
}

// report hands err to the failure handler, containing any panic it raises.
func (w *worker[A]) report(err error) {
	fn := w.pool.cfg.OnFailure
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.log.Error(Namespace+": failure handler panicked", "panic", r)
		}
	}()
	fn(err)
}
