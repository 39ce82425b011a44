package workpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ygrebnov/workpool/ring"
)

// Pool runs jobs on a fixed set of workers fed by a bounded FIFO queue.
//
// All shared state (the queue, the lifecycle flags and the counters) lives
// behind a single mutex. Three condition variables hang off that mutex:
// notFull wakes a blocked submitter, notEmpty wakes an idle worker, drained
// wakes the shutdown sequence once the last queued job has been taken.
//
// A Pool is created running by New and is stopped exactly once by Shutdown,
// ShutdownContext or Close. Methods are safe for concurrent use.
type Pool[A any] struct {
	// noCopy prevents accidental copying of the pool.
	//go:nocopy
	nc noCopy

	cfg config
	log *slog.Logger
	ins instruments

	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	drained  *sync.Cond

	queue *ring.Buffer[job[A]]
	seq   uint64

	accepting bool // cleared the moment shutdown begins
	draining  bool // shutdown is waiting for the queue to empty
	terminate bool // idle workers must exit
	stopped   bool // every worker has exited

	busy      int
	submitted uint64
	rejected  uint64
	completed uint64
	failed    uint64

	wg   sync.WaitGroup
	done chan struct{}
}

var _ io.Closer = (*Pool[any])(nil)

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a Pool with the given number of workers and queue capacity and
// starts the workers.
//
// workers must be in [1, MaxWorkers] and capacity in [1, MaxCapacity];
// otherwise the returned error matches ErrInvalidConfig and nothing is started.
// If a worker fails to start (see WithWorkerInit), the workers already running
// are stopped and joined before New returns an error matching ErrWorkerStart.
func New[A any](workers, capacity int, opts ...Option) (*Pool[A], error) {
	cfg := defaultConfig(workers, capacity)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	p := newPool[A](&cfg)
	if err := p.start(); err != nil {
		return nil, err
	}

	p.log.Debug(Namespace+": started", "workers", cfg.Workers, "capacity", cfg.Capacity)
	return p, nil
}

func newPool[A any](cfg *config) *Pool[A] {
	log := cfg.Logger
	if cfg.Name != "" {
		log = log.With("pool", cfg.Name)
	}

	p := &Pool[A]{
		cfg:       *cfg,
		log:       log,
		ins:       newInstruments(cfg.Metrics),
		queue:     ring.New[job[A]](cfg.Capacity),
		accepting: true,
		done:      make(chan struct{}),
	}
	p.notFull = sync.NewCond(&p.mu)
	p.notEmpty = sync.NewCond(&p.mu)
	p.drained = sync.NewCond(&p.mu)
	return p
}

// start launches every worker. Any failure runs the regular shutdown sequence
// so the workers started so far are stopped and joined before returning.
func (p *Pool[A]) start() (err error) {
	defer func() {
		if err != nil {
			p.Shutdown()
		}
	}()

	for id := 0; id < p.cfg.Workers; id++ {
		if p.cfg.WorkerInit != nil {
			if ierr := p.cfg.WorkerInit(id); ierr != nil {
				return fmt.Errorf("%w: worker %d: %w", ErrWorkerStart, id, ierr)
			}
		}
		w := newWorker(id, p)
		p.wg.Add(1)
		go w.run()
	}
	return nil
}

// Submit enqueues routine(arg) for execution.
//
// Submit blocks while the queue is full and the pool is accepting. The wait is
// not bounded: a pool whose workers never free a slot keeps the caller parked.
// This is the pool's backpressure, not a fault; use SubmitContext to bound it.
//
// Once shutdown has begun Submit returns ErrClosed, including for callers that
// were blocked at that moment. A job for which Submit returned nil is always
// executed before Shutdown returns.
func (p *Pool[A]) Submit(routine Routine[A], arg A) error {
	return p.enqueue(nil, routine, arg)
}

// SubmitContext is Submit with the wait for a free slot bounded by ctx.
//
// If ctx ends while the queue is still full, SubmitContext returns ctx.Err() and
// the job is not enqueued. ctx only bounds admission; it is not passed to the
// routine and does not cancel an admitted job.
func (p *Pool[A]) SubmitContext(ctx context.Context, routine Routine[A], arg A) error {
	if ctx == nil {
		return ErrNilContext
	}
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			p.mu.Lock()
			p.notFull.Broadcast()
			p.mu.Unlock()
		})
		defer stop()
	}
	return p.enqueue(ctx, routine, arg)
}

// TrySubmit enqueues routine(arg) only if a slot is free right now.
//
// Returns:
//   - (true, nil) if the job was enqueued.
//   - (false, nil) if the queue is full.
//   - (false, ErrClosed) if shutdown has begun.
func (p *Pool[A]) TrySubmit(routine Routine[A], arg A) (bool, error) {
	if routine == nil {
		return false, ErrNilRoutine
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.accepting {
		p.reject()
		return false, ErrClosed
	}
	if p.queue.Full() {
		return false, nil
	}
	p.push(routine, arg)
	return true, nil
}

// enqueue admits a job under the lock, waiting on notFull while the queue is
// full. A nil ctx waits without bound.
func (p *Pool[A]) enqueue(ctx context.Context, routine Routine[A], arg A) error {
	if routine == nil {
		return ErrNilRoutine
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accepting && p.queue.Full() {
		start := time.Now()
		for p.accepting && p.queue.Full() {
			if ctx != nil && ctx.Err() != nil {
				p.ins.submitWait.Record(time.Since(start).Seconds())
				return ctx.Err()
			}
			p.notFull.Wait()
		}
		p.ins.submitWait.Record(time.Since(start).Seconds())
	}

	if !p.accepting {
		p.reject()
		return ErrClosed
	}
	p.push(routine, arg)
	return nil
}

// push appends a job and wakes one idle worker. Caller holds p.mu and has
// checked that the pool is accepting and the queue has room.
func (p *Pool[A]) push(routine Routine[A], arg A) {
	p.queue.Push(job[A]{routine: routine, arg: arg, seq: p.seq})
	p.seq++
	p.submitted++
	p.ins.submitted.Add(1)
	p.ins.depth.Add(1)
	p.notEmpty.Signal()
}

// reject records a refused submission. Caller holds p.mu.
func (p *Pool[A]) reject() {
	p.rejected++
	p.ins.rejected.Add(1)
}

// next settles the outcome of the worker's previous job and blocks until a job
// is available or the pool terminates. ok is false when the worker must exit.
func (p *Pool[A]) next(prev outcome) (j job[A], ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.settle(prev)

	for p.queue.Empty() && !p.terminate {
		p.notEmpty.Wait()
	}

	j, ok = p.queue.Pop()
	if !ok {
		return j, false
	}

	p.busy++
	p.ins.depth.Add(-1)
	p.ins.busy.Add(1)
	p.notFull.Signal()
	if p.draining && p.queue.Empty() {
		p.drained.Broadcast()
	}
	return j, true
}

// settle folds a finished job into the counters. Caller holds p.mu.
func (p *Pool[A]) settle(o outcome) {
	if o == outcomeNone {
		return
	}
	p.busy--
	p.completed++
	if o == outcomeFailed {
		p.failed++
	}
}

// Stats is a point-in-time view of a Pool.
type Stats struct {
	Workers   int
	Capacity  int
	Queued    int
	Busy      int
	Submitted uint64
	Rejected  uint64
	Completed uint64
	Failed    uint64
	Accepting bool
	Stopped   bool
}

// Stats returns a consistent snapshot of the pool counters.
func (p *Pool[A]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statsLocked()
}

func (p *Pool[A]) statsLocked() Stats {
	return Stats{
		Workers:   p.cfg.Workers,
		Capacity:  p.cfg.Capacity,
		Queued:    p.queueLen(),
		Busy:      p.busy,
		Submitted: p.submitted,
		Rejected:  p.rejected,
		Completed: p.completed,
		Failed:    p.failed,
		Accepting: p.accepting,
		Stopped:   p.stopped,
	}
}

// Workers returns the fixed worker count.
func (p *Pool[A]) Workers() int { return p.cfg.Workers }

// Cap returns the queue capacity.
func (p *Pool[A]) Cap() int { return p.cfg.Capacity }

// Len returns the number of jobs waiting for a worker.
func (p *Pool[A]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queueLen()
}

func (p *Pool[A]) queueLen() int {
	if p.queue == nil {
		return 0
	}
	return p.queue.Len()
}

// Accepting reports whether Submit can still admit jobs.
func (p *Pool[A]) Accepting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accepting
}

// Done returns a channel that is closed once every worker has exited.
func (p *Pool[A]) Done() <-chan struct{} { return p.done }
