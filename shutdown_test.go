package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestShutdown_DrainsQueuedJobs(t *testing.T) {
	var processed atomic.Int32

	p, err := New[int](1, 100, quiet())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(Do(func(int) {
			time.Sleep(10 * time.Millisecond)
			processed.Add(1)
		}), i))
	}

	p.Shutdown()
	require.Equal(t, int32(10), processed.Load())
}

// Shutdown issued from another goroutine while jobs are still queued returns
// only after all of them ran; a submit after admission closed sees ErrClosed.
func TestShutdown_ConcurrentWithQueuedJobs(t *testing.T) {
	var processed atomic.Int32

	p, err := New[int](1, 10, quiet())
	require.NoError(t, err)

	b := newBlocker()
	require.NoError(t, p.Submit(b.run, 0))
	<-b.started
	for i := 1; i < 10; i++ {
		require.NoError(t, p.Submit(Do(func(int) {
			time.Sleep(5 * time.Millisecond)
			processed.Add(1)
		}), i))
	}

	returned := make(chan struct{})
	go func() {
		p.Shutdown()
		close(returned)
	}()

	require.Eventually(t, func() bool { return !p.Accepting() }, time.Second, time.Millisecond)

	var late atomic.Bool
	err = p.Submit(Do(func(int) { late.Store(true) }), 11)
	require.ErrorIs(t, err, ErrClosed)

	select {
	case <-returned:
		t.Fatal("Shutdown returned while a job was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(b.release)
	<-returned

	require.Equal(t, int32(9), processed.Load())
	require.False(t, late.Load())

	s := p.Stats()
	require.Equal(t, uint64(10), s.Completed)
	require.Equal(t, uint64(1), s.Rejected)
}

// Every job admitted while shutdown races with submitters runs exactly once;
// every refused one never runs.
func TestShutdown_NoLossNoDuplication(t *testing.T) {
	const (
		submitters = 8
		perSubmit  = 200
	)

	var (
		mu       sync.Mutex
		executed = make(map[int]int)
		accepted = make(map[int]bool)
	)
	record := Do(func(id int) {
		mu.Lock()
		executed[id]++
		mu.Unlock()
	})

	p, err := New[int](3, 4, quiet())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(submitters)
	for s := 0; s < submitters; s++ {
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perSubmit; i++ {
				id := base*perSubmit + i
				err := p.Submit(record, id)
				if err != nil {
					require.ErrorIs(t, err, ErrClosed)
					continue
				}
				mu.Lock()
				accepted[id] = true
				mu.Unlock()
			}
		}(s)
	}

	time.Sleep(2 * time.Millisecond)
	p.Shutdown()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, len(accepted), len(executed))
	for id := range accepted {
		require.Equal(t, 1, executed[id], "job %d", id)
	}
	s := p.Stats()
	require.Equal(t, uint64(len(accepted)), s.Submitted)
	require.Equal(t, uint64(submitters*perSubmit-len(accepted)), s.Rejected)
}

func TestShutdown_WakesBlockedSubmitters(t *testing.T) {
	p, err := New[int](1, 1, quiet())
	require.NoError(t, err)

	b := newBlocker()
	require.NoError(t, p.Submit(b.run, 0))
	<-b.started
	require.NoError(t, p.Submit(Do(func(int) {}), 1))

	var ran atomic.Int32
	const blocked = 3
	results := make(chan error, blocked)
	for i := 0; i < blocked; i++ {
		go func() { results <- p.Submit(Do(func(int) { ran.Add(1) }), 2) }()
	}
	time.Sleep(20 * time.Millisecond)

	returned := make(chan struct{})
	go func() {
		p.Shutdown()
		close(returned)
	}()

	for i := 0; i < blocked; i++ {
		select {
		case err := <-results:
			require.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("blocked submitter not released by shutdown")
		}
	}

	close(b.release)
	<-returned
	require.Zero(t, ran.Load())
}

func TestShutdown_Idempotent(t *testing.T) {
	p, err := New[int](2, 2, quiet())
	require.NoError(t, err)

	require.NotPanics(t, p.Shutdown)
	require.NotPanics(t, p.Shutdown)
	require.NoError(t, p.Close())
	require.NoError(t, p.ShutdownContext(context.Background()))

	// Concurrent callers all return once the pool stopped.
	p2, err := New[int](2, 2, quiet())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, p2.Submit(Do(func(int) { time.Sleep(5 * time.Millisecond) }), i))
	}

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()
			p2.Shutdown()
			require.True(t, p2.Stats().Stopped)
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(4), p2.Stats().Completed)
}

func TestShutdownContext_Timeout(t *testing.T) {
	p, err := New[int](1, 4, quiet())
	require.NoError(t, err)

	b := newBlocker()
	require.NoError(t, p.Submit(b.run, 0))
	<-b.started

	var ran atomic.Bool
	require.NoError(t, p.Submit(Do(func(int) { ran.Store(true) }), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, p.ShutdownContext(ctx), context.DeadlineExceeded)

	require.False(t, p.Accepting())
	require.ErrorIs(t, p.Submit(Do(func(int) {}), 2), ErrClosed)

	close(b.release)
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("pool did not finish draining in the background")
	}
	require.True(t, ran.Load())
	require.True(t, p.Stats().Stopped)

	//nolint:staticcheck // nil context is the case under test
	require.ErrorIs(t, p.ShutdownContext(nil), ErrNilContext)
}

func TestNew_WorkerStartFailureUnwinds(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("no buffers")
	var inits []int
	p, err := New[int](4, 2, quiet(), WithWorkerInit(func(id int) error {
		inits = append(inits, id)
		if id == 2 {
			return boom
		}
		return nil
	}))

	require.Nil(t, p)
	require.ErrorIs(t, err, ErrWorkerStart)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []int{0, 1, 2}, inits)
}
