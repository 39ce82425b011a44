package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ygrebnov/workpool"
	"github.com/ygrebnov/workpool/metrics"
)

type settings struct {
	addr        string
	poolSize    int
	queueSize   int
	maxRequests int
	acceptRate  float64
}

type server struct {
	ln          net.Listener
	pool        *workpool.Pool[net.Conn]
	limiter     *rate.Limiter
	maxRequests int
	metrics     *metrics.BasicProvider
	log         *slog.Logger
}

func listenAndServe(ctx context.Context, st settings, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", st.addr)
	if err != nil {
		return err
	}
	s, err := newServer(ln, st, logger)
	if err != nil {
		_ = ln.Close()
		return err
	}
	return s.serve(ctx)
}

// newServer builds the pool for ln. The pool is created before the first
// accept so a bad pool size fails fast.
func newServer(ln net.Listener, st settings, logger *slog.Logger) (*server, error) {
	if st.maxRequests < 0 {
		return nil, fmt.Errorf("max-requests must not be negative, got %d", st.maxRequests)
	}

	provider := metrics.NewBasicProvider()
	pool, err := workpool.New[net.Conn](st.poolSize, st.queueSize,
		workpool.WithLogger(logger),
		workpool.WithName("http"),
		workpool.WithMetrics(provider),
	)
	if err != nil {
		return nil, err
	}

	s := &server{
		ln:          ln,
		pool:        pool,
		maxRequests: st.maxRequests,
		metrics:     provider,
		log:         logger,
	}
	if st.acceptRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(st.acceptRate), 1)
	}
	return s, nil
}

// serve accepts until ctx ends, the request budget is spent or the listener
// fails, then shuts the pool down. It returns once every accepted connection
// has been handled.
func (s *server) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.acceptLoop(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		// unblocks Accept
		_ = s.ln.Close()
		return nil
	})

	s.log.Info("listening", "addr", s.ln.Addr().String(), "workers", s.pool.Workers(), "queue", s.pool.Cap())
	err := g.Wait()

	s.pool.Shutdown()
	st := s.pool.Stats()
	s.log.Info("stopped",
		"served", st.Completed,
		"failed", st.Failed,
		"rejected", st.Rejected,
		"max_submit_wait_seconds", s.maxSubmitWait(),
	)
	return err
}

func (s *server) acceptLoop(ctx context.Context) error {
	for served := 0; s.maxRequests == 0 || served < s.maxRequests; served++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		// Submit blocks while every worker is busy and the queue is full.
		if err := s.pool.Submit(handleConn, conn); err != nil {
			_ = conn.Close()
			if errors.Is(err, workpool.ErrClosed) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *server) maxSubmitWait() float64 {
	h, ok := s.metrics.HistogramSnapshot(workpool.MetricSubmitWaitTime)
	if !ok {
		return 0
	}
	return h.Max
}
