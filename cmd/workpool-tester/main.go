// workpool-tester loads a pool with CPU-bound jobs and shuts it down from a
// second goroutine, printing how many jobs ran.
//
// Usage:
//
//	workpool-tester --threads N --queue Q --jobs J
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/workpool"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "workpool-tester",
		Usage: "submit summing jobs to a pool and shut it down",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "threads", Usage: "number of workers", Value: 4},
			&cli.IntFlag{Name: "queue", Usage: "queue capacity", Value: 8},
			&cli.IntFlag{Name: "jobs", Usage: "number of jobs to submit", Value: 100},
			&cli.BoolFlag{Name: "verbose", Usage: "log every job"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			level := slog.LevelInfo
			if cmd.Bool("verbose") {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
			return load(stdout, logger, cmd.Int("threads"), cmd.Int("queue"), cmd.Int("jobs"))
		},
	}
}

func load(out io.Writer, logger *slog.Logger, threads, queue, jobs int) error {
	if jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", jobs)
	}

	pool, err := workpool.New[int](threads, queue, workpool.WithLogger(logger), workpool.WithName("tester"))
	if err != nil {
		return err
	}

	var done atomic.Int64
	sum := func(id int) error {
		logger.Debug("job started", "job", id)
		total := 0
		for i := 0; i < 10000; i++ {
			total += i
		}
		logger.Debug("job finished", "job", id, "sum", total)
		done.Add(1)
		return nil
	}

	if _, err := workpool.SubmitAll(pool, sum, seq(jobs)...); err != nil {
		pool.Shutdown()
		return err
	}

	// One goroutine destroys the pool, as a server's signal handler would,
	// while another reports once every worker has exited.
	var g errgroup.Group
	g.Go(func() error {
		_, _ = fmt.Fprintln(out, "start destroying pool")
		return pool.Close()
	})
	g.Go(func() error {
		<-pool.Done()
		_, err := fmt.Fprintln(out, "pool was destroyed")
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "jobs executed: %d/%d\n", done.Load(), jobs)
	return err
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
