// workpool-server is a minimal HTTP/1.0 responder that hands every accepted
// connection to a fixed-size workpool.
//
// Usage:
//
//	workpool-server [options]
//
// Options:
//
//	--port            TCP port to listen on (default 8080)
//	--pool-size       number of workers (default 4)
//	--max-queue-size  connections that may wait for a worker (default 16)
//	--max-requests    stop after this many connections, 0 for no limit
//	--accept-rate     accepted connections per second, 0 for no limit
//	--log-level       debug, info, warn or error
//
// Every option can also be set through the WORKPOOL_* environment variable of
// the same name, e.g. WORKPOOL_POOL_SIZE. The server stops on SIGINT/SIGTERM
// or after max-requests connections, and exits once every accepted connection
// has been answered.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(run(os.Args, os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(stderr).Run(ctx, args); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func newApp(stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "workpool-server",
		Usage: "answer HTTP requests from a fixed-size worker pool",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "TCP port to listen on",
				Value:   8080,
				Sources: cli.EnvVars("WORKPOOL_PORT"),
			},
			&cli.IntFlag{
				Name:    "pool-size",
				Usage:   "number of workers",
				Value:   4,
				Sources: cli.EnvVars("WORKPOOL_POOL_SIZE"),
			},
			&cli.IntFlag{
				Name:    "max-queue-size",
				Usage:   "connections that may wait for a worker",
				Value:   16,
				Sources: cli.EnvVars("WORKPOOL_MAX_QUEUE_SIZE"),
			},
			&cli.IntFlag{
				Name:    "max-requests",
				Usage:   "stop after this many connections, 0 for no limit",
				Sources: cli.EnvVars("WORKPOOL_MAX_REQUESTS"),
			},
			&cli.FloatFlag{
				Name:    "accept-rate",
				Usage:   "accepted connections per second, 0 for no limit",
				Sources: cli.EnvVars("WORKPOOL_ACCEPT_RATE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				Sources: cli.EnvVars("WORKPOOL_LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

			return listenAndServe(ctx, settings{
				addr:        fmt.Sprintf(":%d", cmd.Int("port")),
				poolSize:    cmd.Int("pool-size"),
				queueSize:   cmd.Int("max-queue-size"),
				maxRequests: cmd.Int("max-requests"),
				acceptRate:  cmd.Float("accept-rate"),
			}, logger)
		},
	}
}
