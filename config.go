package workpool

import (
	"log/slog"
	"strconv"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/workpool/metrics"
)

const (
	// MaxWorkers is the largest accepted worker count.
	MaxWorkers = 1 << 16
	// MaxCapacity is the largest accepted queue capacity.
	MaxCapacity = 1 << 24
)

// config holds Pool configuration.
type config struct {
	// Workers is the fixed number of worker goroutines.
	Workers int

	// Capacity is the maximum number of queued jobs awaiting a worker.
	Capacity int

	// Logger receives job failure and lifecycle records.
	// Default: slog.Default()
	Logger *slog.Logger

	// Name is attached to every log record as the "pool" attribute when non-empty.
	Name string

	// Metrics is the instrument provider.
	// Default: metrics.NewNoopProvider()
	Metrics metrics.Provider

	// OnFailure is called by the worker that observed a job failure.
	// It receives a *JobError. Default: nil.
	OnFailure func(error)

	// WorkerInit runs once per worker during New, before that worker starts.
	// A non-nil error aborts construction. Default: nil.
	WorkerInit func(id int) error
}

// defaultConfig centralizes default values for config.
func defaultConfig(workers, capacity int) config {
	return config{
		Workers:  workers,
		Capacity: capacity,
		Logger:   slog.Default(),
		Metrics:  metrics.NewNoopProvider(),
	}
}

// validateConfig checks pool bounds.
func validateConfig(cfg *config) error {
	if cfg.Workers < 1 || cfg.Workers > MaxWorkers {
		return errorc.With(ErrInvalidConfig, errorc.String("workers", strconv.Itoa(cfg.Workers)))
	}
	if cfg.Capacity < 1 || cfg.Capacity > MaxCapacity {
		return errorc.With(ErrInvalidConfig, errorc.String("capacity", strconv.Itoa(cfg.Capacity)))
	}
	return nil
}

// Option configures a Pool. Options are applied by New in order.
type Option func(*config) error

// WithLogger sets the logger. A nil logger is rejected.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = logger
		return nil
	}
}

// WithName sets the pool name used to tell instances apart in logs.
func WithName(name string) Option {
	return func(cfg *config) error { cfg.Name = name; return nil }
}

// WithMetrics sets the metrics provider. A nil provider is rejected.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// WithFailureHandler registers fn to receive every job failure as a *JobError.
// fn runs on the worker goroutine and delays that worker's next job; it must not
// call Shutdown.
func WithFailureHandler(fn func(error)) Option {
	return func(cfg *config) error { cfg.OnFailure = fn; return nil }
}

// WithWorkerInit registers fn to run for each worker id in [0, workers) before
// that worker starts. If fn fails, New stops and joins the workers already
// running and returns an error matching ErrWorkerStart.
func WithWorkerInit(fn func(id int) error) Option {
	return func(cfg *config) error { cfg.WorkerInit = fn; return nil }
}
