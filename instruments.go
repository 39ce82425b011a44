package workpool

import "github.com/ygrebnov/workpool/metrics"

// Instrument names recorded by a Pool.
const (
	MetricJobsSubmitted  = "jobs_submitted"
	MetricJobsRejected   = "jobs_rejected"
	MetricJobsCompleted  = "jobs_completed"
	MetricJobsFailed     = "jobs_failed"
	MetricQueueDepth     = "queue_depth"
	MetricWorkersBusy    = "workers_busy"
	MetricJobDuration    = "job_duration_seconds"
	MetricSubmitWaitTime = "submit_wait_seconds"
)

type instruments struct {
	submitted  metrics.Counter
	rejected   metrics.Counter
	completed  metrics.Counter
	failed     metrics.Counter
	depth      metrics.UpDownCounter
	busy       metrics.UpDownCounter
	duration   metrics.Histogram
	submitWait metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		submitted: p.Counter(MetricJobsSubmitted,
			metrics.WithDescription("jobs admitted to the queue"), metrics.WithUnit("1")),
		rejected: p.Counter(MetricJobsRejected,
			metrics.WithDescription("submissions refused because the pool was closed"), metrics.WithUnit("1")),
		completed: p.Counter(MetricJobsCompleted,
			metrics.WithDescription("jobs that finished executing, failed or not"), metrics.WithUnit("1")),
		failed: p.Counter(MetricJobsFailed,
			metrics.WithDescription("jobs that returned an error or panicked"), metrics.WithUnit("1")),
		depth: p.UpDownCounter(MetricQueueDepth,
			metrics.WithDescription("jobs waiting for a worker"), metrics.WithUnit("1")),
		busy: p.UpDownCounter(MetricWorkersBusy,
			metrics.WithDescription("workers executing a job"), metrics.WithUnit("1")),
		duration: p.Histogram(MetricJobDuration,
			metrics.WithDescription("job execution time"), metrics.WithUnit("s")),
		submitWait: p.Histogram(MetricSubmitWaitTime,
			metrics.WithDescription("time a submitter spent blocked on a full queue"), metrics.WithUnit("s")),
	}
}
