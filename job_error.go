package workpool

import (
	"errors"
	"fmt"
)

// JobError is the failure record of a single job: the status it returned, or
// the recovered panic, tagged with the job's admission sequence number and the
// id of the worker that ran it.
type JobError struct {
	err    error
	seq    uint64
	worker int
}

func newJobError(err error, seq uint64, worker int) error {
	if err == nil {
		return nil
	}
	return &JobError{err: err, seq: seq, worker: worker}
}

func (e *JobError) Error() string { return e.err.Error() }
func (e *JobError) Unwrap() error { return e.err }

// Seq returns the admission sequence number of the failed job. The first job
// accepted by a pool has sequence number 0.
func (e *JobError) Seq() uint64 { return e.seq }

// Worker returns the id of the worker that executed the job.
func (e *JobError) Worker() int { return e.worker }

func (e *JobError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "job(seq=%d,worker=%d): %+v", e.seq, e.worker, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractJobSeq returns the job sequence number carried by err, if any.
func ExtractJobSeq(err error) (uint64, bool) {
	var je *JobError
	if errors.As(err, &je) {
		return je.seq, true
	}
	return 0, false
}
