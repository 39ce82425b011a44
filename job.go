package workpool

import (
	"fmt"
	"runtime/debug"
)

// Routine is the unit of work a Pool executes. The argument is opaque to the
// pool: it is handed to the routine unchanged and never inspected. The routine
// owns any resource captured in arg (a connection it must close, for example).
//
// The returned error is the job status. The pool records it and reports it
// out of band but does not retry the job or act on it in any other way.
type Routine[A any] func(arg A) error

// Do adapts a routine that reports no status.
func Do[A any](fn func(A)) Routine[A] {
	return func(arg A) error { fn(arg); return nil }
}

// job pairs a routine with its argument. It is immutable once admitted.
// seq is the admission order assigned under the pool lock.
type job[A any] struct {
	routine Routine[A]
	arg     A
	seq     uint64
}

// run executes the job on the calling goroutine and converts a panic into an
// error wrapping ErrJobPanicked. stack is non-nil only for panics.
func (j job[A]) run() (stack []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
			stack = debug.Stack()
		}
	}()
	return nil, j.routine(j.arg)
}
