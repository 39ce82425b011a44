package workpool

// SubmitAll submits routine once per element of args, in order, through
// p.Submit. It stops at the first error and returns the number of jobs
// admitted so far together with that error.
func SubmitAll[A any](p *Pool[A], routine Routine[A], args ...A) (int, error) {
	for i, arg := range args {
		if err := p.Submit(routine, arg); err != nil {
			return i, err
		}
	}
	return len(args), nil
}
