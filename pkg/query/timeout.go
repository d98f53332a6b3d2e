package query

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/arose/molstar/pkg/loci"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation exceeds EvalTimeout.
	ErrTimeout = errors.New("query: evaluation timed out")
	// ErrSuperseded is returned for an evaluation overtaken by a newer one.
	ErrSuperseded = errors.New("query: evaluation superseded by newer request")
)

type evalResult struct {
	loci   loci.Loci
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch. Results of evaluations that
// are no longer the latest are discarded.
//
// On timeout the evaluating goroutine may still be running; the generation
// check discards its result when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (loci.Loci, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return loci.EmptyLoci, nil, ErrSuperseded
		}
		if res.loci == nil {
			res.loci = loci.EmptyLoci
		}
		return res.loci, res.errors, res.err

	case <-timer.C:
		return loci.EmptyLoci, nil, errors.Wrapf(ErrTimeout, "after %s", EvalTimeout)
	}
}
