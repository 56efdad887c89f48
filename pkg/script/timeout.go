package script

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/facet/pkg/mesh"
)

// DefaultTimeout is the hard limit for a single evaluation.
const DefaultTimeout = 5 * time.Second

// evalResult carries one evaluation's output through a channel.
type evalResult struct {
	mesh   *mesh.Mesh
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds limit. It uses a generation counter to discard
// stale results from previous evaluations.
//
// On timeout, the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	limit time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (*mesh.Mesh, []EvalError, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("script: evaluation superseded by newer request")
		}
		return res.mesh, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("script: evaluation timed out after %s", limit)
	}
}
