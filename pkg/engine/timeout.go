package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/icosmesh/pkg/scene"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// evalResult passes evaluation results through channels.
type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// waitForResult waits for a result from ch until ctx is done. A deadline
// set by Evaluate is reported as a timeout; any other cancellation is
// returned wrapped so callers can match it with errors.Is.
//
// The evaluating goroutine may still be running when this returns; ch must
// be buffered so its send never blocks.
func waitForResult(ctx context.Context, ch <-chan evalResult) (*scene.Scene, []EvalError, error) {
	select {
	case res := <-ch:
		return res.scene, res.errors, res.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, nil, fmt.Errorf("evaluation timed out after %s: %w", EvalTimeout, ctx.Err())
		}
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
	}
}
