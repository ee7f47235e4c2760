// Package optim searches launcher parameter grids for the best muzzle
// velocity.
package optim

import (
	"context"
	"fmt"

	"github.com/launchlab/coilsim/internal/launch"
	"github.com/launchlab/coilsim/internal/sim"
)

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Result *launch.Result
}

// GridSearch evaluates every combination of the given parameter values and
// keeps the run with the highest final velocity. Runs that error are skipped
// rather than aborting the search; the last error is reported if no
// combination succeeds.
type GridSearch struct {
	// Params names one parameter per axis; Values holds the candidate
	// values for each axis, in the same order.
	Params  []string
	Values  [][]float64
	MaxTime float64

	// Build materializes a launcher for one parameter combination.
	Build func(params map[string]float64) (*sim.Orchestrator, error)
}

func (g *GridSearch) Search(ctx context.Context) (*Candidate, error) {
	if len(g.Params) == 0 || len(g.Params) != len(g.Values) {
		return nil, fmt.Errorf("%w: parameter names and value axes must match", launch.ErrConfig)
	}
	if g.Build == nil {
		return nil, fmt.Errorf("%w: grid search needs a builder", launch.ErrConfig)
	}
	for i, axis := range g.Values {
		if len(axis) == 0 {
			return nil, fmt.Errorf("%w: no values for parameter %q", launch.ErrConfig, g.Params[i])
		}
	}

	var best *Candidate
	var lastErr error

	current := make(map[string]float64, len(g.Params))
	var walk func(depth int) error
	walk = func(depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if depth == len(g.Params) {
			params := make(map[string]float64, len(current))
			for k, v := range current {
				params[k] = v
			}

			orch, err := g.Build(params)
			if err != nil {
				lastErr = err
				return nil
			}
			result, err := orch.Run(ctx, g.MaxTime)
			if err != nil {
				lastErr = err
				return nil
			}
			if best == nil || result.FinalVelocity > best.Result.FinalVelocity {
				best = &Candidate{Params: params, Result: result}
			}
			return nil
		}
		for _, v := range g.Values[depth] {
			current[g.Params[depth]] = v
			if err := walk(depth + 1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(0); err != nil {
		return nil, err
	}
	if best == nil {
		if lastErr != nil {
			return nil, fmt.Errorf("optim: every grid point failed: %w", lastErr)
		}
		return nil, fmt.Errorf("optim: empty grid")
	}
	return best, nil
}
