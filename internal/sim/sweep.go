package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/launchlab/coilsim/internal/launch"
)

// SweepPoint is the outcome of one run within a sweep.
type SweepPoint struct {
	Voltage float64
	Result  *launch.Result
	Err     error
}

// VoltageSweep runs the same launcher at a series of charge voltages, one
// goroutine per voltage. Build must return a fresh orchestrator each call so
// every run owns its state independently.
type VoltageSweep struct {
	Voltages []float64
	MaxTime  float64
	Build    func(voltage float64) (*Orchestrator, error)
}

func (s *VoltageSweep) Run(ctx context.Context) ([]SweepPoint, error) {
	if len(s.Voltages) == 0 {
		return nil, fmt.Errorf("%w: sweep needs at least one voltage", launch.ErrConfig)
	}
	if s.Build == nil {
		return nil, fmt.Errorf("%w: sweep needs a builder", launch.ErrConfig)
	}

	points := make([]SweepPoint, len(s.Voltages))

	var wg sync.WaitGroup
	for i, v := range s.Voltages {
		wg.Add(1)
		go func(idx int, voltage float64) {
			defer wg.Done()

			points[idx].Voltage = voltage
			orch, err := s.Build(voltage)
			if err != nil {
				points[idx].Err = err
				return
			}
			points[idx].Result, points[idx].Err = orch.Run(ctx, s.MaxTime)
		}(i, v)
	}
	wg.Wait()

	return points, nil
}
