package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/launchlab/coilsim/internal/launch"
)

func TestVoltageSweep(t *testing.T) {
	sweep := VoltageSweep{
		Voltages: []float64{0, 200, 400},
		MaxTime:  0.02,
		Build: func(v float64) (*Orchestrator, error) {
			return baselineLauncher(t, v), nil
		},
	}

	points, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	for i, pt := range points {
		if pt.Err != nil {
			t.Fatalf("point %d (%gV): %v", i, pt.Voltage, pt.Err)
		}
		if pt.Voltage != sweep.Voltages[i] {
			t.Errorf("point %d voltage %g, want %g", i, pt.Voltage, sweep.Voltages[i])
		}
	}

	if points[0].Result.FinalVelocity != 0 {
		t.Error("0V run should leave the capsule at rest")
	}
	if points[2].Result.FinalVelocity <= points[0].Result.FinalVelocity {
		t.Error("charged run should outrun the uncharged one")
	}
}

func TestVoltageSweepValidation(t *testing.T) {
	empty := VoltageSweep{MaxTime: 0.01, Build: func(v float64) (*Orchestrator, error) { return nil, nil }}
	if _, err := empty.Run(context.Background()); !errors.Is(err, launch.ErrConfig) {
		t.Errorf("empty sweep: got %v", err)
	}

	noBuild := VoltageSweep{Voltages: []float64{100}, MaxTime: 0.01}
	if _, err := noBuild.Run(context.Background()); !errors.Is(err, launch.ErrConfig) {
		t.Errorf("missing builder: got %v", err)
	}
}

func TestVoltageSweepPropagatesBuildError(t *testing.T) {
	boom := errors.New("boom")
	sweep := VoltageSweep{
		Voltages: []float64{100},
		MaxTime:  0.01,
		Build:    func(v float64) (*Orchestrator, error) { return nil, boom },
	}

	points, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !errors.Is(points[0].Err, boom) {
		t.Errorf("point error %v, want boom", points[0].Err)
	}
}
