package coil

import (
	"errors"
	"math"
	"testing"

	"github.com/launchlab/coilsim/internal/launch"
)

// Reference stage electricals: 100 turns on a 90 mm bore, 50 mm long,
// 1000 uF at 400 V. L ~ 1.6 mH, so the copper winding (~0.23 ohm) rings
// well below the ~2.53 ohm critical resistance.
func testStage(t *testing.T, resistance float64) *Stage {
	t.Helper()
	g, err := NewGeometry(100, 0.09, 0.05, resistance)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	s, err := NewStage(0, 0.1, g, 1000e-6, 400)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	return s
}

func TestNewStageValidation(t *testing.T) {
	g, _ := NewGeometry(100, 0.09, 0.05, 0.23)

	if _, err := NewStage(0, 0.1, g, 0, 400); !errors.Is(err, launch.ErrConfig) {
		t.Errorf("zero capacitance should fail with config error, got %v", err)
	}
	if _, err := NewStage(0, 0.1, g, 1000e-6, -1); !errors.Is(err, launch.ErrConfig) {
		t.Errorf("negative voltage should fail with config error, got %v", err)
	}
	if _, err := NewStage(0, 0.1, g, 1000e-6, 0); err != nil {
		t.Errorf("zero voltage is a valid dud stage, got %v", err)
	}
}

func TestStoredEnergy(t *testing.T) {
	s := testStage(t, 0.23)
	if math.Abs(s.StoredEnergy()-80.0) > 1e-9 {
		t.Errorf("0.5*C*V^2 should be 80 J, got %g", s.StoredEnergy())
	}
}

// Every damping regime must start from zero current with initial slope
// V0/L, or the discharge would inject a current step at activation.
func TestDischargeInitialConditions(t *testing.T) {
	// exact critical resistance 2*sqrt(L/C) for the reference winding
	probe, err := NewGeometry(100, 0.09, 0.05, 1.0)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	rCrit := 2 * math.Sqrt(probe.SelfInductance()/1000e-6)

	tests := []struct {
		name       string
		resistance float64
	}{
		{"underdamped", 0.23},
		{"critically damped", rCrit},
		{"overdamped", 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStage(t, tt.resistance)
			if err := s.Activate(0); err != nil {
				t.Fatalf("activate: %v", err)
			}

			if i0 := s.Current(0); i0 != 0 {
				t.Errorf("I(0) = %g, want 0", i0)
			}

			l := s.Geometry.SelfInductance()
			wantSlope := s.Voltage / l
			if got := s.CurrentDerivative(0); math.Abs(got-wantSlope)/wantSlope > 1e-9 {
				t.Errorf("dI/dt(0) = %g, want %g", got, wantSlope)
			}

			// the closed form and its stated derivative must agree
			h := 1e-8
			fd := (s.Current(h) - s.Current(0)) / h
			if math.Abs(fd-wantSlope)/wantSlope > 1e-3 {
				t.Errorf("finite-difference slope %g disagrees with V0/L %g", fd, wantSlope)
			}
		})
	}
}

func TestUnderdampedCurrentRings(t *testing.T) {
	s := testStage(t, 0.23)
	if err := s.Activate(0); err != nil {
		t.Fatalf("activate: %v", err)
	}

	// omega_d ~ 787 rad/s, so the current crosses zero near t = pi/omega_d
	sawNegative := false
	for t2 := 0.0; t2 < 0.02; t2 += 1e-5 {
		if s.Current(t2) < 0 {
			sawNegative = true
			break
		}
	}
	if !sawNegative {
		t.Error("underdamped discharge should ring through zero")
	}
}

func TestOverdampedCurrentNeverReverses(t *testing.T) {
	s := testStage(t, 10.0)
	if err := s.Activate(0); err != nil {
		t.Fatalf("activate: %v", err)
	}

	for t2 := 0.0; t2 < s.DecayHorizon(); t2 += s.DecayHorizon() / 1000 {
		if s.Current(t2) < 0 {
			t.Fatalf("overdamped current went negative at t=%g", t2)
		}
	}
}

func TestActivateTwice(t *testing.T) {
	s := testStage(t, 0.23)
	if err := s.Activate(0); err != nil {
		t.Fatalf("first activate: %v", err)
	}
	if err := s.Activate(0.1); !errors.Is(err, launch.ErrPhysics) {
		t.Errorf("second activate should fail with physics error, got %v", err)
	}
}

func TestPhaseMachineIsMonotone(t *testing.T) {
	s := testStage(t, 0.23)

	if s.Phase() != launch.StageIdle {
		t.Fatalf("new stage phase %s, want idle", s.Phase())
	}
	if s.Current(1.0) != 0 {
		t.Error("idle stage must carry no current")
	}

	if err := s.Activate(1.0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if s.Phase() != launch.StageDischarging {
		t.Fatalf("phase %s after activate, want discharging", s.Phase())
	}
	if at, ok := s.ActivationTime(); !ok || at != 1.0 {
		t.Errorf("activation time (%g, %v), want (1, true)", at, ok)
	}

	s.Tick(1.0 + s.DecayHorizon() + 1e-6)
	if s.Phase() != launch.StageDepleted {
		t.Fatalf("phase %s past decay horizon, want depleted", s.Phase())
	}
	if s.Current(2.0) != 0 {
		t.Error("depleted stage must carry no current")
	}

	// ticking again never resurrects the stage
	s.Tick(0)
	if s.Phase() != launch.StageDepleted {
		t.Error("depleted is terminal")
	}
}

func TestEnergyLedgerDepletesStage(t *testing.T) {
	s := testStage(t, 0.23)
	if err := s.Activate(0); err != nil {
		t.Fatalf("activate: %v", err)
	}

	s.Spend(s.StoredEnergy()/2, s.StoredEnergy()/2)
	if s.RemainingEnergy() != 0 {
		t.Errorf("remaining %g after spending everything, want 0", s.RemainingEnergy())
	}

	s.Tick(1e-4)
	if s.Phase() != launch.StageDepleted {
		t.Errorf("exhausted ledger should deplete the stage, phase %s", s.Phase())
	}
}

func TestNegativeWorkDoesNotInflateLedger(t *testing.T) {
	s := testStage(t, 0.23)
	if err := s.Activate(0); err != nil {
		t.Fatalf("activate: %v", err)
	}

	// braking work flows back toward the bank but never above the
	// initial charge
	s.Spend(0, -500)
	if got := s.RemainingEnergy(); got > s.StoredEnergy() {
		t.Errorf("remaining %g exceeds initial store %g", got, s.StoredEnergy())
	}
}

func TestDecayHorizonScalesWithDamping(t *testing.T) {
	slow := testStage(t, 0.05)
	fast := testStage(t, 0.5)

	if slow.DecayHorizon() <= fast.DecayHorizon() {
		t.Errorf("lighter damping should decay slower: %g vs %g",
			slow.DecayHorizon(), fast.DecayHorizon())
	}
}
