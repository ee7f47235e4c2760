package coil

import (
	"fmt"
	"math"

	"github.com/launchlab/coilsim/internal/launch"
)

// Number of time constants of the slowest pole after which a discharging
// stage is considered fully decayed.
const decayHorizonConstants = 8.0

// Relative tolerance for classifying a discharge as critically damped.
const criticalDampingTol = 1e-9

// Stage is one capacitor-backed drive coil at a fixed position along the
// tube. Once triggered it releases its stored energy through the winding as
// an RLC discharge; the state machine is monotone and a stage is never
// re-armed within a run.
type Stage struct {
	ID          int
	Geometry    Geometry
	Position    float64 // m, fixed
	Capacitance float64 // F
	Voltage     float64 // V, initial capacitor charge

	phase       launch.StagePhase
	activatedAt float64

	// Energy ledger: resistive dissipation plus work delivered through the
	// coupling field, accumulated per tick after activation.
	dissipated  float64
	transferred float64

	// Discharge constants, fixed at construction.
	alpha  float64 // damping coefficient R/(2L)
	omega0 float64 // natural frequency 1/sqrt(LC)
	omegaD float64 // damped frequency, underdamped only
	pole1  float64 // slow pole, overdamped only
	pole2  float64 // fast pole, overdamped only
}

type dampingRegime uint8

const (
	underdamped dampingRegime = iota
	criticallyDamped
	overdamped
)

// NewStage validates the electrical parameters and precomputes the RLC
// discharge constants. Voltage zero is allowed (a stage that never fires
// usefully); capacitance must be positive.
func NewStage(id int, position float64, g Geometry, capacitance, voltage float64) (*Stage, error) {
	if capacitance <= 0 {
		return nil, fmt.Errorf("%w: stage %d capacitance must be positive, got %g", launch.ErrConfig, id, capacitance)
	}
	if voltage < 0 {
		return nil, fmt.Errorf("%w: stage %d voltage must be non-negative, got %g", launch.ErrConfig, id, voltage)
	}

	s := &Stage{
		ID:          id,
		Geometry:    g,
		Position:    position,
		Capacitance: capacitance,
		Voltage:     voltage,
	}

	l := g.SelfInductance()
	s.alpha = g.Resistance / (2 * l)
	s.omega0 = 1 / math.Sqrt(l*capacitance)

	switch s.regime() {
	case underdamped:
		s.omegaD = math.Sqrt(s.omega0*s.omega0 - s.alpha*s.alpha)
	case overdamped:
		root := math.Sqrt(s.alpha*s.alpha - s.omega0*s.omega0)
		s.pole1 = s.alpha - root
		s.pole2 = s.alpha + root
	}

	return s, nil
}

func (s *Stage) regime() dampingRegime {
	if math.Abs(s.alpha-s.omega0) <= criticalDampingTol*s.omega0 {
		return criticallyDamped
	}
	if s.alpha < s.omega0 {
		return underdamped
	}
	return overdamped
}

// Phase returns the current discharge state.
func (s *Stage) Phase() launch.StagePhase { return s.phase }

// ActivationTime returns when the stage was triggered; ok is false while the
// stage is still idle.
func (s *Stage) ActivationTime() (t float64, ok bool) {
	if s.phase == launch.StageIdle {
		return 0, false
	}
	return s.activatedAt, true
}

// StoredEnergy returns the initial capacitor energy 0.5 * C * V^2.
func (s *Stage) StoredEnergy() float64 {
	return 0.5 * s.Capacitance * s.Voltage * s.Voltage
}

// RemainingEnergy returns the capacitor energy not yet accounted for by the
// ledger, clamped at zero.
func (s *Stage) RemainingEnergy() float64 {
	rem := s.StoredEnergy() - s.dissipated - math.Max(0, s.transferred)
	if rem < 0 {
		return 0
	}
	return rem
}

// Activate triggers the discharge at simulation time now. Only an idle stage
// can be activated; the transition is irreversible.
func (s *Stage) Activate(now float64) error {
	if s.phase != launch.StageIdle {
		return fmt.Errorf("%w: stage %d activated twice (phase %s)", launch.ErrPhysics, s.ID, s.phase)
	}
	s.phase = launch.StageDischarging
	s.activatedAt = now
	return nil
}

// DecayHorizon returns the elapsed time after activation beyond which the
// discharge current is treated as zero.
func (s *Stage) DecayHorizon() float64 {
	pole := s.alpha
	if s.regime() == overdamped {
		pole = s.pole1
	}
	return decayHorizonConstants / pole
}

// Tick advances the state machine to simulation time now, retiring a
// discharging stage once its decay horizon has passed or its energy ledger
// is exhausted.
func (s *Stage) Tick(now float64) {
	if s.phase != launch.StageDischarging {
		return
	}
	if now-s.activatedAt > s.DecayHorizon() || s.RemainingEnergy() == 0 {
		s.phase = launch.StageDepleted
	}
}

// Spend records energy leaving the capacitor bank during one tick:
// resistive dissipation and signed work delivered to the capsule through
// the coupling field.
func (s *Stage) Spend(dissipated, work float64) {
	s.dissipated += dissipated
	s.transferred += work
}

// Current returns the instantaneous discharge current at simulation time
// now. All three damping regimes satisfy I(0) = 0 and dI/dt(0) = V0/L.
func (s *Stage) Current(now float64) float64 {
	if s.phase != launch.StageDischarging || now < s.activatedAt {
		return 0
	}
	t := now - s.activatedAt
	l := s.Geometry.SelfInductance()

	switch s.regime() {
	case underdamped:
		return (s.Voltage / (s.omegaD * l)) * math.Exp(-s.alpha*t) * math.Sin(s.omegaD*t)
	case criticallyDamped:
		return (s.Voltage / l) * t * math.Exp(-s.alpha*t)
	default:
		return (s.Voltage / l) * (math.Exp(-s.pole1*t) - math.Exp(-s.pole2*t)) / (s.pole2 - s.pole1)
	}
}

// CurrentDerivative returns dI/dt at simulation time now, used for the
// induced-EMF calculation.
func (s *Stage) CurrentDerivative(now float64) float64 {
	if s.phase != launch.StageDischarging || now < s.activatedAt {
		return 0
	}
	t := now - s.activatedAt
	l := s.Geometry.SelfInductance()

	switch s.regime() {
	case underdamped:
		amp := s.Voltage / (s.omegaD * l)
		return amp * math.Exp(-s.alpha*t) * (s.omegaD*math.Cos(s.omegaD*t) - s.alpha*math.Sin(s.omegaD*t))
	case criticallyDamped:
		return (s.Voltage / l) * math.Exp(-s.alpha*t) * (1 - s.alpha*t)
	default:
		return (s.Voltage / l) * (s.pole2*math.Exp(-s.pole2*t) - s.pole1*math.Exp(-s.pole1*t)) / (s.pole2 - s.pole1)
	}
}
