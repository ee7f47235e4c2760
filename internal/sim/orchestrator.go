package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/launchlab/coilsim/internal/coil"
	"github.com/launchlab/coilsim/internal/em"
	"github.com/launchlab/coilsim/internal/kinematics"
	"github.com/launchlab/coilsim/internal/launch"
	"github.com/launchlab/coilsim/internal/trigger"
)

// Orchestrator owns one simulation run: the capsule, the ordered stages and
// the fixed-timestep loop that sequences activation, currents, forces,
// kinematics and recording. All mutable state is owned here; nothing else
// writes to the capsule or stages while a run is in progress.
type Orchestrator struct {
	capsule    *coil.Capsule
	stages     []*coil.Stage
	tubeLength float64
	dt         float64

	model   *em.Model
	stepper *kinematics.Verlet
	policy  trigger.Policy

	metrics   []launch.Metric
	observers []launch.Observer
}

// New validates the run parameters and assembles an orchestrator with the
// default proximity trigger. The electromagnetic model's minimum separation
// is half the capsule length.
func New(capsule *coil.Capsule, stages []*coil.Stage, tubeLength, dt float64) (*Orchestrator, error) {
	if capsule == nil {
		return nil, fmt.Errorf("%w: capsule is required", launch.ErrConfig)
	}
	if tubeLength <= 0 {
		return nil, fmt.Errorf("%w: tube length must be positive, got %g", launch.ErrConfig, tubeLength)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", launch.ErrConfig, dt)
	}

	model, err := em.NewModel(capsule.Geometry.Length / 2)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		capsule:    capsule,
		stages:     stages,
		tubeLength: tubeLength,
		dt:         dt,
		model:      model,
		stepper:    kinematics.NewVerlet(),
		policy:     trigger.NewProximity(),
	}, nil
}

// SetPolicy replaces the default proximity trigger.
func (o *Orchestrator) SetPolicy(p trigger.Policy) { o.policy = p }

func (o *Orchestrator) AddMetric(m launch.Metric)      { o.metrics = append(o.metrics, m) }
func (o *Orchestrator) AddObserver(ob launch.Observer) { o.observers = append(o.observers, ob) }

// Capsule exposes the capsule for read-only inspection between runs.
func (o *Orchestrator) Capsule() *coil.Capsule { return o.capsule }

// Stages exposes the stage list for read-only inspection between runs.
func (o *Orchestrator) Stages() []*coil.Stage { return o.stages }

// TubeLength reports the muzzle position.
func (o *Orchestrator) TubeLength() float64 { return o.tubeLength }

// Run executes the loop until maxTime elapses or the capsule reaches the
// muzzle, whichever comes first. Both are normal terminations and the
// result records which one fired.
//
// On a mid-run instability the partial series recorded so far is returned
// together with the error, for diagnostics. Cancellation via ctx is checked
// at the top of every tick and also returns the partial series.
func (o *Orchestrator) Run(ctx context.Context, maxTime float64) (*launch.Result, error) {
	if maxTime <= 0 {
		return nil, fmt.Errorf("%w: max time must be positive, got %g", launch.ErrConfig, maxTime)
	}

	for _, m := range o.metrics {
		m.Reset()
	}

	stored := 0.0
	for _, st := range o.stages {
		stored += st.StoredEnergy()
	}

	capacity := int(maxTime/o.dt) + 1
	if capacity > 1<<20 {
		capacity = 1 << 20
	}
	series := launch.NewSeries(len(o.stages), capacity)

	currents := make([]float64, len(o.stages))
	derivatives := make([]float64, len(o.stages))

	t := 0.0
	step := 0

	for t < maxTime && o.capsule.Position < o.tubeLength {
		select {
		case <-ctx.Done():
			return o.finish(series, stored, t, step, launch.TerminateAborted), ctx.Err()
		default:
		}

		netForce, err := o.tick(t, currents, derivatives)
		if err != nil {
			stepErr := &launch.StepError{Step: step, Time: t, Wrapped: err}
			return o.finish(series, stored, t, step, launch.TerminateAborted), stepErr
		}

		o.record(series, t, netForce, currents)

		t += o.dt
		step++
	}

	reason := launch.TerminateMaxTime
	if o.capsule.Position >= o.tubeLength {
		reason = launch.TerminateMuzzleExit
	}
	return o.finish(series, stored, t, step, reason), nil
}

// tick runs one fixed step: activation, stage currents, induced capsule
// current, force aggregation and the kinematics update.
func (o *Orchestrator) tick(t float64, currents, derivatives []float64) (float64, error) {
	for _, st := range o.stages {
		if st.Phase() == launch.StageIdle && o.policy.ShouldFire(st, o.capsule.Position, t) {
			if err := st.Activate(t); err != nil {
				return 0, err
			}
		}
	}

	active := 0
	for i, st := range o.stages {
		st.Tick(t)
		currents[i] = st.Current(t)
		derivatives[i] = st.CurrentDerivative(t)
		if st.Phase() == launch.StageDischarging {
			active++
		}
	}

	if err := o.updateInducedCurrent(t, currents, derivatives, active); err != nil {
		return 0, err
	}

	netForce := 0.0
	for i, st := range o.stages {
		if st.Phase() != launch.StageDischarging {
			continue
		}
		axial, err := o.stageForce(st, currents[i])
		if err != nil {
			return 0, err
		}
		netForce += axial
		st.Spend(currents[i]*currents[i]*st.Geometry.Resistance*o.dt, axial*o.capsule.Velocity*o.dt)
	}

	if err := o.stepper.Step(o.capsule, netForce, o.dt); err != nil {
		return 0, err
	}
	return netForce, nil
}

// updateInducedCurrent integrates the capsule loop equation
//
//	Lc * dIc/dt + Rc * Ic = d/dt sum(M_s * I_s)
//
// one explicit step. The loop inductance gives the induced current its
// physical phase lag behind the drive pulses; without it the force integral
// over a full ringing discharge cancels to zero. With no active stage the
// induced current is identically zero.
func (o *Orchestrator) updateInducedCurrent(t float64, currents, derivatives []float64, active int) error {
	if active == 0 {
		o.capsule.Current = 0
		return nil
	}

	emf := 0.0
	for i, st := range o.stages {
		if st.Phase() != launch.StageDischarging {
			continue
		}
		axial := o.capsule.Position - st.Position
		dist := math.Abs(axial)

		m, err := o.model.MutualInductance(st.Geometry, o.capsule.Geometry, dist)
		if err != nil {
			return err
		}
		grad, err := o.model.Gradient(st.Geometry, o.capsule.Geometry, dist)
		if err != nil {
			return err
		}
		emf += m*derivatives[i] + o.capsule.Velocity*currents[i]*grad*sign(axial)
	}

	lc := o.capsule.Geometry.SelfInductance()
	rc := o.capsule.Geometry.Resistance
	o.capsule.Current += o.dt * (emf - rc*o.capsule.Current) / lc
	return nil
}

// stageForce returns the axial force on the capsule from one discharging
// stage. The separation-axis force i_s * i_c * dM/dd is negative when the
// coils attract; projecting it with the sign of the capsule-stage offset
// directs attraction toward the stage from either side.
func (o *Orchestrator) stageForce(st *coil.Stage, stageCurrent float64) (float64, error) {
	axial := o.capsule.Position - st.Position
	dist := math.Abs(axial)

	f, err := o.model.Force(st.Geometry, o.capsule.Geometry, dist, stageCurrent, o.capsule.Current)
	if err != nil {
		return 0, err
	}
	return f * sign(axial), nil
}

func (o *Orchestrator) record(series *launch.Series, t, netForce float64, currents []float64) {
	smp := launch.Sample{
		Time:           t,
		Position:       o.capsule.Position,
		Velocity:       o.capsule.Velocity,
		NetForce:       netForce,
		KineticEnergy:  o.capsule.KineticEnergy(),
		CapsuleCurrent: o.capsule.Current,
		StageCurrents:  append([]float64(nil), currents...),
		StagePhases:    make([]launch.StagePhase, len(o.stages)),
	}
	for i, st := range o.stages {
		smp.StagePhases[i] = st.Phase()
	}

	for _, m := range o.metrics {
		m.Observe(smp)
	}
	for _, ob := range o.observers {
		ob.OnStep(smp)
	}
	series.Append(smp)
}

func (o *Orchestrator) finish(series *launch.Series, stored, t float64, steps int, reason launch.Termination) *launch.Result {
	res := &launch.Result{
		FinalVelocity:       o.capsule.Velocity,
		FinalPosition:       o.capsule.Position,
		TotalTime:           t,
		FinalKineticEnergy:  o.capsule.KineticEnergy(),
		InitialStoredEnergy: stored,
		Termination:         reason,
		Steps:               steps,
		Metrics:             make(map[string]float64, len(o.metrics)),
		Series:              series,
	}
	if stored > 0 {
		res.EnergyEfficiency = res.FinalKineticEnergy / stored
	}
	for _, m := range o.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
