package launch

import "fmt"

// StagePhase is the discharge state of an acceleration stage. Transitions are
// monotone: Idle -> Discharging -> Depleted, never backwards.
type StagePhase uint8

const (
	StageIdle StagePhase = iota
	StageDischarging
	StageDepleted
)

func (p StagePhase) String() string {
	switch p {
	case StageIdle:
		return "idle"
	case StageDischarging:
		return "discharging"
	case StageDepleted:
		return "depleted"
	default:
		return fmt.Sprintf("StagePhase(%d)", uint8(p))
	}
}

// Termination records which exit condition ended a run.
type Termination string

const (
	TerminateMaxTime    Termination = "max_time"
	TerminateMuzzleExit Termination = "muzzle_exit"
	TerminateAborted    Termination = "aborted"
)

// Sample is one recorded tick of the simulation.
type Sample struct {
	Time           float64
	Position       float64
	Velocity       float64
	NetForce       float64
	KineticEnergy  float64
	CapsuleCurrent float64
	StageCurrents  []float64
	StagePhases    []StagePhase
}

// Series holds the recorded time series as parallel slices, one entry per
// tick. It is appended to by the orchestrator while a run is in progress and
// immutable afterwards.
type Series struct {
	Time           []float64
	Position       []float64
	Velocity       []float64
	NetForce       []float64
	KineticEnergy  []float64
	CapsuleCurrent []float64
	StageCurrents  [][]float64 // indexed [stage][tick]
}

func NewSeries(stages, capacity int) *Series {
	s := &Series{
		Time:           make([]float64, 0, capacity),
		Position:       make([]float64, 0, capacity),
		Velocity:       make([]float64, 0, capacity),
		NetForce:       make([]float64, 0, capacity),
		KineticEnergy:  make([]float64, 0, capacity),
		CapsuleCurrent: make([]float64, 0, capacity),
		StageCurrents:  make([][]float64, stages),
	}
	for i := range s.StageCurrents {
		s.StageCurrents[i] = make([]float64, 0, capacity)
	}
	return s
}

func (s *Series) Append(smp Sample) {
	s.Time = append(s.Time, smp.Time)
	s.Position = append(s.Position, smp.Position)
	s.Velocity = append(s.Velocity, smp.Velocity)
	s.NetForce = append(s.NetForce, smp.NetForce)
	s.KineticEnergy = append(s.KineticEnergy, smp.KineticEnergy)
	s.CapsuleCurrent = append(s.CapsuleCurrent, smp.CapsuleCurrent)
	for i := range s.StageCurrents {
		cur := 0.0
		if i < len(smp.StageCurrents) {
			cur = smp.StageCurrents[i]
		}
		s.StageCurrents[i] = append(s.StageCurrents[i], cur)
	}
}

func (s *Series) Len() int { return len(s.Time) }

// Result is the outcome of a completed (or aborted) run.
type Result struct {
	FinalVelocity       float64
	FinalPosition       float64
	TotalTime           float64
	FinalKineticEnergy  float64
	InitialStoredEnergy float64
	EnergyEfficiency    float64
	Termination         Termination
	Steps               int
	Metrics             map[string]float64
	Series              *Series
}

// Metric accumulates a scalar over the recorded samples of a run.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Observer receives every recorded sample as the run progresses.
type Observer interface {
	OnStep(s Sample)
}
