// Package trigger decides when an idle acceleration stage begins its
// discharge.
package trigger

import (
	"math"

	"github.com/launchlab/coilsim/internal/coil"
)

// Policy reports whether an idle stage should fire. Implementations must be
// pure functions of their arguments; the orchestrator guarantees a stage is
// only ever offered while idle.
type Policy interface {
	ShouldFire(s *coil.Stage, capsulePos, now float64) bool
}

// Proximity fires a stage when the capsule comes within Scale coil lengths
// of the stage position. Scale 1 is the standard trigger distance.
type Proximity struct {
	Scale float64
}

func NewProximity() *Proximity { return &Proximity{Scale: 1} }

// proximityEps is relative slack on the trigger distance. The position
// subtraction can round a capsule sitting exactly at the threshold to one
// ulp outside it; without the slack such a capsule would never fire the
// stage on the inbound pass.
const proximityEps = 1e-9

func (p *Proximity) ShouldFire(s *coil.Stage, capsulePos, _ float64) bool {
	threshold := p.Scale * s.Geometry.Length
	return math.Abs(capsulePos-s.Position) <= threshold*(1+proximityEps)
}

// Schedule fires each stage at a fixed simulation time, the way a
// pre-programmed sequencer would. Stages without an entry never fire.
type Schedule struct {
	FireAt map[int]float64 // stage ID -> simulation time
}

func NewSchedule(times map[int]float64) *Schedule {
	return &Schedule{FireAt: times}
}

func (s *Schedule) ShouldFire(st *coil.Stage, _, now float64) bool {
	t, ok := s.FireAt[st.ID]
	return ok && now >= t
}
