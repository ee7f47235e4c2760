// Package metrics provides per-run scalar accumulators attached to the
// orchestrator.
package metrics

import (
	"math"

	"github.com/launchlab/coilsim/internal/launch"
)

// PeakForce tracks the largest absolute net force seen during a run.
type PeakForce struct {
	peak float64
}

func NewPeakForce() *PeakForce { return &PeakForce{} }

func (p *PeakForce) Name() string { return "peak_force" }

func (p *PeakForce) Observe(s launch.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.NetForce))
}

func (p *PeakForce) Value() float64 { return p.peak }
func (p *PeakForce) Reset()         { p.peak = 0 }

// PeakStageCurrent tracks the largest absolute drive current across all
// stages.
type PeakStageCurrent struct {
	peak float64
}

func NewPeakStageCurrent() *PeakStageCurrent { return &PeakStageCurrent{} }

func (p *PeakStageCurrent) Name() string { return "peak_stage_current" }

func (p *PeakStageCurrent) Observe(s launch.Sample) {
	for _, cur := range s.StageCurrents {
		p.peak = math.Max(p.peak, math.Abs(cur))
	}
}

func (p *PeakStageCurrent) Value() float64 { return p.peak }
func (p *PeakStageCurrent) Reset()         { p.peak = 0 }

// PeakAcceleration tracks the largest absolute capsule acceleration, in g.
type PeakAcceleration struct {
	mass float64
	peak float64
}

const standardGravity = 9.80665

func NewPeakAcceleration(mass float64) *PeakAcceleration {
	return &PeakAcceleration{mass: mass}
}

func (p *PeakAcceleration) Name() string { return "peak_acceleration_g" }

func (p *PeakAcceleration) Observe(s launch.Sample) {
	if p.mass <= 0 {
		return
	}
	p.peak = math.Max(p.peak, math.Abs(s.NetForce)/p.mass/standardGravity)
}

func (p *PeakAcceleration) Value() float64 { return p.peak }
func (p *PeakAcceleration) Reset()         { p.peak = 0 }
