package coil

import (
	"fmt"

	"github.com/launchlab/coilsim/internal/launch"
)

// Capsule is the projectile: a single-turn conductive loop with mass and
// kinematic state. Position and velocity are advanced by the kinematics
// stepper; Current is the induced loop current, updated by the orchestrator
// each tick. A capsule lives for exactly one run.
type Capsule struct {
	Geometry Geometry
	Mass     float64 // kg

	Position float64 // m along the tube axis
	Velocity float64 // m/s
	Current  float64 // A, signed
}

// NewCapsule builds a capsule from its mass and shell dimensions. The loop
// resistance is derived from the aluminum shell geometry.
func NewCapsule(mass, diameter, length float64) (*Capsule, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("%w: capsule mass must be positive, got %g", launch.ErrConfig, mass)
	}
	g, err := NewGeometry(1, diameter, length, AluminumShellResistance(diameter))
	if err != nil {
		return nil, err
	}
	return &Capsule{Geometry: g, Mass: mass}, nil
}

// KineticEnergy returns 0.5 * m * v^2 in Joules.
func (c *Capsule) KineticEnergy() float64 {
	return 0.5 * c.Mass * c.Velocity * c.Velocity
}

// Momentum returns m * v in kg m/s.
func (c *Capsule) Momentum() float64 {
	return c.Mass * c.Velocity
}
