// Package kinematics advances the capsule's position and velocity under the
// net electromagnetic force.
package kinematics

import (
	"fmt"
	"math"

	"github.com/launchlab/coilsim/internal/coil"
	"github.com/launchlab/coilsim/internal/launch"
)

// Verlet performs a velocity-Verlet style update with the force held
// constant over the step:
//
//	x' = x + v*dt + 0.5*a*dt^2
//	v' = v + a*dt
//
// The stepper is stateless; two identical calls produce identical results.
type Verlet struct{}

func NewVerlet() *Verlet { return &Verlet{} }

// Step advances the capsule by dt under the given net force. Non-finite
// inputs or outputs abort with an instability error before the capsule
// state is corrupted.
func (v *Verlet) Step(c *coil.Capsule, force, dt float64) error {
	if math.IsNaN(force) || math.IsInf(force, 0) {
		return fmt.Errorf("%w: non-finite force %v", launch.ErrUnstable, force)
	}

	acc := force / c.Mass
	newPos := c.Position + c.Velocity*dt + 0.5*acc*dt*dt
	newVel := c.Velocity + acc*dt

	if math.IsNaN(newPos) || math.IsInf(newPos, 0) || math.IsNaN(newVel) || math.IsInf(newVel, 0) {
		return fmt.Errorf("%w: non-finite state (pos=%v vel=%v)", launch.ErrUnstable, newPos, newVel)
	}

	c.Position = newPos
	c.Velocity = newVel
	return nil
}
