// Package em computes mutual inductance and inter-coil force for the
// launcher's lumped-parameter, linear-magnetics approximation.
package em

import (
	"fmt"
	"math"

	"github.com/launchlab/coilsim/internal/coil"
	"github.com/launchlab/coilsim/internal/launch"
)

// Finite-difference step for the mutual inductance gradient.
const gradientStep = 1e-3 // m

// Coupling fraction remaining at one coil length of separation. The overlap
// branch falls linearly from the full-coupling value to this fraction, and
// the far-field branch continues from it with cube decay, so the two
// regimes meet continuously.
const boundaryCoupling = 0.125

// Model is a stateless calculator of coupling between coil-like entities.
// Separations below the minimum are clamped to it before evaluating, which
// keeps the finite-difference gradient bounded near contact.
type Model struct {
	minSeparation float64 // m
}

// NewModel builds a model with the given minimum physical separation,
// typically half the capsule length.
func NewModel(minSeparation float64) (*Model, error) {
	if minSeparation <= 0 {
		return nil, fmt.Errorf("%w: minimum separation must be positive, got %g", launch.ErrConfig, minSeparation)
	}
	return &Model{minSeparation: minSeparation}, nil
}

// MinSeparation returns the clamp distance in meters.
func (m *Model) MinSeparation() float64 { return m.minSeparation }

// MutualInductance returns the coupling in Henries between two windings at
// the given axial center separation. The result is symmetric in its
// geometry arguments and non-increasing in distance.
//
// Two regimes: inside one coil length the coupling scales with the
// geometric mean of the radii and turn counts and a linear overlap
// fraction; beyond it the coupling decays with the cube of distance,
// anchored to the overlap branch at the boundary.
func (m *Model) MutualInductance(a, b coil.Geometry, distance float64) (float64, error) {
	if distance < 0 {
		return 0, fmt.Errorf("%w: negative separation %g m", launch.ErrPhysics, distance)
	}
	return m.mutual(a, b, distance), nil
}

func (m *Model) mutual(a, b coil.Geometry, distance float64) float64 {
	d := math.Max(distance, m.minSeparation)

	full := coil.Mu0 * math.Sqrt(a.Radius()*b.Radius()) *
		math.Sqrt(float64(a.Turns)*float64(b.Turns))
	ref := math.Max(a.Length, b.Length)

	if d < ref {
		return full * (1 - (1-boundaryCoupling)*d/ref)
	}
	ratio := ref / d
	return full * boundaryCoupling * ratio * ratio * ratio
}

// Gradient returns dM/dd, the derivative of mutual inductance with respect
// to separation, by centered finite difference. It is negative everywhere
// the coupling is decaying.
func (m *Model) Gradient(a, b coil.Geometry, distance float64) (float64, error) {
	if distance < 0 {
		return 0, fmt.Errorf("%w: negative separation %g m", launch.ErrPhysics, distance)
	}
	plus := m.mutual(a, b, distance+gradientStep/2)
	minus := m.mutual(a, b, distance-gradientStep/2)
	return (plus - minus) / gradientStep, nil
}

// Force returns i1 * i2 * dM/dd in Newtons along the separation axis. A
// negative value pulls the coils together. The result is invariant under
// swapping (a, i1) with (b, i2).
func (m *Model) Force(a, b coil.Geometry, distance, i1, i2 float64) (float64, error) {
	if i1 == 0 || i2 == 0 {
		if distance < 0 {
			return 0, fmt.Errorf("%w: negative separation %g m", launch.ErrPhysics, distance)
		}
		return 0, nil
	}
	grad, err := m.Gradient(a, b, distance)
	if err != nil {
		return 0, err
	}
	return i1 * i2 * grad, nil
}
