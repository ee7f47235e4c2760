package coil

import (
	"fmt"
	"math"

	"github.com/launchlab/coilsim/internal/launch"
)

// Mu0 is the permeability of free space (H/m).
const Mu0 = 4 * math.Pi * 1e-7

// Conductor resistivities (ohm-meter).
const (
	copperResistivity   = 1.68e-8
	aluminumResistivity = 2.65e-8
)

// 14 AWG magnet wire, the winding gauge assumed when deriving stage
// resistance from geometry.
const wireDiameter = 1.628e-3

// Geometry is the immutable electromagnetic description of a winding: turn
// count, bore diameter, axial length and loop resistance. The solenoid
// self-inductance is computed once at construction, so values can be shared
// and compared freely with no hidden state.
type Geometry struct {
	Turns      int
	Diameter   float64 // m
	Length     float64 // m
	Resistance float64 // ohm

	inductance float64 // H
}

// NewGeometry validates the winding parameters and precomputes the solenoid
// self-inductance L = mu0 * n^2 * A * l.
func NewGeometry(turns int, diameter, length, resistance float64) (Geometry, error) {
	if turns < 1 {
		return Geometry{}, fmt.Errorf("%w: turns must be >= 1, got %d", launch.ErrConfig, turns)
	}
	if diameter <= 0 {
		return Geometry{}, fmt.Errorf("%w: diameter must be positive, got %g", launch.ErrConfig, diameter)
	}
	if length <= 0 {
		return Geometry{}, fmt.Errorf("%w: length must be positive, got %g", launch.ErrConfig, length)
	}
	if resistance <= 0 {
		return Geometry{}, fmt.Errorf("%w: resistance must be positive, got %g", launch.ErrConfig, resistance)
	}

	g := Geometry{
		Turns:      turns,
		Diameter:   diameter,
		Length:     length,
		Resistance: resistance,
	}

	radius := diameter / 2
	area := math.Pi * radius * radius
	turnsPerLength := float64(turns) / length
	g.inductance = Mu0 * turnsPerLength * turnsPerLength * area * length

	return g, nil
}

// SelfInductance returns the solenoid-approximation inductance in Henries.
func (g Geometry) SelfInductance() float64 { return g.inductance }

// Radius returns the winding radius in meters.
func (g Geometry) Radius() float64 { return g.Diameter / 2 }

// CopperWindingResistance derives the DC resistance of a multi-turn copper
// winding from its turn count and bore diameter, assuming 14 AWG wire. Each
// turn contributes one circumference of wire.
func CopperWindingResistance(turns int, coilDiameter float64) float64 {
	wireArea := math.Pi * (wireDiameter / 2) * (wireDiameter / 2)
	wireLength := float64(turns) * math.Pi * coilDiameter
	return copperResistivity * wireLength / wireArea
}

// capsuleWallThickness is the effective conduction depth of the capsule
// shell used when deriving its loop resistance.
const capsuleWallThickness = 0.01

// AluminumShellResistance derives the loop resistance of the capsule's
// conductive shell. The induced current path is one circumference; the
// conduction cross-section is the circumference times the wall thickness.
func AluminumShellResistance(diameter float64) float64 {
	path := math.Pi * diameter
	area := math.Pi * diameter * capsuleWallThickness
	return aluminumResistivity * path / area
}
