package em

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/launchlab/coilsim/internal/coil"
	"github.com/launchlab/coilsim/internal/launch"
)

func testGeometries(t *testing.T) (stage, capsule coil.Geometry) {
	t.Helper()
	stage, err := coil.NewGeometry(100, 0.09, 0.05, 0.23)
	if err != nil {
		t.Fatalf("stage geometry: %v", err)
	}
	capsule, err = coil.NewGeometry(1, 0.083, 0.02, 2.65e-6)
	if err != nil {
		t.Fatalf("capsule geometry: %v", err)
	}
	return stage, capsule
}

func TestMutualInductanceSymmetry(t *testing.T) {
	g := NewWithT(t)
	a, b := testGeometries(t)
	m, err := NewModel(0.01)
	g.Expect(err).NotTo(HaveOccurred())

	for _, d := range []float64{0.01, 0.03, 0.05, 0.1, 0.5} {
		mab, err := m.MutualInductance(a, b, d)
		g.Expect(err).NotTo(HaveOccurred())
		mba, err := m.MutualInductance(b, a, d)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(mab).To(BeNumerically("~", mba, 1e-18), "asymmetric at d=%g", d)
	}
}

// The overlap and far-field branches must meet at one coil length or the
// finite-difference gradient spikes across the seam.
func TestMutualInductanceContinuousAtBoundary(t *testing.T) {
	g := NewWithT(t)
	a, b := testGeometries(t)
	m, err := NewModel(0.01)
	g.Expect(err).NotTo(HaveOccurred())

	boundary := a.Length // the longer of the two
	eps := 1e-9

	inside, err := m.MutualInductance(a, b, boundary-eps)
	g.Expect(err).NotTo(HaveOccurred())
	outside, err := m.MutualInductance(a, b, boundary+eps)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(inside).To(BeNumerically("~", outside, inside*1e-6))
}

func TestMutualInductanceMonotoneDecay(t *testing.T) {
	g := NewWithT(t)
	a, b := testGeometries(t)
	m, err := NewModel(0.01)
	g.Expect(err).NotTo(HaveOccurred())

	prev, err := m.MutualInductance(a, b, 0.01)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(prev).To(BeNumerically(">", 0))

	for d := 0.015; d < 1.0; d += 0.005 {
		cur, err := m.MutualInductance(a, b, d)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(cur).To(BeNumerically("<=", prev), "coupling rose at d=%g", d)
		prev = cur
	}
}

func TestGradientNegativeInDecayRegion(t *testing.T) {
	g := NewWithT(t)
	a, b := testGeometries(t)
	m, err := NewModel(0.01)
	g.Expect(err).NotTo(HaveOccurred())

	for _, d := range []float64{0.02, 0.04, 0.1, 0.3} {
		grad, err := m.Gradient(a, b, d)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(grad).To(BeNumerically("<", 0), "gradient at d=%g", d)
	}
}

func TestForceAttractsAlignedCurrents(t *testing.T) {
	g := NewWithT(t)
	a, b := testGeometries(t)
	m, err := NewModel(0.01)
	g.Expect(err).NotTo(HaveOccurred())

	f, err := m.Force(a, b, 0.05, 100, 50)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(f).To(BeNumerically("<", 0), "aligned currents should attract")

	// opposing currents repel
	f2, err := m.Force(a, b, 0.05, 100, -50)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(f2).To(BeNumerically(">", 0))
}

func TestForceSymmetricUnderSwap(t *testing.T) {
	g := NewWithT(t)
	a, b := testGeometries(t)
	m, err := NewModel(0.01)
	g.Expect(err).NotTo(HaveOccurred())

	f1, err := m.Force(a, b, 0.07, 120, -35)
	g.Expect(err).NotTo(HaveOccurred())
	f2, err := m.Force(b, a, 0.07, -35, 120)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(f1).To(BeNumerically("~", f2, 1e-9))
}

func TestForceZeroCurrent(t *testing.T) {
	g := NewWithT(t)
	a, b := testGeometries(t)
	m, err := NewModel(0.01)
	g.Expect(err).NotTo(HaveOccurred())

	f, err := m.Force(a, b, 0.05, 0, 500)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(f).To(BeZero())
}

func TestNegativeSeparationRejected(t *testing.T) {
	a, b := testGeometries(t)
	m, err := NewModel(0.01)
	if err != nil {
		t.Fatalf("model: %v", err)
	}

	if _, err := m.MutualInductance(a, b, -0.01); !errors.Is(err, launch.ErrPhysics) {
		t.Errorf("mutual inductance: expected physics error, got %v", err)
	}
	if _, err := m.Gradient(a, b, -0.01); !errors.Is(err, launch.ErrPhysics) {
		t.Errorf("gradient: expected physics error, got %v", err)
	}
	if _, err := m.Force(a, b, -0.01, 0, 0); !errors.Is(err, launch.ErrPhysics) {
		t.Errorf("force: expected physics error, got %v", err)
	}
}

func TestNewModelValidation(t *testing.T) {
	if _, err := NewModel(0); !errors.Is(err, launch.ErrConfig) {
		t.Errorf("zero minimum separation should fail, got %v", err)
	}
}
