package trigger

import (
	"testing"

	"github.com/launchlab/coilsim/internal/coil"
)

func testStage(t *testing.T, id int, position float64) *coil.Stage {
	t.Helper()
	g, err := coil.NewGeometry(100, 0.09, 0.05, 0.23)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	s, err := coil.NewStage(id, position, g, 1000e-6, 400)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	return s
}

func TestProximityFiresWithinCoilLength(t *testing.T) {
	s := testStage(t, 0, 0.2)
	p := NewProximity()

	tests := []struct {
		name       string
		capsulePos float64
		want       bool
	}{
		{"far before", 0.0, false},
		{"just outside", 0.149, false},
		// 0.15-0.2 rounds one ulp past the 0.05 threshold; the
		// comparison slack must absorb that.
		{"at threshold", 0.15, true},
		{"centered", 0.2, true},
		{"past, still close", 0.24, true},
		{"at far threshold", 0.25, true},
		{"far past", 0.3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ShouldFire(s, tt.capsulePos, 0); got != tt.want {
				t.Errorf("capsule at %g: fire=%v, want %v", tt.capsulePos, got, tt.want)
			}
		})
	}
}

func TestProximityScale(t *testing.T) {
	s := testStage(t, 0, 0.2)
	p := &Proximity{Scale: 2}

	if !p.ShouldFire(s, 0.11, 0) {
		t.Error("scale 2 should fire within two coil lengths")
	}
	if p.ShouldFire(s, 0.09, 0) {
		t.Error("scale 2 should not fire beyond two coil lengths")
	}
}

func TestScheduleFiresAtTime(t *testing.T) {
	s0 := testStage(t, 0, 0.1)
	s1 := testStage(t, 1, 0.2)
	s2 := testStage(t, 2, 0.3)

	sched := NewSchedule(map[int]float64{0: 0, 1: 0.5})

	if !sched.ShouldFire(s0, 0, 0) {
		t.Error("stage 0 scheduled at t=0 should fire immediately")
	}
	if sched.ShouldFire(s1, 0, 0.49) {
		t.Error("stage 1 fired before its slot")
	}
	if !sched.ShouldFire(s1, 0, 0.5) {
		t.Error("stage 1 should fire at its slot")
	}
	if sched.ShouldFire(s2, 0, 100) {
		t.Error("unscheduled stage must never fire")
	}
}
