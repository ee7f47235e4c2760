package config

import "sort"

// Presets are named launcher setups for quick runs from the CLI.
var Presets = map[string]*Config{
	// The reference launcher used as the regression baseline.
	"baseline": DefaultConfig(),

	// Short tube, few stages, hot capacitors.
	"sprint": {
		Capsule: CapsuleConfig{
			Mass:     0.5,
			Diameter: 0.083,
			Length:   0.02,
			Position: 0.02,
		},
		Stages: StageConfig{
			Count:       3,
			Turns:       100,
			Diameter:    0.09,
			Length:      0.05,
			Capacitance: 2000e-6,
			Voltage:     600.0,
		},
		TubeLength: 0.3,
		Dt:         DefaultDt,
		MaxTime:    DefaultMaxTime,
	},

	// Low charge voltage, gentle pulses.
	"gentle": {
		Capsule: CapsuleConfig{
			Mass:     1.0,
			Diameter: 0.083,
			Length:   0.02,
			Position: 0.02,
		},
		Stages: StageConfig{
			Count:       6,
			Turns:       100,
			Diameter:    0.09,
			Length:      0.05,
			Capacitance: 1000e-6,
			Voltage:     150.0,
		},
		TubeLength: 0.5,
		Dt:         DefaultDt,
		MaxTime:    DefaultMaxTime,
	},

	// Pre-programmed sequencer: all stages fire on a fixed timetable
	// instead of proximity detection.
	"timed": {
		Capsule: CapsuleConfig{
			Mass:     1.0,
			Diameter: 0.083,
			Length:   0.02,
			Position: 0.02,
		},
		Stages: StageConfig{
			Count:       6,
			Turns:       100,
			Diameter:    0.09,
			Length:      0.05,
			Capacitance: 1000e-6,
			Voltage:     400.0,
		},
		TubeLength: 0.5,
		Dt:         DefaultDt,
		MaxTime:    DefaultMaxTime,
		Trigger: TriggerConfig{
			Policy:   "schedule",
			Schedule: []float64{0, 0.5, 1.0, 1.5, 2.0, 2.5},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown. Callers
// override fields on the copy; the preset table itself stays pristine.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	if p.Stages.Positions != nil {
		c.Stages.Positions = append([]float64(nil), p.Stages.Positions...)
	}
	if p.Trigger.Schedule != nil {
		c.Trigger.Schedule = append([]float64(nil), p.Trigger.Schedule...)
	}
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
