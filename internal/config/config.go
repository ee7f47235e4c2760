// Package config loads, validates and materializes launcher configurations.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/launchlab/coilsim/internal/coil"
	"github.com/launchlab/coilsim/internal/launch"
	"github.com/launchlab/coilsim/internal/trigger"
)

const (
	DefaultDt      = 1e-5
	DefaultMaxTime = 5.0
)

type Config struct {
	Capsule    CapsuleConfig `yaml:"capsule"`
	Stages     StageConfig   `yaml:"stages"`
	TubeLength float64       `yaml:"tube_length"`
	Dt         float64       `yaml:"dt"`
	MaxTime    float64       `yaml:"max_time"`
	Trigger    TriggerConfig `yaml:"trigger"`
}

type CapsuleConfig struct {
	Mass     float64 `yaml:"mass"`
	Diameter float64 `yaml:"diameter"`
	Length   float64 `yaml:"length"`
	Position float64 `yaml:"position"`
	Velocity float64 `yaml:"velocity"`
}

type StageConfig struct {
	Count       int     `yaml:"count"`
	Turns       int     `yaml:"turns"`
	Diameter    float64 `yaml:"diameter"`
	Length      float64 `yaml:"length"`
	Capacitance float64 `yaml:"capacitance"`
	Voltage     float64 `yaml:"voltage"`

	// Resistance overrides the copper-winding derivation when positive.
	Resistance float64 `yaml:"resistance,omitempty"`

	// Positions override the even-placement rule when given; the list must
	// then match Count.
	Positions []float64 `yaml:"positions,omitempty"`
}

type TriggerConfig struct {
	// Policy is "proximity" (default) or "schedule".
	Policy string `yaml:"policy,omitempty"`

	// Scale multiplies the coil length for the proximity trigger distance.
	Scale float64 `yaml:"scale,omitempty"`

	// Schedule holds per-stage firing times for the schedule policy,
	// indexed by stage ID.
	Schedule []float64 `yaml:"schedule,omitempty"`
}

// DefaultConfig is the reference launcher: a 1 kg capsule and six
// 1000 uF / 400 V stages along a half-meter tube.
func DefaultConfig() *Config {
	return &Config{
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
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", launch.ErrConfig, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every physical quantity before anything is built.
func (c *Config) Validate() error {
	if c.Capsule.Mass <= 0 {
		return fmt.Errorf("%w: capsule mass must be positive, got %g", launch.ErrConfig, c.Capsule.Mass)
	}
	if c.Capsule.Diameter <= 0 || c.Capsule.Length <= 0 {
		return fmt.Errorf("%w: capsule dimensions must be positive", launch.ErrConfig)
	}
	if c.Capsule.Position < 0 {
		return fmt.Errorf("%w: capsule position must be non-negative, got %g", launch.ErrConfig, c.Capsule.Position)
	}
	if c.TubeLength <= 0 {
		return fmt.Errorf("%w: tube length must be positive, got %g", launch.ErrConfig, c.TubeLength)
	}
	if c.Stages.Count < 1 {
		return fmt.Errorf("%w: at least one stage is required, got %d", launch.ErrConfig, c.Stages.Count)
	}
	if c.Stages.Turns < 1 {
		return fmt.Errorf("%w: stage turns must be >= 1, got %d", launch.ErrConfig, c.Stages.Turns)
	}
	if c.Stages.Diameter <= 0 || c.Stages.Length <= 0 {
		return fmt.Errorf("%w: stage dimensions must be positive", launch.ErrConfig)
	}
	if c.Stages.Capacitance <= 0 {
		return fmt.Errorf("%w: stage capacitance must be positive, got %g", launch.ErrConfig, c.Stages.Capacitance)
	}
	if c.Stages.Voltage < 0 {
		return fmt.Errorf("%w: stage voltage must be non-negative, got %g", launch.ErrConfig, c.Stages.Voltage)
	}
	if len(c.Stages.Positions) > 0 && len(c.Stages.Positions) != c.Stages.Count {
		return fmt.Errorf("%w: %d stage positions given for %d stages", launch.ErrConfig, len(c.Stages.Positions), c.Stages.Count)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", launch.ErrConfig, c.Dt)
	}
	if c.MaxTime <= 0 {
		return fmt.Errorf("%w: max time must be positive, got %g", launch.ErrConfig, c.MaxTime)
	}
	switch c.Trigger.Policy {
	case "", "proximity":
	case "schedule":
		if len(c.Trigger.Schedule) != c.Stages.Count {
			return fmt.Errorf("%w: schedule has %d entries for %d stages", launch.ErrConfig, len(c.Trigger.Schedule), c.Stages.Count)
		}
	default:
		return fmt.Errorf("%w: unknown trigger policy %q", launch.ErrConfig, c.Trigger.Policy)
	}
	return nil
}

// StagePositions returns the position of every stage: the explicit list if
// given, otherwise stage i centered at (i + 1/2) * tube / count.
func (c *Config) StagePositions() []float64 {
	if len(c.Stages.Positions) > 0 {
		return append([]float64(nil), c.Stages.Positions...)
	}
	spacing := c.TubeLength / float64(c.Stages.Count)
	positions := make([]float64, c.Stages.Count)
	for i := range positions {
		positions[i] = (float64(i) + 0.5) * spacing
	}
	return positions
}

// BuildCapsule materializes the capsule with its initial position and
// velocity.
func (c *Config) BuildCapsule() (*coil.Capsule, error) {
	capsule, err := coil.NewCapsule(c.Capsule.Mass, c.Capsule.Diameter, c.Capsule.Length)
	if err != nil {
		return nil, err
	}
	capsule.Position = c.Capsule.Position
	capsule.Velocity = c.Capsule.Velocity
	return capsule, nil
}

// BuildStages materializes the stage list in ID order.
func (c *Config) BuildStages() ([]*coil.Stage, error) {
	resistance := c.Stages.Resistance
	if resistance <= 0 {
		resistance = coil.CopperWindingResistance(c.Stages.Turns, c.Stages.Diameter)
	}
	geom, err := coil.NewGeometry(c.Stages.Turns, c.Stages.Diameter, c.Stages.Length, resistance)
	if err != nil {
		return nil, err
	}

	positions := c.StagePositions()
	stages := make([]*coil.Stage, c.Stages.Count)
	for i := range stages {
		stages[i], err = coil.NewStage(i, positions[i], geom, c.Stages.Capacitance, c.Stages.Voltage)
		if err != nil {
			return nil, err
		}
	}
	return stages, nil
}

// BuildPolicy materializes the configured trigger policy.
func (c *Config) BuildPolicy() trigger.Policy {
	switch c.Trigger.Policy {
	case "schedule":
		times := make(map[int]float64, len(c.Trigger.Schedule))
		for i, t := range c.Trigger.Schedule {
			times[i] = t
		}
		return trigger.NewSchedule(times)
	default:
		p := trigger.NewProximity()
		if c.Trigger.Scale > 0 {
			p.Scale = c.Trigger.Scale
		}
		return p
	}
}
