package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PoolConfig groups the resource-pool parameters.
type PoolConfig struct {
	Bins        int     `yaml:"bins"`         // initial number of bins (must be >= 1)
	Stock       int     `yaml:"stock"`        // initial stock spread over the bins (>= 0)
	ServiceTime float64 `yaml:"service_time"` // mean exponential service time, seconds (> 0)
}

// Validate checks the pool parameters.
func (c PoolConfig) Validate() error {
	if c.Bins < 1 {
		return fmt.Errorf("pool bins %d: %w", c.Bins, ErrInvalidPoolSize)
	}
	if c.Stock < 0 {
		return fmt.Errorf("pool stock must be >= 0, got %d", c.Stock)
	}
	if c.ServiceTime <= 0 {
		return fmt.Errorf("pool service_time must be > 0, got %v", c.ServiceTime)
	}
	return nil
}

// RecorderConfig groups the metrics-recorder parameters.
type RecorderConfig struct {
	SampleWidth float64 `yaml:"sample_width"` // bucket width, seconds (> 0)
	End         float64 `yaml:"end"`          // experiment end; 0 = last workload timestamp
}

// PIConfig holds the proportional-integral gains.
type PIConfig struct {
	Kp       float64 `yaml:"kp"`
	Ki       float64 `yaml:"ki"`
	Setpoint float64 `yaml:"setpoint"`
}

// PIDConfig holds the PID gains and the anti-windup clamp on the integral.
type PIDConfig struct {
	Kp       float64 `yaml:"kp"`
	Ki       float64 `yaml:"ki"`
	Kd       float64 `yaml:"kd"`
	Setpoint float64 `yaml:"setpoint"`
	IMin     float64 `yaml:"i_min"`
	IMax     float64 `yaml:"i_max"`
}

// DummyConfig holds the fixed schedule of the dummy controller.
type DummyConfig struct {
	Threshold float64 `yaml:"threshold"` // simulated time after which Bins is returned
	Bins      int     `yaml:"bins"`
}

// ControllerConfig selects and parameterizes the controller.
type ControllerConfig struct {
	Policy   string      `yaml:"policy"`   // "pi", "pid" (default), "dummy", "static"
	Interval float64     `yaml:"interval"` // seconds between adapt ticks; 0 disables adaptation
	PI       PIConfig    `yaml:"pi"`
	PID      PIDConfig   `yaml:"pid"`
	Dummy    DummyConfig `yaml:"dummy"`
}

// Validate checks the controller selection and its parameters.
func (c ControllerConfig) Validate() error {
	if !ValidControllerPolicies[c.Policy] {
		return fmt.Errorf("unknown controller policy %q", c.Policy)
	}
	if c.Interval < 0 {
		return fmt.Errorf("controller interval must be >= 0, got %v", c.Interval)
	}
	if c.PID.IMin > c.PID.IMax {
		return fmt.Errorf("pid i_min %v greater than i_max %v", c.PID.IMin, c.PID.IMax)
	}
	if c.Policy == "dummy" && c.Dummy.Bins < 1 {
		return fmt.Errorf("dummy bins %d: %w", c.Dummy.Bins, ErrInvalidPoolSize)
	}
	return nil
}

// ExperimentConfig is the full configuration of one simulation run.
// Loaded from YAML via LoadExperimentConfig(path).
type ExperimentConfig struct {
	Seed       int64            `yaml:"seed"`
	Pool       PoolConfig       `yaml:"pool"`
	Recorder   RecorderConfig   `yaml:"recorder"`
	Controller ControllerConfig `yaml:"controller"`
}

// DefaultExperimentConfig returns the configuration used when no file is given:
// one bin, 50 ms service time, 10 s buckets and a PID controller ticking every
// bucket.
func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Seed: 1,
		Pool: PoolConfig{
			Bins:        1,
			Stock:       0,
			ServiceTime: 0.05,
		},
		Recorder: RecorderConfig{
			SampleWidth: 10,
		},
		Controller: ControllerConfig{
			Policy:   "pid",
			Interval: 10,
			PI:       PIConfig{Kp: 5, Ki: 0.4, Setpoint: 0.1},
			PID: PIDConfig{
				Kp:       -5,
				Ki:       -0.4,
				Kd:       0,
				Setpoint: 0.1,
				IMin:     -10,
				IMax:     10,
			},
			Dummy: DummyConfig{Threshold: 1000, Bins: 4},
		},
	}
}

// Validate checks every section of the configuration.
func (c ExperimentConfig) Validate() error {
	if err := c.Pool.Validate(); err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	if c.Recorder.SampleWidth <= 0 {
		return fmt.Errorf("recorder: sample_width must be > 0, got %v", c.Recorder.SampleWidth)
	}
	if c.Recorder.End < 0 {
		return fmt.Errorf("recorder: end must be >= 0, got %v", c.Recorder.End)
	}
	if err := c.Controller.Validate(); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	return nil
}

// LoadExperimentConfig reads a YAML experiment file on top of the defaults.
// Unknown fields are rejected so typos fail loudly.
func LoadExperimentConfig(path string) (ExperimentConfig, error) {
	cfg := DefaultExperimentConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading experiment config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing experiment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
