// Package sweep runs fixed-size pools across arrival rates and searches for
// the utilization set-point that keeps response time closest to the best
// achievable at every rate.
package sweep

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/binsim/binsim/sim"
	"github.com/binsim/binsim/sim/workload"
)

// Config describes a sweep: every arrival rate is run once per bin count in
// [1, MaxBins] with a static controller.
type Config struct {
	Experiment   sim.ExperimentConfig   // pool and recorder settings; the controller is replaced
	Generator    workload.GeneratorSpec // request interarrival is overridden per rate
	ArrivalRates []float64              // requests per second
	MaxBins      int
}

// Validate checks the sweep configuration.
func (c Config) Validate() error {
	if len(c.ArrivalRates) == 0 {
		return fmt.Errorf("sweep needs at least one arrival rate")
	}
	for _, r := range c.ArrivalRates {
		if r <= 0 {
			return fmt.Errorf("arrival rate must be > 0, got %v", r)
		}
	}
	if c.MaxBins < 1 {
		return fmt.Errorf("max bins %d: %w", c.MaxBins, sim.ErrInvalidPoolSize)
	}
	return nil
}

// Row is one sweep measurement.
type Row struct {
	ArrivalRate  float64
	Bins         int
	Utilization  float64 // mean bin utilization over the whole run
	ResponseTime float64 // mean queue + service time of satisfied requests
}

// Run executes the sweep. Each arrival rate gets its own workload seed,
// derived from the experiment seed, shared by every bin count at that rate.
func Run(cfg Config) ([]Row, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seeds := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Experiment.Seed))

	rows := make([]Row, 0, len(cfg.ArrivalRates)*cfg.MaxBins)
	for i, rate := range cfg.ArrivalRates {
		gen := cfg.Generator
		gen.Seed = seeds.ForSubsystem(sim.SubsystemSweep(i)).Int63()
		gen.Requests.MeanInterarrival = 1 / rate
		records, err := workload.Generate(gen)
		if err != nil {
			return nil, fmt.Errorf("rate %v: %w", rate, err)
		}

		for bins := 1; bins <= cfg.MaxBins; bins++ {
			row, err := runPoint(cfg.Experiment, records, rate, bins)
			if err != nil {
				return nil, fmt.Errorf("rate %v, %d bins: %w", rate, bins, err)
			}
			logrus.Debugf("sweep rate=%v bins=%d utilization=%.4f response=%.4f",
				rate, bins, row.Utilization, row.ResponseTime)
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func runPoint(exp sim.ExperimentConfig, records []sim.WorkloadRecord, rate float64, bins int) (Row, error) {
	exp.Pool.Bins = bins
	exp.Controller.Policy = "static"
	exp.Controller.Interval = 0

	s, err := sim.NewSimulator(sim.SimConfig{Experiment: exp}, records, sim.StaticController{})
	if err != nil {
		return Row{}, err
	}
	if err := s.Run(); err != nil {
		return Row{}, err
	}
	util := 0.0
	if s.Clock > 0 {
		util = s.Pool.AvgUtilization(0, s.Clock)
	}
	return Row{
		ArrivalRate:  rate,
		Bins:         bins,
		Utilization:  util,
		ResponseTime: s.Summary.MeanResponseTime,
	}, nil
}
