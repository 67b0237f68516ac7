package workload

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StreamSpec describes one Poisson stream of workload records.
type StreamSpec struct {
	MeanInterarrival float64 `yaml:"mean_interarrival"` // seconds between records, mean of an exponential
	MinQuantity      int     `yaml:"min_quantity"`      // inclusive
	MaxQuantity      int     `yaml:"max_quantity"`      // exclusive
}

// Validate checks a stream.
func (s StreamSpec) Validate() error {
	if s.MeanInterarrival <= 0 {
		return fmt.Errorf("mean_interarrival must be > 0, got %v", s.MeanInterarrival)
	}
	if s.MinQuantity < 1 {
		return fmt.Errorf("min_quantity must be >= 1, got %d", s.MinQuantity)
	}
	if s.MaxQuantity <= s.MinQuantity {
		return fmt.Errorf("max_quantity %d must exceed min_quantity %d", s.MaxQuantity, s.MinQuantity)
	}
	return nil
}

// GeneratorSpec is the synthetic workload configuration.
// Loaded from YAML via LoadGeneratorSpec(path).
type GeneratorSpec struct {
	Seed       int64      `yaml:"seed"`
	NumRecords int        `yaml:"num_records"` // records after the initial restock
	Requests   StreamSpec `yaml:"requests"`
	Restocks   StreamSpec `yaml:"restocks"`
}

// DefaultGeneratorSpec returns 10000 records of 1-9 unit requests arriving
// every 0.3 s on average, restocked with 2000-2099 units every 100 s.
func DefaultGeneratorSpec() GeneratorSpec {
	return GeneratorSpec{
		Seed:       1,
		NumRecords: 10000,
		Requests:   StreamSpec{MeanInterarrival: 0.3, MinQuantity: 1, MaxQuantity: 10},
		Restocks:   StreamSpec{MeanInterarrival: 100, MinQuantity: 2000, MaxQuantity: 2100},
	}
}

// Validate checks the generator configuration.
func (s GeneratorSpec) Validate() error {
	if s.NumRecords < 0 {
		return fmt.Errorf("num_records must be >= 0, got %d", s.NumRecords)
	}
	if err := s.Requests.Validate(); err != nil {
		return fmt.Errorf("requests: %w", err)
	}
	if err := s.Restocks.Validate(); err != nil {
		return fmt.Errorf("restocks: %w", err)
	}
	return nil
}

// LoadGeneratorSpec reads a YAML generator spec on top of the defaults.
// Unknown fields are rejected.
func LoadGeneratorSpec(path string) (GeneratorSpec, error) {
	spec := DefaultGeneratorSpec()
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("reading generator spec: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return spec, fmt.Errorf("parsing generator spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}
