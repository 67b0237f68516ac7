package workload

import (
	"fmt"
	"math/rand"

	"github.com/binsim/binsim/sim"
)

// Generate creates a synthetic workload from spec: a restock at t=0, then
// NumRecords records drawn from two interleaved Poisson streams.
// Deterministic given the same spec. Records come out sorted by time with
// sequential IDs.
func Generate(spec GeneratorSpec) ([]sim.WorkloadRecord, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed)).ForSubsystem(sim.SubsystemWorkload)

	records := make([]sim.WorkloadRecord, 0, spec.NumRecords+1)
	emit := func(kind sim.RecordKind, t float64, s StreamSpec) {
		records = append(records, sim.WorkloadRecord{
			ID:       len(records),
			Kind:     kind,
			Time:     t,
			Quantity: sampleQuantity(rng, s),
		})
	}

	emit(sim.RecordRestock, 0, spec.Restocks)
	nextRestock := sampleGap(rng, spec.Restocks)
	nextRequest := sampleGap(rng, spec.Requests)
	for i := 0; i < spec.NumRecords; i++ {
		if nextRestock < nextRequest {
			emit(sim.RecordRestock, nextRestock, spec.Restocks)
			nextRestock += sampleGap(rng, spec.Restocks)
		} else {
			emit(sim.RecordRequest, nextRequest, spec.Requests)
			nextRequest += sampleGap(rng, spec.Requests)
		}
	}
	return records, nil
}

func sampleGap(rng *rand.Rand, s StreamSpec) float64 {
	return rng.ExpFloat64() * s.MeanInterarrival
}

func sampleQuantity(rng *rand.Rand, s StreamSpec) int {
	return s.MinQuantity + rng.Intn(s.MaxQuantity-s.MinQuantity)
}
