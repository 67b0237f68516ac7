// Package sim provides the core discrete-event simulation engine for binsim:
// a pool of bins servicing stock reservations under a self-adaptive
// controller that resizes the pool.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - bin.go: a single-server FCFS queue with a time-stamped stock ledger
//   - pool.go: routes reservations and restocks to bins, reshapes the pool
//   - action.go: the closed set of pending actions that drive the simulation
//   - simulator.go: the event loop and the retry / give-up state machine
//
// # Architecture
//
// The sim package holds the model and the driver; supporting packages live
// alongside it:
//   - sim/workload/: CSV workload scripts and synthetic generation
//   - sim/trace/: controller-decision and request-outcome records
//   - sim/export/: SQLite and CSV export of recorder output
//   - sim/sweep/: utilization sweeps and set-point search
//
// # Key Interfaces
//
//   - Controller: decides the next pool size from an Observation
//
// # Time and randomness
//
// All times are simulated seconds (float64) on a single timeline. Actions run
// in non-decreasing time order and the Pool panics if asked to act before the
// latest time it has seen. All randomness derives from one seed through
// PartitionedRNG, so a run is reproducible bit for bit.
package sim
