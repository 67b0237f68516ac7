// Package testutil provides shared test infrastructure for the binsim
// simulator: golden scenario types and assertion helpers used across the
// sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_scenarios.json.
type GoldenDataset struct {
	Scenarios []GoldenScenario `json:"scenarios"`
}

// GoldenScenario is a scripted run whose outcome counts do not depend on the
// random service times.
type GoldenScenario struct {
	Name        string         `json:"name"`
	Seed        int64          `json:"seed"`
	Bins        int            `json:"bins"`
	Stock       int            `json:"stock"`
	ServiceTime float64        `json:"service_time"`
	Records     []GoldenRecord `json:"records"`
	Expected    GoldenSummary  `json:"expected"`
}

// GoldenRecord is one workload line: kind is "request" or "restock".
type GoldenRecord struct {
	Kind     string  `json:"kind"`
	Time     float64 `json:"time"`
	Quantity int     `json:"quantity"`
}

// GoldenSummary holds the expected end-of-run counts.
type GoldenSummary struct {
	RequestsIssued    int     `json:"requests_issued"`
	RequestsSatisfied int     `json:"requests_satisfied"`
	RequestsGivenUp   int     `json:"requests_given_up"`
	UnitsReturned     int64   `json:"units_returned"`
	Retries           int     `json:"retries"`
	MeanBinsChecked   float64 `json:"mean_bins_checked"`
	FinalPoolSize     int     `json:"final_pool_size"`
	FinalStock        int     `json:"final_stock"`
}

// LoadGoldenDataset loads the golden scenarios from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	if len(dataset.Scenarios) == 0 {
		t.Fatal("Golden dataset has no scenarios")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
