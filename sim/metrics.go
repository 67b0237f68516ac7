// Tracks run-wide outcome statistics: how many requests were satisfied or
// given up, how much stock moved, and how often the pool was reshaped.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Summary aggregates statistics about the simulation for final reporting.
type Summary struct {
	RequestsIssued    int     `json:"requests_issued"`
	RequestsSatisfied int     `json:"requests_satisfied"`
	RequestsGivenUp   int     `json:"requests_given_up"`
	SuccessRate       float64 `json:"success_rate"`
	UnitsRequested    int64   `json:"units_requested"`
	UnitsReserved     int64   `json:"units_reserved"`
	UnitsReturned     int64   `json:"units_returned"`
	Restocks          int     `json:"restocks"`
	UnitsRestocked    int64   `json:"units_restocked"`
	AdaptTicks        int     `json:"adapt_ticks"`
	Resizes           int     `json:"resizes"`
	Retries           int     `json:"retries"`
	MeanResponseTime  float64 `json:"mean_response_time"`
	MeanQueueTime     float64 `json:"mean_queue_time"`
	MeanBinsChecked   float64 `json:"mean_bins_checked"`
	FinalPoolSize     int     `json:"final_pool_size"`
	FinalStock        int     `json:"final_stock"`
	SimEndedTime      float64 `json:"sim_ended_time"`

	responseSum float64
	queueSum    float64
	checkedSum  int
}

// NewSummary creates an empty Summary.
func NewSummary() *Summary {
	return &Summary{}
}

func (m *Summary) satisfied(queueTime, serviceTime float64, binsChecked, reserved int) {
	m.RequestsSatisfied++
	m.UnitsReserved += int64(reserved)
	m.responseSum += queueTime + serviceTime
	m.queueSum += queueTime
	m.checkedSum += binsChecked
}

func (m *Summary) givenUp(binsChecked, returned int) {
	m.RequestsGivenUp++
	m.UnitsReturned += int64(returned)
	m.checkedSum += binsChecked
}

// finish derives the averages once the run is over.
func (m *Summary) finish(pool *Pool, clock float64) {
	if m.RequestsSatisfied > 0 {
		m.MeanResponseTime = m.responseSum / float64(m.RequestsSatisfied)
		m.MeanQueueTime = m.queueSum / float64(m.RequestsSatisfied)
	}
	if resolved := m.RequestsSatisfied + m.RequestsGivenUp; resolved > 0 {
		m.SuccessRate = float64(m.RequestsSatisfied) / float64(resolved)
		m.MeanBinsChecked = float64(m.checkedSum) / float64(resolved)
	}
	m.FinalPoolSize = pool.Size()
	m.FinalStock = pool.StockAvailable()
	m.SimEndedTime = clock
}

// SaveResults prints the summary as JSON under a header to w and, when
// outputFilePath is non-empty, also writes the JSON to that file.
func (m *Summary) SaveResults(w io.Writer, outputFilePath string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if _, err := fmt.Fprintf(w, "=== Simulation Metrics ===\n%s\n", data); err != nil {
		return err
	}
	if outputFilePath == "" {
		return nil
	}
	if err := os.WriteFile(outputFilePath, data, 0644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
