package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/binsim/binsim/sim"
)

// CSV column headers.
var (
	timelogColumns  = []string{"bucket", "start", "queue_avg", "service_avg", "stock_avg"}
	poolSizeColumns = []string{"time", "size"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTimelogCSV writes one row per recorder bucket.
func WriteTimelogCSV(w io.Writer, rec *sim.Recorder) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(timelogColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	tl := rec.Timelog()
	for i := range tl.Queue {
		row := []string{
			strconv.Itoa(i),
			formatFloat(float64(i) * rec.SampleWidth()),
			formatFloat(tl.Queue[i]),
			formatFloat(tl.Service[i]),
			formatFloat(tl.Stock[i]),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing timelog row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePoolSizesCSV writes the pool-size history.
func WritePoolSizesCSV(w io.Writer, rec *sim.Recorder) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(poolSizeColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, s := range rec.PoolSizeHistory() {
		if err := writer.Write([]string{formatFloat(s.Time), strconv.Itoa(s.Size)}); err != nil {
			return fmt.Errorf("writing pool size row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveTimelogCSV writes the timelog to path.
func SaveTimelogCSV(path string, rec *sim.Recorder) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating timelog file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteTimelogCSV(file, rec)
}
