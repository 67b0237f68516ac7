package sweep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var rowColumns = []string{"arrival_rate", "bins", "utilization", "response_time"}

// WriteRows writes sweep rows as CSV with a header line.
func WriteRows(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(rowColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatFloat(r.ArrivalRate, 'g', -1, 64),
			strconv.Itoa(r.Bins),
			strconv.FormatFloat(r.Utilization, 'g', -1, 64),
			strconv.FormatFloat(r.ResponseTime, 'g', -1, 64),
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("writing sweep row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRows parses CSV written by WriteRows. The first line is a header and
// is skipped.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) != len(rowColumns) {
			return nil, fmt.Errorf("line %d: want %d columns, got %d", line, len(rowColumns), len(rec))
		}
		var row Row
		var perr error
		parse := func(s string) float64 {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil && perr == nil {
				perr = err
			}
			return v
		}
		row.ArrivalRate = parse(rec[0])
		row.Bins = int(parse(rec[1]))
		row.Utilization = parse(rec[2])
		row.ResponseTime = parse(rec[3])
		if perr != nil {
			return nil, fmt.Errorf("line %d: %w", line, perr)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
