// Package workload reads, writes and generates workload scripts.
//
// A script is a CSV file with three columns:
//
//	kind:     '+' restock or '-' request
//	time:     float, timestamp of the action in seconds
//	quantity: int, units to restock or reserve
//
// For example:
//
//	+, 0, 2000
//	-, 0.5, 4
//	-, 1.3, 10
package workload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/binsim/binsim/sim"
)

const (
	kindRestock = "+"
	kindRequest = "-"
)

// ParseScript reads a script. Every row consumes one ordinal ID, including
// rows of unknown kind, which are skipped. The result is stably sorted by
// time, so rows sharing a timestamp keep their file order.
func ParseScript(r io.Reader) ([]sim.WorkloadRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var records []sim.WorkloadRecord
	nextID := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading script: %w", err)
		}
		id := nextID
		nextID++

		var kind sim.RecordKind
		switch strings.TrimSpace(row[0]) {
		case kindRequest:
			kind = sim.RecordRequest
		case kindRestock:
			kind = sim.RecordRestock
		default:
			logrus.Debugf("skipping script row %d with kind %q", id, row[0])
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("script row %d: want 3 columns, got %d", id, len(row))
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("script row %d: time: %w", id, err)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("script row %d: quantity: %w", id, err)
		}
		rec := sim.WorkloadRecord{ID: id, Kind: kind, Time: t, Quantity: qty}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("script row %d: %w", id, err)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Time < records[j].Time })
	return records, nil
}

// LoadScript parses the script at path.
func LoadScript(path string) ([]sim.WorkloadRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseScript(f)
}

// WriteScript writes records in script format.
func WriteScript(w io.Writer, records []sim.WorkloadRecord) error {
	writer := csv.NewWriter(w)
	for _, r := range records {
		kind := kindRequest
		if r.Kind == sim.RecordRestock {
			kind = kindRestock
		}
		row := []string{kind, strconv.FormatFloat(r.Time, 'g', -1, 64), strconv.Itoa(r.Quantity)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing script row %d: %w", r.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveScript writes records to path in script format.
func SaveScript(path string, records []sim.WorkloadRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating script: %w", err)
	}
	if err := WriteScript(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
