package sim

import "fmt"

// RecordKind distinguishes workload records.
type RecordKind string

const (
	RecordRequest RecordKind = "request"
	RecordRestock RecordKind = "restock"
)

// WorkloadRecord is one timestamped workload entry. Records reach the
// Simulator sorted by Time; ID is the stable ordinal from the source script.
type WorkloadRecord struct {
	ID       int
	Kind     RecordKind
	Time     float64
	Quantity int
}

// Validate checks a single record.
func (r WorkloadRecord) Validate() error {
	if r.Kind != RecordRequest && r.Kind != RecordRestock {
		return fmt.Errorf("record %d: unknown kind %q", r.ID, r.Kind)
	}
	if r.Time < 0 {
		return fmt.Errorf("record %d: negative time %v", r.ID, r.Time)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("record %d: %w", r.ID, ErrInvalidQuantity)
	}
	return nil
}

// validateWorkload checks every record and that times never decrease.
func validateWorkload(records []WorkloadRecord) error {
	prev := 0.0
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		if i > 0 && r.Time < prev {
			return fmt.Errorf("record %d: time %v before previous record time %v", r.ID, r.Time, prev)
		}
		prev = r.Time
	}
	return nil
}
