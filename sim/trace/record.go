// Package trace provides decision-trace recording for controller analysis.
// This package does not import sim; it holds plain data types.
package trace

// AdaptRecord captures a single controller decision at an adapt tick.
type AdaptRecord struct {
	Clock       float64
	Policy      string
	OldSize     int
	NewSize     int
	ReadyAt     float64 // when the reshaped pool becomes free; Clock if unchanged
	Utilization float64
	QueueTime   float64
	ServiceTime float64
	RequestRate float64
	BinsChecked float64
	Stock       int
}

// Resized reports whether the decision changed the pool size.
func (r AdaptRecord) Resized() bool {
	return r.OldSize != r.NewSize
}

// OutcomeRecord captures how a single request resolved.
type OutcomeRecord struct {
	RequestID   int
	Arrival     float64
	Completed   float64
	Requested   int
	Reserved    int // units the request ended up holding; 0 when given up
	BinsChecked int
	QueueTime   float64
	ServiceTime float64
	Satisfied   bool
}
