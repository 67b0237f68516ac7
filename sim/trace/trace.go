package trace

// TraceLevel controls the verbosity of tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every controller decision.
	TraceLevelDecisions TraceLevel = "decisions"
	// TraceLevelOutcomes additionally captures every request outcome.
	TraceLevelOutcomes TraceLevel = "outcomes"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	TraceLevelOutcomes:  true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision and outcome records during a simulation.
type SimulationTrace struct {
	Config      TraceConfig
	Adaptations []AdaptRecord
	Outcomes    []OutcomeRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Adaptations: make([]AdaptRecord, 0),
		Outcomes:    make([]OutcomeRecord, 0),
	}
}

// RecordAdapt appends a controller decision record.
func (st *SimulationTrace) RecordAdapt(record AdaptRecord) {
	if st.Config.Level != TraceLevelDecisions && st.Config.Level != TraceLevelOutcomes {
		return
	}
	st.Adaptations = append(st.Adaptations, record)
}

// RecordOutcome appends a request outcome record.
func (st *SimulationTrace) RecordOutcome(record OutcomeRecord) {
	if st.Config.Level != TraceLevelOutcomes {
		return
	}
	st.Outcomes = append(st.Outcomes, record)
}
