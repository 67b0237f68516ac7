package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions  int
	Resizes         int
	Grows           int
	Shrinks         int
	MinSize         int
	MaxSize         int
	MeanUtilization float64
	Outcomes        int
	SatisfiedCount  int
	GivenUpCount    int
	MeanBinsChecked float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Adaptations)
	if len(st.Adaptations) > 0 {
		summary.MinSize = st.Adaptations[0].NewSize
		totalUtil := 0.0
		for _, a := range st.Adaptations {
			totalUtil += a.Utilization
			summary.MinSize = min(summary.MinSize, a.NewSize)
			summary.MaxSize = max(summary.MaxSize, a.NewSize)
			switch {
			case a.NewSize > a.OldSize:
				summary.Grows++
			case a.NewSize < a.OldSize:
				summary.Shrinks++
			}
		}
		summary.Resizes = summary.Grows + summary.Shrinks
		summary.MeanUtilization = totalUtil / float64(len(st.Adaptations))
	}

	summary.Outcomes = len(st.Outcomes)
	if len(st.Outcomes) > 0 {
		totalChecked := 0
		for _, o := range st.Outcomes {
			totalChecked += o.BinsChecked
			if o.Satisfied {
				summary.SatisfiedCount++
			} else {
				summary.GivenUpCount++
			}
		}
		summary.MeanBinsChecked = float64(totalChecked) / float64(len(st.Outcomes))
	}

	return summary
}
