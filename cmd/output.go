package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/binsim/binsim/sim"
	"github.com/binsim/binsim/sim/trace"
)

// printSummary writes the metrics JSON followed by a colored one-line verdict.
func printSummary(w io.Writer, s *sim.Summary, resultsPath string, elapsed time.Duration) error {
	if err := s.SaveResults(w, resultsPath); err != nil {
		return err
	}
	verdict := color.New(color.FgGreen, color.Bold)
	if s.RequestsGivenUp > 0 {
		verdict = color.New(color.FgYellow, color.Bold)
	}
	if s.RequestsIssued > 0 && s.RequestsSatisfied == 0 {
		verdict = color.New(color.FgRed, color.Bold)
	}
	_, err := verdict.Fprintf(w, "%d/%d requests satisfied (%.2f%%), %d given up, final pool %d bins, wall time %s\n",
		s.RequestsSatisfied, s.RequestsIssued, 100*s.SuccessRate, s.RequestsGivenUp, s.FinalPoolSize,
		elapsed.Round(time.Millisecond))
	return err
}

// printTraceSummary writes the aggregate view of the decision trace.
func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	header := color.New(color.FgCyan, color.Bold)
	_, _ = header.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Decisions        : %d (%d grows, %d shrinks)\n", ts.TotalDecisions, ts.Grows, ts.Shrinks)
	fmt.Fprintf(w, "Pool size range  : %d..%d\n", ts.MinSize, ts.MaxSize)
	fmt.Fprintf(w, "Mean utilization : %.4f\n", ts.MeanUtilization)
	if ts.Outcomes > 0 {
		fmt.Fprintf(w, "Outcomes         : %d (%d satisfied, %d given up)\n", ts.Outcomes, ts.SatisfiedCount, ts.GivenUpCount)
		fmt.Fprintf(w, "Mean bins checked: %.3f\n", ts.MeanBinsChecked)
	}
}
