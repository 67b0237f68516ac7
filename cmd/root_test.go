package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binsim/binsim/sim"
	"github.com/binsim/binsim/sim/sweep"
	"github.com/binsim/binsim/sim/trace"
	"github.com/binsim/binsim/sim/workload"
)

// newExperimentCmd registers the experiment flags on a throwaway command.
// The flags share package variables with runCmd, so --config is reset after
// the test.
func newExperimentCmd(t *testing.T) *cobra.Command {
	t.Helper()
	t.Cleanup(func() { configPath = "" })
	cmd := &cobra.Command{Use: "test"}
	addExperimentFlags(cmd)
	return cmd
}

func TestExperimentConfig_DefaultsWithoutFlags(t *testing.T) {
	cmd := newExperimentCmd(t)

	cfg, err := experimentConfig(cmd)

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultExperimentConfig(), cfg)
}

func TestExperimentConfig_FlagsOverrideFile(t *testing.T) {
	// GIVEN a config file setting bins and stock
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  bins: 2\n  stock: 100\n"), 0644))
	cmd := newExperimentCmd(t)
	require.NoError(t, cmd.Flags().Set("config", path))

	// WHEN --bins is also given
	require.NoError(t, cmd.Flags().Set("bins", "5"))
	cfg, err := experimentConfig(cmd)

	// THEN the flag wins and the file fills in the rest
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Pool.Bins)
	assert.Equal(t, 100, cfg.Pool.Stock)
}

func TestExperimentConfig_InvalidFlag(t *testing.T) {
	cmd := newExperimentCmd(t)
	require.NoError(t, cmd.Flags().Set("controller", "fuzzy"))

	_, err := experimentConfig(cmd)

	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	s := sim.NewSummary()
	s.RequestsIssued = 2
	s.RequestsSatisfied = 1
	s.RequestsGivenUp = 1
	s.SuccessRate = 0.5
	s.FinalPoolSize = 3
	var buf bytes.Buffer

	require.NoError(t, printSummary(&buf, s, "", 1500*time.Millisecond))

	assert.Contains(t, buf.String(), "=== Simulation Metrics ===")
	assert.Contains(t, buf.String(), "1/2 requests satisfied (50.00%), 1 given up, final pool 3 bins")
}

func TestPrintTraceSummary(t *testing.T) {
	var buf bytes.Buffer
	printTraceSummary(&buf, &trace.TraceSummary{TotalDecisions: 4, Grows: 1, Shrinks: 2, MinSize: 1, MaxSize: 3})

	assert.Contains(t, buf.String(), "Decisions        : 4 (1 grows, 2 shrinks)")
	assert.NotContains(t, buf.String(), "Outcomes")
}

func TestRunCommand_WritesOutputs(t *testing.T) {
	// GIVEN a small generated workload in a scratch directory
	dir := t.TempDir()
	chdir(t, dir)
	spec := workload.DefaultGeneratorSpec()
	spec.NumRecords = 100
	records, err := workload.Generate(spec)
	require.NoError(t, err)
	require.NoError(t, workload.SaveScript("workload.csv", records))

	// WHEN the run command executes with every export enabled
	rootCmd.SetArgs([]string{
		"run",
		"--workload", "workload.csv",
		"--bins", "2",
		"--controller", "pid",
		"--trace-level", "outcomes",
		"--results-path", "summary.json",
		"--timelog-csv", "timelog.csv",
		"--sqlite", "run.sqlite3",
	})
	require.NoError(t, rootCmd.Execute())

	// THEN every output file exists and the summary counts the requests
	for _, name := range []string{"timelog.csv", "run.sqlite3"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)
	var summary sim.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	requests := 0
	for _, r := range records {
		if r.Kind == sim.RecordRequest {
			requests++
		}
	}
	assert.Equal(t, requests, summary.RequestsIssued)
	assert.Equal(t, summary.RequestsIssued, summary.RequestsSatisfied+summary.RequestsGivenUp)
}

func TestGenerateCommand_WritesScript(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	rootCmd.SetArgs([]string{"generate", "--records", "40", "--seed", "3", "-o", "gen.csv"})
	require.NoError(t, rootCmd.Execute())

	records, err := workload.LoadScript(filepath.Join(dir, "gen.csv"))
	require.NoError(t, err)
	assert.Len(t, records, 41)
	assert.Equal(t, sim.RecordRestock, records[0].Kind)
}

func TestSweepCommand_FromRows(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	rows := []sweep.Row{
		{ArrivalRate: 1, Bins: 1, Utilization: 0.08, ResponseTime: 5},
		{ArrivalRate: 1, Bins: 2, Utilization: 0.04, ResponseTime: 2},
	}
	f, err := os.Create("rows.csv")
	require.NoError(t, err)
	require.NoError(t, sweep.WriteRows(f, rows))
	require.NoError(t, f.Close())

	rootCmd.SetArgs([]string{"sweep", "--from-rows", "rows.csv", "--rows-csv", "copy.csv"})
	require.NoError(t, rootCmd.Execute())

	f, err = os.Open(filepath.Join(dir, "copy.csv"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	copied, err := sweep.ReadRows(f)
	require.NoError(t, err)
	assert.Equal(t, rows, copied)
}
