package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/binsim/binsim/sim"
	"github.com/binsim/binsim/sim/export"
	"github.com/binsim/binsim/sim/trace"
	"github.com/binsim/binsim/sim/workload"
)

var (
	// CLI flags shared by every command
	logLevel string // Log verbosity level

	// CLI flags for the experiment
	configPath   string  // YAML experiment config
	workloadPath string  // CSV workload script
	seed         int64   // Seed for every random stream
	bins         int     // Initial number of bins
	stock        int     // Initial stock
	serviceTime  float64 // Mean service time of a bin (seconds)
	sampleWidth  float64 // Recorder bucket width (seconds)
	end          float64 // Experiment end (seconds); 0 = last workload timestamp
	policy       string  // Controller policy
	interval     float64 // Seconds between adapt ticks

	// CLI flags for output
	traceLevel  string // Trace verbosity
	resultsPath string // Summary JSON file
	sqlitePath  string // SQLite export file
	timelogPath string // Timelog CSV file
	exportDB    bool   // Export to SQLite with a generated file name
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "binsim",
	Short: "Discrete-event simulator for self-adaptive stock-reservation pools",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(); err != nil {
			return err
		}
		if !cmd.Flags().Changed("log") {
			if env := os.Getenv(envLogLevel); env != "" {
				logLevel = env
			}
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// experimentConfig loads --config (or the defaults) and applies any flag the
// user set explicitly on top.
func experimentConfig(cmd *cobra.Command) (sim.ExperimentConfig, error) {
	cfg := sim.DefaultExperimentConfig()
	if configPath != "" {
		var err error
		if cfg, err = sim.LoadExperimentConfig(configPath); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("bins") {
		cfg.Pool.Bins = bins
	}
	if flags.Changed("stock") {
		cfg.Pool.Stock = stock
	}
	if flags.Changed("service-time") {
		cfg.Pool.ServiceTime = serviceTime
	}
	if flags.Changed("sample-width") {
		cfg.Recorder.SampleWidth = sampleWidth
	}
	if flags.Changed("end") {
		cfg.Recorder.End = end
	}
	if flags.Changed("controller") {
		cfg.Controller.Policy = policy
	}
	if flags.Changed("interval") {
		cfg.Controller.Interval = interval
	}
	return cfg, cfg.Validate()
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload script through the simulated pool",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := experimentConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if workloadPath == "" {
			logrus.Fatalf("Workload script not provided. Exiting simulation.")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q", traceLevel)
		}
		records, err := workload.LoadScript(workloadPath)
		if err != nil {
			logrus.Fatalf("Failed to load workload: %v", err)
		}

		logrus.Infof("Starting simulation with %d records, %d bins, controller=%s, seed=%d",
			len(records), cfg.Pool.Bins, cfg.Controller.Policy, cfg.Seed)
		startTime := time.Now()

		s, err := sim.NewSimulator(sim.SimConfig{
			Experiment: cfg,
			Trace:      trace.TraceConfig{Level: trace.TraceLevel(traceLevel)},
		}, records, nil)
		if err != nil {
			logrus.Fatalf("Failed to build simulator: %v", err)
		}
		if err := s.Run(); err != nil {
			logrus.Fatalf("Simulation aborted: %v", err)
		}

		if err := printSummary(os.Stdout, s.Summary, resultsPath, time.Since(startTime)); err != nil {
			logrus.Fatalf("Failed to save results: %v", err)
		}
		if traceLevel != "" && traceLevel != string(trace.TraceLevelNone) {
			printTraceSummary(os.Stdout, trace.Summarize(s.Trace))
		}
		if timelogPath != "" {
			if err := export.SaveTimelogCSV(timelogPath, s.Recorder); err != nil {
				logrus.Fatalf("Failed to write timelog: %v", err)
			}
		}
		if sqlitePath != "" || exportDB {
			w, err := export.NewSQLiteWriter(sqlitePath)
			if err != nil {
				logrus.Fatalf("Failed to create database: %v", err)
			}
			defer func() { _ = w.Close() }()
			if err := w.WriteRun(s.Recorder, s.Summary, s.Trace); err != nil {
				logrus.Fatalf("Failed to export run: %v", err)
			}
		}

		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addExperimentFlags registers the flags that override the YAML experiment config.
func addExperimentFlags(cmd *cobra.Command) {
	d := sim.DefaultExperimentConfig()
	cmd.Flags().StringVar(&configPath, "config", "", "YAML experiment config (flags override it)")
	cmd.Flags().Int64Var(&seed, "seed", d.Seed, "Seed for every random stream")
	cmd.Flags().IntVar(&bins, "bins", d.Pool.Bins, "Initial number of bins")
	cmd.Flags().IntVar(&stock, "stock", d.Pool.Stock, "Initial stock spread over the bins")
	cmd.Flags().Float64Var(&serviceTime, "service-time", d.Pool.ServiceTime, "Mean bin service time (seconds)")
	cmd.Flags().Float64Var(&sampleWidth, "sample-width", d.Recorder.SampleWidth, "Recorder bucket width (seconds)")
	cmd.Flags().Float64Var(&end, "end", d.Recorder.End, "Experiment end (seconds); 0 = last workload timestamp")
	cmd.Flags().StringVar(&policy, "controller", d.Controller.Policy, "Controller policy (pi, pid, dummy, static)")
	cmd.Flags().Float64Var(&interval, "interval", d.Controller.Interval, "Seconds between controller ticks; 0 disables adaptation")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	addExperimentFlags(runCmd)
	runCmd.Flags().StringVar(&workloadPath, "workload", "", "CSV workload script ('+'/'-', time, quantity)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Trace verbosity (none, decisions, outcomes)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "Also write the summary JSON to this file")
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Export the run to this SQLite file (must not exist)")
	runCmd.Flags().BoolVar(&exportDB, "export-db", false, "Export the run to a SQLite file with a generated name")
	runCmd.Flags().StringVar(&timelogPath, "timelog-csv", "", "Write per-bucket averages to this CSV file")

	rootCmd.AddCommand(runCmd)
}
