package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/binsim/binsim/sim/sweep"
	"github.com/binsim/binsim/sim/workload"
)

var (
	sweepRates    []float64 // Arrival rates (requests per second)
	sweepMaxBins  int       // Largest static pool size
	sweepRecords  int       // Records per generated workload
	sweepRowsPath string    // CSV output for the raw measurements
	sweepRowsIn   string    // Reuse a previous sweep instead of running one
)

// sweepCmd runs static pools across arrival rates and reports the
// utilization set-point with the lowest regret
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep static pool sizes across arrival rates and find the best utilization set-point",
	Run: func(cmd *cobra.Command, args []string) {
		var rows []sweep.Row
		if sweepRowsIn != "" {
			f, err := os.Open(sweepRowsIn)
			if err != nil {
				logrus.Fatalf("Failed to open sweep rows: %v", err)
			}
			rows, err = sweep.ReadRows(f)
			_ = f.Close()
			if err != nil {
				logrus.Fatalf("Failed to read sweep rows: %v", err)
			}
		} else {
			exp, err := experimentConfig(cmd)
			if err != nil {
				logrus.Fatalf("Invalid configuration: %v", err)
			}
			gen := workload.DefaultGeneratorSpec()
			gen.NumRecords = sweepRecords
			rows, err = sweep.Run(sweep.Config{
				Experiment:   exp,
				Generator:    gen,
				ArrivalRates: sweepRates,
				MaxBins:      sweepMaxBins,
			})
			if err != nil {
				logrus.Fatalf("Sweep failed: %v", err)
			}
		}

		if sweepRowsPath != "" {
			f, err := os.Create(sweepRowsPath)
			if err != nil {
				logrus.Fatalf("Failed to create %s: %v", sweepRowsPath, err)
			}
			err = sweep.WriteRows(f, rows)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				logrus.Fatalf("Failed to write sweep rows: %v", err)
			}
		}

		best, err := sweep.OptimalUtilization(rows, sweep.DefaultCandidates())
		if err != nil {
			logrus.Fatalf("Failed to find optimal utilization: %v", err)
		}
		regret, err := sweep.Regret(rows, best)
		if err != nil {
			logrus.Fatalf("Failed to compute regret: %v", err)
		}
		_, _ = color.New(color.FgCyan, color.Bold).Println("=== Sweep Result ===")
		fmt.Printf("Rows               : %d\n", len(rows))
		fmt.Printf("Optimal set-point  : %.4f\n", best)
		fmt.Printf("Regret at set-point: %.6f\n", regret)
	},
}

func init() {
	addExperimentFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepRates, "rates", []float64{1, 2, 5, 10, 20}, "Arrival rates in requests per second")
	sweepCmd.Flags().IntVar(&sweepMaxBins, "max-bins", 8, "Largest static pool size")
	sweepCmd.Flags().IntVar(&sweepRecords, "records", 2000, "Records per generated workload")
	sweepCmd.Flags().StringVar(&sweepRowsPath, "rows-csv", "", "Write raw sweep rows to this CSV file")
	sweepCmd.Flags().StringVar(&sweepRowsIn, "from-rows", "", "Analyse an existing rows CSV instead of running")

	rootCmd.AddCommand(sweepCmd)
}
