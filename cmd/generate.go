package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/binsim/binsim/sim/workload"
)

var (
	generatorSpecPath string // YAML generator spec
	generateOutput    string // Output workload script
	generateRecords   int    // Overrides num_records
	generateSeed      int64  // Overrides seed
)

// generateCmd writes a synthetic workload script
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic workload script of Poisson requests and restocks",
	Run: func(cmd *cobra.Command, args []string) {
		spec := workload.DefaultGeneratorSpec()
		if generatorSpecPath != "" {
			var err error
			if spec, err = workload.LoadGeneratorSpec(generatorSpecPath); err != nil {
				logrus.Fatalf("Failed to load generator spec: %v", err)
			}
		}
		if cmd.Flags().Changed("records") {
			spec.NumRecords = generateRecords
		}
		if cmd.Flags().Changed("seed") {
			spec.Seed = generateSeed
		}

		records, err := workload.Generate(spec)
		if err != nil {
			logrus.Fatalf("Failed to generate workload: %v", err)
		}
		if generateOutput == "" || generateOutput == "-" {
			err = workload.WriteScript(os.Stdout, records)
		} else {
			err = workload.SaveScript(generateOutput, records)
		}
		if err != nil {
			logrus.Fatalf("Failed to write workload: %v", err)
		}
		logrus.Infof("Generated %d records", len(records))
	},
}

func init() {
	d := workload.DefaultGeneratorSpec()
	generateCmd.Flags().StringVar(&generatorSpecPath, "spec", "", "YAML generator spec (flags override it)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "-", "Output script path ('-' for stdout)")
	generateCmd.Flags().IntVar(&generateRecords, "records", d.NumRecords, "Number of records after the initial restock")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", d.Seed, "Generator seed")

	rootCmd.AddCommand(generateCmd)
}
