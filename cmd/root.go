package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/ldar-sim/ldar-sim/sim"
	"github.com/ldar-sim/ldar-sim/sim/scenario"
)

var (
	// CLI flags
	scenarioPath string // Path to the YAML scenario file
	seed         int64  // Master seed; overrides the scenario's seed when set
	replicates   int    // Number of Monte Carlo replicates; overrides scenario
	logLevel     string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ldar-sim",
	Short: "Discrete-event Monte Carlo simulator for methane LDAR programs",
}

// runCmd executes the simulation using the scenario file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the LDAR simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if scenarioPath == "" {
			logrus.Fatalf("No scenario file provided. Exiting simulation.")
		}
		spec, err := scenario.Load(scenarioPath)
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}

		if cmd.Flags().Changed("seed") {
			spec.Seed = seed
		}
		if cmd.Flags().Changed("replicates") {
			spec.Replicates = replicates
		}
		n := spec.Replicates
		if n <= 0 {
			n = 1
		}

		logrus.Infof("Starting simulation: %d site(s), %d method(s), %d year(s), %d replicate(s), seed=%d",
			spec.Sites.Count, len(spec.Methods), spec.Years, n, spec.Seed)
		startTime := time.Now()

		key := sim.NewSimulationKey(spec.Seed)
		results, err := sim.RunReplicates(n, key, func(rep int, key sim.SimulationKey) (*sim.Simulator, error) {
			return scenario.Build(spec, key)
		})
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		for rep, metrics := range results {
			logrus.Infof("--- replicate %d ---", rep)
			metrics.Print()
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// validateCmd checks a scenario file without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a scenario file and exit",
	Run: func(cmd *cobra.Command, args []string) {
		if scenarioPath == "" {
			logrus.Fatalf("No scenario file provided.")
		}
		if _, err := scenario.Load(scenarioPath); err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}
		logrus.Infof("Scenario %s is valid.", scenarioPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Path to the YAML scenario file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Master RNG seed (overrides scenario)")
	runCmd.Flags().IntVar(&replicates, "replicates", 0, "Monte Carlo replicate count (overrides scenario)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
