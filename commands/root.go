// Package commands wires the training, evaluation and comparison entry
// points into a cobra command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/plant"
)

var (
	episodes int
	horizon  int
	saveDir  string
	runs     int
	seed     uint64
	species  string
)

// GetRootCommand builds the command line argument parser with all
// subcommands attached.
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "agrioptimizer",
		Short: "Train and evaluate environment-control policies for space agriculture",
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 500, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", plant.DefaultHorizon, "Step cap of each episode")
	rootCommand.PersistentFlags().StringVarP(&saveDir, "save", "s", "results", "Save result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 42, "Random seed for the environment and the networks")
	rootCommand.PersistentFlags().StringVar(&species, "species", plant.DefaultSpecies, "Plant species to simulate")
	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(EvaluateCommand())
	rootCommand.AddCommand(CompareCommand())
	return rootCommand
}
