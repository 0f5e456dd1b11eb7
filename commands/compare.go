package commands

import (
	"path"

	"github.com/spf13/cobra"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/plant"
	"github.com/Fatijj/SpaceAgriOptimizer-NEW/types"
)

// CompareCommand trains one policy per species side by side and plots the
// learning curves against each other.
func CompareCommand() *cobra.Command {
	opts := &trainOptions{}
	var speciesList []string
	cmd := &cobra.Command{
		Use: "compare",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(speciesList) == 0 {
				speciesList = plant.SpeciesNames()
			}

			c := types.NewComparison(runs)
			c.AddAnalysis("Reward", types.NewRewardAnalyzer(), types.RewardPlotter(path.Join(saveDir, "plots")))
			c.AddAnalysis("Health", types.NewHealthAnalyzer(), types.HealthPlotter(path.Join(saveDir, "plots")))

			for _, name := range speciesList {
				speciesName := name
				c.AddExperiment(&types.Experiment{
					Name: speciesName,
					Make: func() (*types.Trainer, error) {
						return buildTrainer(speciesName, opts)
					},
				})
			}
			return c.Run(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringSliceVar(&speciesList, "species-list", nil, "Species to compare (default: all known species)")
	cmd.PersistentFlags().IntVar(&opts.batchSize, "batch-size", types.DefaultBatchSize, "Minimum buffered transitions before an update")
	cmd.PersistentFlags().IntVar(&opts.minibatchSize, "minibatch-size", types.DefaultMinibatchSize, "Minibatch size within an update")
	cmd.PersistentFlags().Float64Var(&opts.gamma, "gamma", types.DefaultGamma, "Discount factor")
	cmd.PersistentFlags().Float64Var(&opts.clipRatio, "clip", types.DefaultClipRatio, "PPO clip ratio")
	cmd.PersistentFlags().Float64Var(&opts.actorLR, "actor-lr", types.DefaultActorLR, "Actor learning rate")
	cmd.PersistentFlags().Float64Var(&opts.criticLR, "critic-lr", types.DefaultCriticLR, "Critic learning rate")
	cmd.PersistentFlags().IntVar(&opts.epochs, "epochs", types.DefaultEpochs, "Optimization epochs per update")
	cmd.PersistentFlags().Float64Var(&opts.noiseScale, "noise", 1.0, "Scale of the environment process noise (0 disables)")
	cmd.PersistentFlags().StringVar(&opts.datasetPath, "dataset", "", "CSV reference dataset for episode resets")
	return cmd
}
