package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/policies"
	"github.com/Fatijj/SpaceAgriOptimizer-NEW/types"
)

// EvaluateCommand replays a stored policy without learning updates and
// prints per-episode results.
func EvaluateCommand() *cobra.Command {
	opts := &trainOptions{}
	var tag string
	cmd := &cobra.Command{
		Use: "evaluate",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tag != types.TagBest && tag != types.TagFinal {
				return fmt.Errorf("unknown checkpoint tag %q", tag)
			}

			env, err := buildSimulator(species, opts, seed)
			if err != nil {
				return err
			}
			learner := policies.NewPPOLearner(policies.PPOConfig{
				ObservationSize: env.ObservationSize(),
				ActionSize:      env.ActionSize(),
				Seed:            seed + 1,
			})

			store, err := buildStore(opts, saveDir)
			if err != nil {
				return err
			}
			data, err := store.Load(species, tag)
			if err != nil {
				return err
			}
			if err := learner.Restore(data); err != nil {
				return err
			}

			runner := types.NewEvaluationRunner(species, env, learner)
			results, err := runner.Run(cmd.Context(), episodes)
			if err != nil {
				return err
			}

			total := 0.0
			for _, r := range results {
				total += r.TotalReward
				fmt.Printf("Episode %3d: reward %8.2f, health %.2f, height %6.1f, fruits %d, end: %s\n",
					r.Episode+1, r.TotalReward, r.FinalHealth, r.FinalHeight, r.Fruits, r.Terminal)
			}
			if len(results) > 0 {
				fmt.Printf("Average reward over %d episodes: %.2f\n", len(results), total/float64(len(results)))
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&tag, "tag", types.TagBest, "Checkpoint tag to load: best or final")
	cmd.PersistentFlags().Float64Var(&opts.noiseScale, "noise", 0, "Scale of the environment process noise (0 disables)")
	cmd.PersistentFlags().StringVar(&opts.datasetPath, "dataset", "", "CSV reference dataset for episode resets")
	cmd.PersistentFlags().StringVar(&opts.storeBackend, "checkpoint", "file", "Checkpoint backend: file or redis")
	cmd.PersistentFlags().StringVar(&opts.redisAddr, "redis-addr", "127.0.0.1:6379", "Redis address for the redis checkpoint backend")
	return cmd
}
