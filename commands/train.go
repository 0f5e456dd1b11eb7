package commands

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/checkpoint"
	"github.com/Fatijj/SpaceAgriOptimizer-NEW/dashboard"
	"github.com/Fatijj/SpaceAgriOptimizer-NEW/plant"
	"github.com/Fatijj/SpaceAgriOptimizer-NEW/policies"
	"github.com/Fatijj/SpaceAgriOptimizer-NEW/types"
	"github.com/Fatijj/SpaceAgriOptimizer-NEW/util"
)

type trainOptions struct {
	batchSize     int
	minibatchSize int
	gamma         float64
	clipRatio     float64
	actorLR       float64
	criticLR      float64
	epochs        int
	noiseScale    float64
	datasetPath   string
	serveAddr     string
	storeBackend  string
	redisAddr     string
}

func buildStore(opts *trainOptions, saveDir string) (types.CheckpointStore, error) {
	switch opts.storeBackend {
	case "file":
		return checkpoint.NewFileStore(path.Join(saveDir, "checkpoints")), nil
	case "redis":
		return checkpoint.NewRedisStore(opts.redisAddr), nil
	}
	return nil, fmt.Errorf("unknown checkpoint backend %q", opts.storeBackend)
}

func buildSimulator(speciesName string, opts *trainOptions, envSeed uint64) (*plant.GrowthSimulator, error) {
	var dataset *plant.Dataset
	if opts.datasetPath != "" {
		ds, err := plant.LoadDataset(opts.datasetPath)
		if err != nil {
			// a missing reference dataset is not fatal, defaults apply
			fmt.Printf("dataset unavailable (%v), using default resets\n", err)
		} else {
			dataset = ds
		}
	}
	return plant.NewGrowthSimulator(plant.SimulatorConfig{
		Species:    speciesName,
		Horizon:    horizon,
		NoiseScale: opts.noiseScale,
		Seed:       envSeed,
		Dataset:    dataset,
	})
}

func buildTrainer(speciesName string, opts *trainOptions) (*types.Trainer, error) {
	env, err := buildSimulator(speciesName, opts, seed)
	if err != nil {
		return nil, err
	}
	learner := policies.NewPPOLearner(policies.PPOConfig{
		ObservationSize: env.ObservationSize(),
		ActionSize:      env.ActionSize(),
		Gamma:           opts.gamma,
		ClipRatio:       opts.clipRatio,
		ActorLR:         opts.actorLR,
		CriticLR:        opts.criticLR,
		Epochs:          opts.epochs,
		MinibatchSize:   opts.minibatchSize,
		Seed:            seed + 1,
	})
	return types.NewTrainer(types.TrainerConfig{
		Species:       speciesName,
		Episodes:      episodes,
		BatchSize:     opts.batchSize,
		MinibatchSize: opts.minibatchSize,
		Gamma:         opts.gamma,
		ClipRatio:     opts.clipRatio,
		ActorLR:       opts.actorLR,
		CriticLR:      opts.criticLR,
		Epochs:        opts.epochs,
		Seed:          seed,
	}, env, learner)
}

func runTraining(ctx context.Context, opts *trainOptions) error {
	trainer, err := buildTrainer(species, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(saveDir, 0755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}

	store, err := buildStore(opts, saveDir)
	if err != nil {
		return err
	}
	trainer.SetCheckpointStore(store)

	// jsonl record of every episode for external tooling
	reportsFile := path.Join(saveDir, "episodes.jsonl")
	trainer.AddReporter(types.ReporterFunc(func(r types.EpisodeReport) {
		util.AppendJSONLine(reportsFile, r)
	}))

	analyzer := types.NewRewardAnalyzer()
	health := types.NewHealthAnalyzer()
	trainer.AddReporter(types.ReporterFunc(func(r types.EpisodeReport) {
		analyzer.Analyze(0, species, r)
		health.Analyze(0, species, r)
	}))

	if opts.serveAddr != "" {
		srv := dashboard.NewServer(opts.serveAddr)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Stop(shutdownCtx)
		}()
		trainer.AddReporter(srv)
		fmt.Printf("Dashboard listening on %s\n", opts.serveAddr)
	}

	fmt.Printf("Training species: %s\n", species)
	if err := trainer.Run(ctx); err != nil {
		return err
	}
	if best, ok := trainer.BestAverage(); ok {
		fmt.Printf("Best trailing average reward: %.2f\n", best)
	}

	types.RewardPlotter(saveDir)(0, []string{species}, []types.DataSet{analyzer.DataSet()})
	types.HealthPlotter(saveDir)(0, []string{species}, []types.DataSet{health.DataSet()})
	return nil
}

// TrainCommand trains a policy for one species and checkpoints the best
// and final parameter sets.
func TrainCommand() *cobra.Command {
	opts := &trainOptions{}
	cmd := &cobra.Command{
		Use: "train",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraining(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().IntVar(&opts.batchSize, "batch-size", types.DefaultBatchSize, "Minimum buffered transitions before an update")
	cmd.PersistentFlags().IntVar(&opts.minibatchSize, "minibatch-size", types.DefaultMinibatchSize, "Minibatch size within an update")
	cmd.PersistentFlags().Float64Var(&opts.gamma, "gamma", types.DefaultGamma, "Discount factor")
	cmd.PersistentFlags().Float64Var(&opts.clipRatio, "clip", types.DefaultClipRatio, "PPO clip ratio")
	cmd.PersistentFlags().Float64Var(&opts.actorLR, "actor-lr", types.DefaultActorLR, "Actor learning rate")
	cmd.PersistentFlags().Float64Var(&opts.criticLR, "critic-lr", types.DefaultCriticLR, "Critic learning rate")
	cmd.PersistentFlags().IntVar(&opts.epochs, "epochs", types.DefaultEpochs, "Optimization epochs per update")
	cmd.PersistentFlags().Float64Var(&opts.noiseScale, "noise", 1.0, "Scale of the environment process noise (0 disables)")
	cmd.PersistentFlags().StringVar(&opts.datasetPath, "dataset", "", "CSV reference dataset for episode resets")
	cmd.PersistentFlags().StringVar(&opts.serveAddr, "serve", "", "Serve a live dashboard on this address (e.g. localhost:8080)")
	cmd.PersistentFlags().StringVar(&opts.storeBackend, "checkpoint", "file", "Checkpoint backend: file or redis")
	cmd.PersistentFlags().StringVar(&opts.redisAddr, "redis-addr", "127.0.0.1:6379", "Redis address for the redis checkpoint backend")
	return cmd
}
