package types

import (
	"context"
	"fmt"
	"math"
)

// Trainer drives the on-policy loop: sample an action from the current
// policy, step the environment, buffer the transition, and run a PPO
// update whenever enough experience has accumulated. The buffer is fully
// cleared after each update.
//
// The loop is single threaded: collection and updates never overlap, so
// the learner's parameters are only ever mutated between steps.
type Trainer struct {
	cfg     TrainerConfig
	env     Environment
	learner Learner

	buffer    *ExperienceBuffer
	reporters []Reporter
	store     CheckpointStore

	window    *RewardWindow
	bestAvg   float64
	hasBest   bool
	lastStats UpdateStats
}

// NewTrainer validates the configuration and builds a trainer.
func NewTrainer(cfg TrainerConfig, env Environment, learner Learner) (*Trainer, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trainer config: %w", err)
	}
	return &Trainer{
		cfg:     cfg,
		env:     env,
		learner: learner,
		buffer:  NewExperienceBuffer(),
		window:  NewRewardWindow(cfg.RewardWindow),
		bestAvg: math.Inf(-1),
	}, nil
}

// AddReporter subscribes a consumer at the reporting boundary.
func (t *Trainer) AddReporter(r Reporter) {
	t.reporters = append(t.reporters, r)
}

// SetCheckpointStore enables best/final snapshot persistence.
func (t *Trainer) SetCheckpointStore(s CheckpointStore) {
	t.store = s
}

// Learner returns the learner being trained.
func (t *Trainer) Learner() Learner {
	return t.learner
}

// Run executes the configured number of episodes. Cancellation is checked
// between episodes; a single step never blocks.
func (t *Trainer) Run(ctx context.Context) error {
	for episode := 0; episode < t.cfg.Episodes; episode++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		report, err := t.runEpisode(episode)
		if err != nil {
			return fmt.Errorf("episode %d: %w", episode, err)
		}

		t.window.Push(report.TotalReward)
		report.AvgReward = t.window.Average()
		for _, r := range t.reporters {
			r.Report(report)
		}

		fmt.Printf("\rSpecies: %s, Episode: %d/%d, Reward: %8.2f, Avg: %8.2f",
			t.cfg.Species, episode+1, t.cfg.Episodes, report.TotalReward, report.AvgReward)

		// early policies are too noisy to be worth keeping
		if episode+1 > t.cfg.Warmup && report.AvgReward > t.bestAvg {
			t.bestAvg = report.AvgReward
			t.hasBest = true
			if err := t.saveCheckpoint(TagBest); err != nil {
				return err
			}
		}
	}
	fmt.Println("")
	if err := t.saveCheckpoint(TagFinal); err != nil {
		return err
	}
	return nil
}

// BestAverage returns the best trailing-average reward seen after warmup
// and whether one has been recorded yet.
func (t *Trainer) BestAverage() (float64, bool) {
	return t.bestAvg, t.hasBest
}

func (t *Trainer) runEpisode(episode int) (EpisodeReport, error) {
	obs, err := t.env.Reset()
	if err != nil {
		return EpisodeReport{}, fmt.Errorf("reset: %w", err)
	}

	total := 0.0
	steps := 0
	var final Info
	for {
		action, logProb := t.learner.SampleAction(obs)
		res, err := t.env.Step(action)
		if err != nil {
			return EpisodeReport{}, fmt.Errorf("step: %w", err)
		}
		t.buffer.Append(Transition{
			State:     obs,
			Action:    action,
			Reward:    res.Reward,
			NextState: res.Observation,
			Done:      res.Done,
			LogProb:   logProb,
		})
		total += res.Reward
		steps++
		obs = res.Observation
		final = res.Info

		if t.buffer.Len() >= t.cfg.BatchSize {
			if stats, ok := t.learner.Update(t.buffer); ok {
				t.lastStats = stats
			}
			t.buffer.Clear()
		}

		if res.Done || res.Truncated {
			break
		}
	}

	return EpisodeReport{
		Episode:     episode,
		Species:     t.cfg.Species,
		TotalReward: total,
		ActorLoss:   t.lastStats.ActorLoss,
		CriticLoss:  t.lastStats.CriticLoss,
		Steps:       steps,
		FinalState:  final,
	}, nil
}

func (t *Trainer) saveCheckpoint(tag string) error {
	if t.store == nil {
		return nil
	}
	data, err := t.learner.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot policy: %w", err)
	}
	if err := t.store.Save(t.cfg.Species, tag, data); err != nil {
		return fmt.Errorf("save %s checkpoint: %w", tag, err)
	}
	return nil
}
