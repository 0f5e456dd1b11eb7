package types

import (
	"context"
	"fmt"
)

// EvaluationResult records one frozen-policy episode.
type EvaluationResult struct {
	Episode     int     `json:"episode"`
	TotalReward float64 `json:"total_reward"`
	FinalHealth float64 `json:"final_health"`
	FinalHeight float64 `json:"final_height"`
	Fruits      int     `json:"fruits"`
	Steps       int     `json:"steps"`
	Terminal    string  `json:"terminal"`
}

// EvaluationRunner replays a frozen policy without learning updates.
// It always takes the policy's mean action, so runs are deterministic
// given a deterministic environment and seed.
type EvaluationRunner struct {
	env       Environment
	learner   Learner
	reporters []Reporter
	species   string
}

func NewEvaluationRunner(species string, env Environment, learner Learner) *EvaluationRunner {
	return &EvaluationRunner{env: env, learner: learner, species: species}
}

// AddReporter subscribes a consumer at the reporting boundary.
func (e *EvaluationRunner) AddReporter(r Reporter) {
	e.reporters = append(e.reporters, r)
}

// Run plays the given number of episodes and returns per-episode results.
// No experience is buffered and no gradients are applied.
func (e *EvaluationRunner) Run(ctx context.Context, episodes int) ([]EvaluationResult, error) {
	results := make([]EvaluationResult, 0, episodes)
	window := NewRewardWindow(DefaultRewardWindow)
	for episode := 0; episode < episodes; episode++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		obs, err := e.env.Reset()
		if err != nil {
			return results, fmt.Errorf("episode %d reset: %w", episode, err)
		}
		total := 0.0
		steps := 0
		var final Info
		for {
			action := e.learner.MeanAction(obs)
			res, err := e.env.Step(action)
			if err != nil {
				return results, fmt.Errorf("episode %d step: %w", episode, err)
			}
			total += res.Reward
			steps++
			obs = res.Observation
			final = res.Info
			if res.Done || res.Truncated {
				break
			}
		}

		results = append(results, EvaluationResult{
			Episode:     episode,
			TotalReward: total,
			FinalHealth: final.Health,
			FinalHeight: final.Height,
			Fruits:      final.Fruits,
			Steps:       steps,
			Terminal:    final.Terminal,
		})
		window.Push(total)
		for _, r := range e.reporters {
			r.Report(EpisodeReport{
				Episode:     episode,
				Species:     e.species,
				TotalReward: total,
				AvgReward:   window.Average(),
				Steps:       steps,
				FinalState:  final,
			})
		}
	}
	return results, nil
}
