package policies

import (
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/types"
)

// PPOConfig configures the actor-critic pair and its clipped update.
type PPOConfig struct {
	ObservationSize int
	ActionSize      int
	// Hidden layer sizes for both networks; {64, 64} when nil.
	Hidden []int

	Gamma         float64
	ClipRatio     float64
	ActorLR       float64
	CriticLR      float64
	Epochs        int
	MinibatchSize int
	// MaxGradNorm clips the global gradient norm of each step; 0.5 when 0.
	MaxGradNorm float64
	Seed        uint64
}

// PPOLearner is the actor-critic learner with a clipped trust-region
// update. Strictly on-policy: callers clear the buffer after every update.
type PPOLearner struct {
	cfg    PPOConfig
	actor  *GaussianActor
	critic *Critic
	rng    *rand.Rand
}

var _ types.Learner = &PPOLearner{}

// NewPPOLearner initializes both networks from the configured seed.
func NewPPOLearner(cfg PPOConfig) *PPOLearner {
	if cfg.Hidden == nil {
		cfg.Hidden = []int{64, 64}
	}
	if cfg.MaxGradNorm == 0 {
		cfg.MaxGradNorm = 0.5
	}
	src := rand.NewSource(cfg.Seed)
	rng := rand.New(src)
	return &PPOLearner{
		cfg:    cfg,
		actor:  NewGaussianActor(cfg.ObservationSize, cfg.ActionSize, cfg.Hidden, rng, src),
		critic: NewCritic(cfg.ObservationSize, cfg.Hidden, rng),
		rng:    rng,
	}
}

func (p *PPOLearner) SampleAction(obs []float64) ([]float64, float64) {
	return p.actor.Sample(obs)
}

func (p *PPOLearner) MeanAction(obs []float64) []float64 {
	return p.actor.Mean(obs)
}

// Value exposes the critic's estimate, used by tests and diagnostics.
func (p *PPOLearner) Value(obs []float64) float64 {
	return p.critic.Value(obs)
}

// Update runs the full PPO update over the buffered transitions: one-step
// TD advantages, batch normalization, then Epochs passes of shuffled
// minibatches fitting the critic toward returns and ascending the clipped
// surrogate objective. Degenerate batches are skipped, not errors.
func (p *PPOLearner) Update(buffer *types.ExperienceBuffer) (types.UpdateStats, bool) {
	trans := buffer.Transitions()
	n := len(trans)
	if n < 2 {
		return types.UpdateStats{}, false
	}

	advantages := make([]float64, n)
	returns := make([]float64, n)
	for i, tr := range trans {
		v := p.critic.Value(tr.State)
		nextV := 0.0
		if !tr.Done {
			nextV = p.critic.Value(tr.NextState)
		}
		advantages[i] = tr.Reward + p.cfg.Gamma*nextV - v
		returns[i] = advantages[i] + v
	}

	mean, std := stat.MeanStdDev(advantages, nil)
	if std < 1e-8 || math.IsNaN(std) {
		return types.UpdateStats{}, false
	}
	for i := range advantages {
		advantages[i] = (advantages[i] - mean) / std
	}

	stats := types.UpdateStats{}
	totalActorLoss := 0.0
	totalCriticLoss := 0.0
	for epoch := 0; epoch < p.cfg.Epochs; epoch++ {
		perm := p.rng.Perm(n)
		for start := 0; start < n; start += p.cfg.MinibatchSize {
			end := start + p.cfg.MinibatchSize
			if end > n {
				end = n
			}
			batch := perm[start:end]
			if len(batch) < 2 {
				continue
			}
			aLoss, cLoss := p.updateMinibatch(trans, batch, advantages, returns)
			totalActorLoss += aLoss
			totalCriticLoss += cLoss
			stats.Batches++
		}
	}
	if stats.Batches > 0 {
		stats.ActorLoss = totalActorLoss / float64(stats.Batches)
		stats.CriticLoss = totalCriticLoss / float64(stats.Batches)
	}
	return stats, true
}

func (p *PPOLearner) updateMinibatch(trans []types.Transition, batch []int, advantages, returns []float64) (actorLoss, criticLoss float64) {
	size := float64(len(batch))
	eps := p.cfg.ClipRatio

	// critic regression toward returns
	cGrads := p.critic.net.NewGradients()
	for _, i := range batch {
		v, cache := p.critic.eval(trans[i].State)
		diff := v - returns[i]
		criticLoss += diff * diff
		p.critic.backward(cache, 2*diff/size, cGrads)
	}
	criticLoss /= size
	cGrads.ClipNorm(p.cfg.MaxGradNorm)
	p.critic.net.ApplyAdam(cGrads, p.cfg.CriticLR)

	// clipped surrogate ascent
	aGrads := p.actor.net.NewGradients()
	for _, i := range batch {
		tr := trans[i]
		adv := advantages[i]
		ev := p.actor.eval(tr.State)
		logProb := ev.logProb(tr.Action)
		ratio := math.Exp(logProb - tr.LogProb)

		surr := ratio * adv
		clipped := clampFloat(ratio, 1-eps, 1+eps) * adv
		actorLoss += -math.Min(surr, clipped)

		// no gradient once the clip is active on the winning branch
		if (adv > 0 && ratio > 1+eps) || (adv < 0 && ratio < 1-eps) {
			continue
		}
		p.actor.backward(ev, tr.Action, -adv*ratio/size, aGrads)
	}
	actorLoss /= size
	aGrads.ClipNorm(p.cfg.MaxGradNorm)
	p.actor.net.ApplyAdam(aGrads, p.cfg.ActorLR)

	return actorLoss, criticLoss
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// learnerSnapshot is the serialized parameter set of both networks.
type learnerSnapshot struct {
	Actor  networkSnapshot `json:"actor"`
	Critic networkSnapshot `json:"critic"`
}

// Snapshot serializes both networks' parameters to JSON.
func (p *PPOLearner) Snapshot() ([]byte, error) {
	s := learnerSnapshot{
		Actor:  p.actor.net.snapshot(),
		Critic: p.critic.net.snapshot(),
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces both networks' parameters from a snapshot produced by
// Snapshot. Shapes must match the configured architecture.
func (p *PPOLearner) Restore(data []byte) error {
	var s learnerSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := p.actor.net.restore(s.Actor); err != nil {
		return fmt.Errorf("restore actor: %w", err)
	}
	if err := p.critic.net.restore(s.Critic); err != nil {
		return fmt.Errorf("restore critic: %w", err)
	}
	return nil
}
