package plant

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/types"
)

// ActionSize is the number of actuator channels: temperature, light,
// water, radiation shielding and nutrient dosing.
const ActionSize = 5

// Per-channel physical effect of a full-scale action component.
const (
	tempDelta     = 2.0   // degrees C
	lightDelta    = 200.0 // light units
	waterDelta    = 10.0  // percent
	shieldDelta   = 4.0   // radiation reduction, positive components only
	nutrientDelta = 5.0   // percent, applied to N, P and K
)

// Health blend weights for the five optimality scores.
const (
	weightTemp      = 0.25
	weightLight     = 0.25
	weightWater     = 0.20
	weightRadiation = 0.15
	weightNutrients = 0.15
)

// Health smoothing: current = smoothKeep*previous + smoothBlend*target.
const (
	smoothKeep  = 0.7
	smoothBlend = 0.3
)

// Episode termination constants.
const (
	DefaultHorizon    = 50
	deathHealth       = 0.2
	harvestStageSteps = 30
)

// Process noise, scaled by the configured noise scale.
const (
	noiseCO2      = 20.0
	noiseO2       = 0.2
	noiseHumidity = 2.0
	noiseHealth   = 0.02
)

// SimulatorConfig configures a GrowthSimulator.
type SimulatorConfig struct {
	Species string
	// Horizon is the episode step cap; DefaultHorizon when zero.
	Horizon int
	// NoiseScale scales all stochastic terms. Zero disables them, which
	// makes episodes fully deterministic for a given action sequence.
	NoiseScale float64
	Seed       uint64
	// Dataset optionally seeds resets with reference records.
	Dataset *Dataset
}

// GrowthSimulator steps a simulated plant through one growing episode,
// producing shaped rewards for the trainer.
type GrowthSimulator struct {
	cfg     SimulatorConfig
	profile SpeciesProfile
	rng     *rand.Rand
	normal  distuv.Normal

	state         *EnvironmentState
	stepsFruiting int
}

var _ types.Environment = &GrowthSimulator{}

// NewGrowthSimulator validates the species profile and returns a simulator.
func NewGrowthSimulator(cfg SimulatorConfig) (*GrowthSimulator, error) {
	if cfg.Horizon <= 0 {
		cfg.Horizon = DefaultHorizon
	}
	profile := LookupSpecies(cfg.Species)
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid species profile: %w", err)
	}
	src := rand.NewSource(cfg.Seed)
	g := &GrowthSimulator{
		cfg:     cfg,
		profile: profile,
		rng:     rand.New(src),
		normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
	g.state = DefaultState(cfg.Species)
	return g, nil
}

// Profile returns the species profile in use.
func (g *GrowthSimulator) Profile() SpeciesProfile {
	return g.profile
}

// State returns the live environment state. Callers must not mutate it;
// use Snapshot for a copy.
func (g *GrowthSimulator) State() *EnvironmentState {
	return g.state
}

// Snapshot returns a copy of the current state.
func (g *GrowthSimulator) Snapshot() *EnvironmentState {
	return g.state.Copy()
}

func (g *GrowthSimulator) ObservationSize() int {
	return ObservationSize
}

func (g *GrowthSimulator) ActionSize() int {
	return ActionSize
}

// Reset starts a new episode. The state is sampled from the reference
// dataset when one is configured and has records for the species,
// otherwise it starts from fixed defaults.
func (g *GrowthSimulator) Reset() ([]float64, error) {
	var next *EnvironmentState
	if g.cfg.Dataset != nil {
		next = g.cfg.Dataset.Sample(g.cfg.Species, g.rng)
	}
	if next == nil {
		next = DefaultState(g.cfg.Species)
	}
	next.Species = g.cfg.Species
	next.Step = 0
	g.state = next
	g.stepsFruiting = 0
	return g.state.Observation(), nil
}

func (g *GrowthSimulator) gauss(sigma float64) float64 {
	if g.cfg.NoiseScale == 0 {
		return 0
	}
	return g.normal.Rand() * sigma * g.cfg.NoiseScale
}

// uniform in [lo,hi), scaled down to its midpoint when noise is disabled
// so deterministic runs stay reproducible.
func (g *GrowthSimulator) uniform(lo, hi float64) float64 {
	if g.cfg.NoiseScale == 0 {
		return (lo + hi) / 2
	}
	return lo + g.rng.Float64()*(hi-lo)
}

// Step applies one actuator command. Out-of-range action components are
// clamped to [-1,1]; an action of the wrong length is an error.
func (g *GrowthSimulator) Step(action []float64) (*types.StepResult, error) {
	if len(action) != ActionSize {
		return nil, fmt.Errorf("action has %d components, want %d", len(action), ActionSize)
	}
	a := make([]float64, ActionSize)
	for i, v := range action {
		a[i] = clamp(v, -1, 1)
	}

	s := g.state
	prevHealth := s.Health
	prevHeight := s.Height
	prevFruits := s.Fruits

	// actuator effects
	s.Temperature += a[0] * tempDelta
	s.Light += a[1] * lightDelta
	s.Water += a[2] * waterDelta
	if a[3] > 0 {
		s.Radiation -= a[3] * shieldDelta
	}
	s.Nitrogen += a[4] * nutrientDelta
	s.Phosphorus += a[4] * nutrientDelta
	s.Potassium += a[4] * nutrientDelta
	s.Clamp()

	// unmodeled atmosphere drift
	s.CO2 += g.gauss(noiseCO2)
	s.O2 += g.gauss(noiseO2)
	s.Humidity += g.gauss(noiseHumidity)
	s.Clamp()

	opt := g.optimality(s)
	target := weightTemp*opt.Temp +
		weightLight*opt.Light +
		weightWater*opt.Water +
		weightRadiation*opt.Radiation +
		weightNutrients*opt.Nutrients
	target += g.gauss(noiseHealth)
	target = clamp(target, 0, 1)
	s.Health = smoothKeep*s.Health + smoothBlend*target

	// growth
	if s.Health > 0.7 {
		s.Height += g.uniform(0.5, 1.5) * s.Health
	} else {
		s.Height += g.uniform(0, 0.1)
	}
	s.Clamp()

	s.Step++
	g.advanceStage(s)
	if s.Stage == StageFruiting {
		g.stepsFruiting++
		if g.fruitTrial(s.Health) {
			s.Fruits++
		}
	}

	reward := g.reward(s, a, prevHealth, prevHeight, prevFruits)

	done := false
	truncated := false
	terminal := ""
	switch {
	case s.Health < deathHealth:
		done = true
		terminal = "death"
	case g.stepsFruiting > harvestStageSteps:
		done = true
		terminal = "harvest"
	case s.Step >= g.cfg.Horizon:
		truncated = true
		terminal = "horizon"
	}

	return &types.StepResult{
		Observation: s.Observation(),
		Reward:      reward,
		Done:        done,
		Truncated:   truncated,
		Info: types.Info{
			Step:     s.Step,
			Health:   s.Health,
			Height:   s.Height,
			Fruits:   s.Fruits,
			Stage:    s.Stage.String(),
			Terminal: terminal,
		},
	}, nil
}

// optimalityScores bundles the five per-dimension scores.
type optimalityScores struct {
	Temp      float64
	Light     float64
	Water     float64
	Radiation float64
	Nutrients float64
}

func (g *GrowthSimulator) optimality(s *EnvironmentState) optimalityScores {
	p := g.profile
	return optimalityScores{
		Temp:  p.Temp.Optimality(s.Temperature),
		Light: p.Light.Optimality(s.Light),
		Water: p.Water.Optimality(s.Water),
		// lower radiation is always fine, only excess is punished
		Radiation: p.Radiation.OptimalityBelowFree(s.Radiation),
		Nutrients: (p.Nitrogen.Optimality(s.Nitrogen) +
			p.Phosphorus.Optimality(s.Phosphorus) +
			p.Potassium.Optimality(s.Potassium)) / 3,
	}
}

func (g *GrowthSimulator) advanceStage(s *EnvironmentState) {
	// thresholds on both elapsed steps and height; stages never regress
	switch s.Stage {
	case StageSeedling:
		if s.Step >= 5 && s.Height >= 5 {
			s.Stage = StageVegetative
		}
	case StageVegetative:
		if s.Step >= 15 && s.Height >= 15 {
			s.Stage = StageFlowering
		}
	case StageFlowering:
		if s.Step >= 25 && s.Height >= 25 {
			s.Stage = StageFruiting
		}
	}
}

func (g *GrowthSimulator) fruitTrial(health float64) bool {
	p := 0.4 * health
	if g.cfg.NoiseScale == 0 {
		// deterministic runs accrue fruit whenever the plant is healthy
		return p >= 0.2
	}
	return g.rng.Float64() < p
}

// Per-dimension penalty constants for the range-adherence reward terms.
const (
	penaltyTemp      = 1.0
	penaltyLight     = 1.0
	penaltyWater     = 0.8
	penaltyRadiation = 0.6
	penaltyNutrients = 0.5
)

const (
	healthRewardScale  = 10.0
	heightRewardScale  = 0.5
	fruitRewardScale   = 2.0
	stabilityThreshold = 3.0
	stabilityPenalty   = 0.5
)

// reward is the dense shaped signal: range adherence per controlled
// dimension, health delta, growth bonus, action stability penalty and a
// fruiting bonus.
func (g *GrowthSimulator) reward(s *EnvironmentState, a []float64, prevHealth, prevHeight float64, prevFruits int) float64 {
	p := g.profile
	rangeTerm := func(r Range, v float64, k float64) float64 {
		if r.Contains(v) {
			return 1.0
		}
		return -k * r.Distance(v)
	}
	nutrients := (rangeTerm(p.Nitrogen, s.Nitrogen, penaltyNutrients) +
		rangeTerm(p.Phosphorus, s.Phosphorus, penaltyNutrients) +
		rangeTerm(p.Potassium, s.Potassium, penaltyNutrients)) / 3

	reward := rangeTerm(p.Temp, s.Temperature, penaltyTemp) +
		rangeTerm(p.Light, s.Light, penaltyLight) +
		rangeTerm(p.Water, s.Water, penaltyWater) +
		nutrients
	if s.Radiation <= p.Radiation.High {
		reward += 1.0
	} else {
		reward += -penaltyRadiation * p.Radiation.Distance(s.Radiation)
	}

	reward += healthRewardScale * (s.Health - prevHealth)

	if s.Stage == StageVegetative || s.Stage == StageFlowering {
		reward += heightRewardScale * (s.Height - prevHeight)
	}

	total := 0.0
	for _, v := range a {
		total += math.Abs(v)
	}
	if total > stabilityThreshold {
		reward -= stabilityPenalty
	}

	if s.Stage == StageFruiting {
		reward += fruitRewardScale * float64(s.Fruits-prevFruits)
	}
	return reward
}
