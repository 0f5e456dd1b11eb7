package plant

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func newTestSim(t *testing.T, cfg SimulatorConfig) *GrowthSimulator {
	t.Helper()
	sim, err := NewGrowthSimulator(cfg)
	if err != nil {
		t.Fatalf("NewGrowthSimulator: %v", err)
	}
	return sim
}

func TestResetDefaults(t *testing.T) {
	sim := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", Seed: 1})
	if _, err := sim.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	s := sim.State()
	if s.Temperature != 22 || s.Light != 1000 || s.Water != 70 || s.Radiation != 5 {
		t.Errorf("unexpected defaults: temp %g light %g water %g radiation %g",
			s.Temperature, s.Light, s.Water, s.Radiation)
	}
	if s.Health != 0.9 || s.Stage != StageSeedling || s.Fruits != 0 || s.Step != 0 {
		t.Errorf("unexpected defaults: health %g stage %v fruits %d step %d",
			s.Health, s.Stage, s.Fruits, s.Step)
	}
}

func TestZeroActionDeterministicStep(t *testing.T) {
	sim := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", NoiseScale: 0, Seed: 1})
	sim.Reset()
	res, err := sim.Step([]float64{0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	s := sim.State()
	// controlled variables keep their baseline with no noise and no action
	if s.Temperature != 22 || s.Light != 1000 || s.Water != 70 || s.Radiation != 5 {
		t.Errorf("controlled variables drifted: temp %g light %g water %g radiation %g",
			s.Temperature, s.Light, s.Water, s.Radiation)
	}
	if s.CO2 != 800 || s.O2 != 21 || s.Humidity != 60 {
		t.Errorf("atmosphere drifted with noise disabled: %g %g %g", s.CO2, s.O2, s.Humidity)
	}
	// all defaults sit inside the Dwarf Wheat optimal ranges, so the
	// health target is exactly 1.0 and smoothing gives 0.93
	if math.Abs(s.Health-0.93) > 1e-12 {
		t.Errorf("health = %g, want 0.93", s.Health)
	}
	if res.Done || res.Truncated {
		t.Errorf("episode ended after one step")
	}
}

func TestEndToEndZeroActionEpisode(t *testing.T) {
	sim := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", NoiseScale: 0, Seed: 1})
	sim.Reset()

	action := []float64{0, 0, 0, 0, 0}
	prevHealth := sim.State().Health
	prevStage := sim.State().Stage
	prevFruits := sim.State().Fruits
	steps := 0
	for {
		res, err := sim.Step(action)
		if err != nil {
			t.Fatalf("step %d: %v", steps, err)
		}
		steps++
		s := sim.State()

		if s.Health < 0 || s.Health > 1 {
			t.Fatalf("step %d: health %g out of [0,1]", steps, s.Health)
		}
		if d := math.Abs(s.Health - prevHealth); d > 0.3+1e-12 {
			t.Fatalf("step %d: health jumped by %g, smoothing bounds it to 0.3", steps, d)
		}
		if s.Stage < prevStage {
			t.Fatalf("step %d: stage regressed %v -> %v", steps, prevStage, s.Stage)
		}
		if s.Fruits < prevFruits {
			t.Fatalf("step %d: fruits decreased %d -> %d", steps, prevFruits, s.Fruits)
		}
		prevHealth = s.Health
		prevStage = s.Stage
		prevFruits = s.Fruits

		if res.Done {
			t.Fatalf("near-optimal episode ended early at step %d (%s)", steps, res.Info.Terminal)
		}
		if res.Truncated {
			break
		}
		if steps > DefaultHorizon {
			t.Fatalf("episode did not end at the %d step cap", DefaultHorizon)
		}
	}

	if steps != DefaultHorizon {
		t.Errorf("episode ended at step %d, want %d", steps, DefaultHorizon)
	}
	s := sim.State()
	if s.Health < 0.2 {
		t.Errorf("final health %g below survival threshold", s.Health)
	}
	if s.Fruits < 0 {
		t.Errorf("negative fruit count %d", s.Fruits)
	}
	if s.Stage != StageFruiting {
		t.Errorf("near-optimal run should reach fruiting, got %v", s.Stage)
	}
}

func TestStepBoundsUnderRandomActions(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	sim := newTestSim(t, SimulatorConfig{Species: "Cherry Tomato", NoiseScale: 1, Seed: 3, Horizon: 1000})
	sim.Reset()
	for i := 0; i < 500; i++ {
		// deliberately out-of-range components must be clamped, not errors
		action := make([]float64, ActionSize)
		for d := range action {
			action[d] = rng.Float64()*6 - 3
		}
		res, err := sim.Step(action)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		s := sim.State()
		checks := []struct {
			name   string
			v      float64
			lo, hi float64
		}{
			{"temperature", s.Temperature, MinTemperature, MaxTemperature},
			{"light", s.Light, MinLight, MaxLight},
			{"water", s.Water, MinWater, MaxWater},
			{"radiation", s.Radiation, MinRadiation, MaxRadiation},
			{"co2", s.CO2, MinCO2, MaxCO2},
			{"o2", s.O2, MinO2, MaxO2},
			{"humidity", s.Humidity, MinHumidity, MaxHumidity},
			{"nitrogen", s.Nitrogen, MinNutrient, MaxNutrient},
			{"phosphorus", s.Phosphorus, MinNutrient, MaxNutrient},
			{"potassium", s.Potassium, MinNutrient, MaxNutrient},
			{"height", s.Height, MinHeight, MaxHeight},
			{"health", s.Health, 0, 1},
		}
		for _, c := range checks {
			if c.v < c.lo || c.v > c.hi {
				t.Fatalf("step %d: %s = %g out of [%g,%g]", i, c.name, c.v, c.lo, c.hi)
			}
		}
		if res.Done || res.Truncated {
			sim.Reset()
		}
	}
}

func TestWrongActionSize(t *testing.T) {
	sim := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", Seed: 1})
	sim.Reset()
	if _, err := sim.Step([]float64{0, 0}); err == nil {
		t.Errorf("expected an error for a 2-component action")
	}
}

func TestDeathTermination(t *testing.T) {
	sim := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", NoiseScale: 0, Seed: 1, Horizon: 500})
	sim.Reset()
	// an unshielded radiation spike plus sustained bad actuation drives the
	// health target below the survival threshold
	sim.State().Radiation = 90
	action := []float64{1, 1, -1, 0, -1}
	var last *EnvironmentState
	for i := 0; i < 500; i++ {
		res, err := sim.Step(action)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		last = sim.State()
		if res.Done {
			if res.Info.Terminal != "death" {
				t.Fatalf("expected death termination, got %q", res.Info.Terminal)
			}
			if last.Health >= 0.2 {
				t.Fatalf("death fired with health %g", last.Health)
			}
			return
		}
		if res.Truncated {
			t.Fatalf("episode hit the horizon at health %g before dying", last.Health)
		}
	}
	t.Fatalf("plant survived sustained maximum actuation, health %g", last.Health)
}

func TestHarvestTermination(t *testing.T) {
	sim := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", NoiseScale: 0, Seed: 1, Horizon: 200})
	sim.Reset()
	action := []float64{0, 0, 0, 0, 0}
	for i := 0; i < 200; i++ {
		res, err := sim.Step(action)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.Done {
			if res.Info.Terminal != "harvest" {
				t.Fatalf("expected harvest termination, got %q", res.Info.Terminal)
			}
			if sim.State().Stage != StageFruiting {
				t.Fatalf("harvest outside the fruiting stage")
			}
			if sim.State().Fruits == 0 {
				t.Fatalf("harvest with zero fruit")
			}
			return
		}
	}
	t.Fatalf("no harvest within 200 steps of a near-optimal run")
}

func TestShieldOnlyReducesRadiation(t *testing.T) {
	sim := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", NoiseScale: 0, Seed: 1})
	sim.Reset()
	before := sim.State().Radiation

	if _, err := sim.Step([]float64{0, 0, 0, -1, 0}); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := sim.State().Radiation; got != before {
		t.Errorf("negative shield component changed radiation %g -> %g", before, got)
	}

	if _, err := sim.Step([]float64{0, 0, 0, 1, 0}); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := sim.State().Radiation; got >= before {
		t.Errorf("positive shield did not reduce radiation: %g -> %g", before, got)
	}
}

func TestResetFromDataset(t *testing.T) {
	ds := &Dataset{Records: []*EnvironmentState{
		{Species: "Lettuce", Temperature: 18, Light: 700, Water: 80, Radiation: 2,
			CO2: 900, O2: 20, Humidity: 70, Nitrogen: 70, Phosphorus: 60, Potassium: 65,
			Height: 3, Health: 0.8, Stage: StageSeedling},
	}}
	sim := newTestSim(t, SimulatorConfig{Species: "Lettuce", Seed: 5, Dataset: ds})
	sim.Reset()
	if sim.State().Temperature != 18 || sim.State().Light != 700 {
		t.Errorf("reset ignored the reference record: temp %g light %g",
			sim.State().Temperature, sim.State().Light)
	}

	// no record for this species: defaults apply, not an error
	other := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", Seed: 5, Dataset: ds})
	if _, err := other.Reset(); err != nil {
		t.Fatalf("reset with non-matching dataset: %v", err)
	}
	if other.State().Temperature != 22 {
		t.Errorf("fallback reset temp = %g, want 22", other.State().Temperature)
	}
}

func TestSeededRunsReproducible(t *testing.T) {
	run := func() []float64 {
		sim := newTestSim(t, SimulatorConfig{Species: "Dwarf Wheat", NoiseScale: 1, Seed: 11})
		sim.Reset()
		rewards := make([]float64, 0, 20)
		for i := 0; i < 20; i++ {
			res, err := sim.Step([]float64{0.1, -0.1, 0.2, 0.5, 0})
			if err != nil {
				t.Fatalf("step: %v", err)
			}
			rewards = append(rewards, res.Reward)
			if res.Done || res.Truncated {
				break
			}
		}
		return rewards
	}
	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("seeded runs diverged in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded runs diverged at step %d: %g vs %g", i, first[i], second[i])
		}
	}
}
