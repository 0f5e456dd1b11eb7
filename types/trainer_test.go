package types

import (
	"context"
	"fmt"
	"testing"
)

// stubEnv ends every episode after a fixed number of steps with a fixed
// per-step reward sequence.
type stubEnv struct {
	stepsPerEpisode int
	rewards         []float64
	episode         int
	step            int
}

var _ Environment = &stubEnv{}

func (s *stubEnv) Reset() ([]float64, error) {
	s.step = 0
	return []float64{0, 0}, nil
}

func (s *stubEnv) Step(action []float64) (*StepResult, error) {
	s.step++
	reward := 1.0
	if len(s.rewards) > 0 {
		reward = s.rewards[s.episode%len(s.rewards)]
	}
	done := s.step >= s.stepsPerEpisode
	if done {
		s.episode++
	}
	return &StepResult{
		Observation: []float64{float64(s.step), 0},
		Reward:      reward,
		Done:        done,
		Info:        Info{Step: s.step, Health: 0.9, Stage: "seedling"},
	}, nil
}

func (s *stubEnv) ObservationSize() int { return 2 }
func (s *stubEnv) ActionSize() int      { return 1 }

// stubLearner records the buffer sizes it was updated with.
type stubLearner struct {
	updates     []int
	snapshots   int
	restoreErrs int
}

var _ Learner = &stubLearner{}

func (s *stubLearner) SampleAction(obs []float64) ([]float64, float64) {
	return []float64{0}, -1.0
}

func (s *stubLearner) MeanAction(obs []float64) []float64 {
	return []float64{0}
}

func (s *stubLearner) Update(buffer *ExperienceBuffer) (UpdateStats, bool) {
	s.updates = append(s.updates, buffer.Len())
	return UpdateStats{ActorLoss: 0.1, CriticLoss: 0.2, Batches: 1}, true
}

func (s *stubLearner) Snapshot() ([]byte, error) {
	s.snapshots++
	return []byte(fmt.Sprintf("snapshot-%d", s.snapshots)), nil
}

func (s *stubLearner) Restore(data []byte) error {
	return nil
}

// memStore collects checkpoints in memory.
type memStore struct {
	saved map[string][]byte
}

var _ CheckpointStore = &memStore{}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string][]byte)}
}

func (m *memStore) Save(species, tag string, data []byte) error {
	m.saved[species+"/"+tag] = data
	return nil
}

func (m *memStore) Load(species, tag string) ([]byte, error) {
	data, ok := m.saved[species+"/"+tag]
	if !ok {
		return nil, fmt.Errorf("no checkpoint for %s/%s", species, tag)
	}
	return data, nil
}

func newTestTrainer(t *testing.T, cfg TrainerConfig, env Environment, learner Learner) *Trainer {
	t.Helper()
	trainer, err := NewTrainer(cfg, env, learner)
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	return trainer
}

func TestTrainerUpdatesAtBatchSize(t *testing.T) {
	env := &stubEnv{stepsPerEpisode: 10}
	learner := &stubLearner{}
	trainer := newTestTrainer(t, TrainerConfig{
		Species:   "Dwarf Wheat",
		Episodes:  10,
		BatchSize: 25,
	}, env, learner)

	if err := trainer.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// 100 collected steps with updates every 25
	if len(learner.updates) != 4 {
		t.Fatalf("learner updated %d times, want 4", len(learner.updates))
	}
	for i, size := range learner.updates {
		if size != 25 {
			t.Errorf("update %d saw %d transitions, want 25 (buffer not cleared?)", i, size)
		}
	}
}

func TestTrainerReportsEpisodes(t *testing.T) {
	env := &stubEnv{stepsPerEpisode: 5}
	trainer := newTestTrainer(t, TrainerConfig{
		Species:   "Lettuce",
		Episodes:  6,
		BatchSize: 100,
	}, env, &stubLearner{})

	reports := make([]EpisodeReport, 0)
	trainer.AddReporter(ReporterFunc(func(r EpisodeReport) {
		reports = append(reports, r)
	}))
	if err := trainer.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(reports) != 6 {
		t.Fatalf("got %d reports, want 6", len(reports))
	}
	for i, r := range reports {
		if r.Episode != i {
			t.Errorf("report %d has episode %d", i, r.Episode)
		}
		if r.Species != "Lettuce" {
			t.Errorf("report %d has species %q", i, r.Species)
		}
		if r.TotalReward != 5 {
			t.Errorf("report %d has reward %g, want 5", i, r.TotalReward)
		}
		if r.AvgReward != 5 {
			t.Errorf("report %d has trailing average %g, want 5", i, r.AvgReward)
		}
		if r.Steps != 5 {
			t.Errorf("report %d has %d steps, want 5", i, r.Steps)
		}
	}
}

func TestTrainerBestCheckpointGating(t *testing.T) {
	// rewards keep improving, so without the warmup gate every episode
	// would produce a best checkpoint
	rewards := make([]float64, 40)
	for i := range rewards {
		rewards[i] = float64(i)
	}
	env := &stubEnv{stepsPerEpisode: 2, rewards: rewards}
	store := newMemStore()
	trainer := newTestTrainer(t, TrainerConfig{
		Species:      "Dwarf Wheat",
		Episodes:     30,
		BatchSize:    1000, // never update, isolate checkpoint behavior
		RewardWindow: 5,
		Warmup:       20,
	}, env, &stubLearner{})
	trainer.SetCheckpointStore(store)

	if err := trainer.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := store.Load("Dwarf Wheat", TagBest); err != nil {
		t.Errorf("no best checkpoint saved: %v", err)
	}
	if _, err := store.Load("Dwarf Wheat", TagFinal); err != nil {
		t.Errorf("no final checkpoint saved: %v", err)
	}
	if best, ok := trainer.BestAverage(); !ok || best <= 0 {
		t.Errorf("best average = %g (tracked %v)", best, ok)
	}
}

func TestTrainerWarmupBlocksBest(t *testing.T) {
	env := &stubEnv{stepsPerEpisode: 2}
	store := newMemStore()
	trainer := newTestTrainer(t, TrainerConfig{
		Species:   "Dwarf Wheat",
		Episodes:  10,
		BatchSize: 1000,
		Warmup:    20,
	}, env, &stubLearner{})
	trainer.SetCheckpointStore(store)

	if err := trainer.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := store.Load("Dwarf Wheat", TagBest); err == nil {
		t.Errorf("best checkpoint saved before warmup")
	}
	if _, err := store.Load("Dwarf Wheat", TagFinal); err != nil {
		t.Errorf("final checkpoint missing: %v", err)
	}
	if _, ok := trainer.BestAverage(); ok {
		t.Errorf("best average tracked before warmup")
	}
}

func TestTrainerCancellation(t *testing.T) {
	env := &stubEnv{stepsPerEpisode: 2}
	trainer := newTestTrainer(t, TrainerConfig{
		Species:   "Dwarf Wheat",
		Episodes:  1000,
		BatchSize: 1000,
	}, env, &stubLearner{})

	ctx, cancel := context.WithCancel(context.Background())
	episodes := 0
	trainer.AddReporter(ReporterFunc(func(EpisodeReport) {
		episodes++
		if episodes == 3 {
			cancel()
		}
	}))
	if err := trainer.Run(ctx); err != context.Canceled {
		t.Fatalf("run returned %v, want context.Canceled", err)
	}
	if episodes != 3 {
		t.Errorf("ran %d episodes after cancellation, want 3", episodes)
	}
}

func TestTrainerConfigValidation(t *testing.T) {
	env := &stubEnv{stepsPerEpisode: 2}
	cases := []TrainerConfig{
		{Episodes: 0},
		{Episodes: 10, Gamma: 1.5},
		{Episodes: 10, ClipRatio: 1.0},
		{Episodes: 10, ActorLR: -1},
		{Episodes: 10, Epochs: -2},
	}
	for i, cfg := range cases {
		if _, err := NewTrainer(cfg, env, &stubLearner{}); err == nil {
			t.Errorf("case %d: invalid config accepted: %+v", i, cfg)
		}
	}
}
