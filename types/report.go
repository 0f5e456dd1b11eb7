package types

// EpisodeReport is the structured per-episode record emitted for external
// visualization and logging. The core never depends on how it is rendered.
type EpisodeReport struct {
	Episode     int     `json:"episode"`
	Species     string  `json:"species"`
	TotalReward float64 `json:"total_reward"`
	AvgReward   float64 `json:"avg_reward"`
	ActorLoss   float64 `json:"actor_loss"`
	CriticLoss  float64 `json:"critic_loss"`
	Steps       int     `json:"steps"`
	FinalState  Info    `json:"final_state"`
}

// Reporter consumes episode reports at the reporting boundary.
type Reporter interface {
	Report(EpisodeReport)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(EpisodeReport)

func (f ReporterFunc) Report(r EpisodeReport) {
	f(r)
}

// RewardWindow tracks a trailing average of episode rewards.
type RewardWindow struct {
	size    int
	rewards []float64
}

func NewRewardWindow(size int) *RewardWindow {
	if size <= 0 {
		size = 1
	}
	return &RewardWindow{size: size, rewards: make([]float64, 0, size)}
}

// Push appends a reward, evicting the oldest once the window is full.
func (w *RewardWindow) Push(reward float64) {
	if len(w.rewards) == w.size {
		copy(w.rewards, w.rewards[1:])
		w.rewards = w.rewards[:w.size-1]
	}
	w.rewards = append(w.rewards, reward)
}

func (w *RewardWindow) Len() int {
	return len(w.rewards)
}

// Average of the rewards currently in the window, 0 when empty.
func (w *RewardWindow) Average() float64 {
	if len(w.rewards) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range w.rewards {
		sum += r
	}
	return sum / float64(len(w.rewards))
}
