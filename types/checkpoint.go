package types

// Checkpoint tags used by the trainer.
const (
	TagBest  = "best"
	TagFinal = "final"
)

// CheckpointStore persists learner snapshots keyed by species and tag.
// Loading a key that was never saved is a returned error, not a silent
// fallback.
type CheckpointStore interface {
	Save(species, tag string, data []byte) error
	Load(species, tag string) ([]byte, error)
}
