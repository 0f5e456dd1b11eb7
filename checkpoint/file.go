// Package checkpoint persists learner parameter snapshots keyed by
// species and a best/final tag. The core only requires that snapshots
// round-trip losslessly; the storage format lives entirely here.
package checkpoint

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/types"
)

// FileStore keeps one JSON snapshot file per (species, tag) under a
// directory.
type FileStore struct {
	Dir string
}

var _ types.CheckpointStore = &FileStore{}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}

func (f *FileStore) filePath(species, tag string) string {
	return path.Join(f.Dir, fmt.Sprintf("%s_%s.json", slug(species), slug(tag)))
}

func (f *FileStore) Save(species, tag string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := os.WriteFile(f.filePath(species, tag), data, 0644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

func (f *FileStore) Load(species, tag string) ([]byte, error) {
	data, err := os.ReadFile(f.filePath(species, tag))
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s/%s: %w", species, tag, err)
	}
	return data, nil
}
