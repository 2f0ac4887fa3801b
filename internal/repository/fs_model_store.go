package repository

import (
	"fmt"
	"os"
	"path/filepath"

	dmodels "SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
)

// FSModelStore persists trained artifacts as flat files, two per
// (metal, horizon) pair: {metal}_day{h}.model and {metal}_day{h}.scaler.
// Writes go through a temp file and rename so readers never see a torn
// artifact.
type FSModelStore struct {
	dir string
}

func NewFSModelStore(dir string) *FSModelStore {
	return &FSModelStore{dir: dir}
}

func (s *FSModelStore) modelPath(m dmodels.Metal, h drepo.Horizon) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_day%d.model", m, h))
}

func (s *FSModelStore) scalerPath(m dmodels.Metal, h drepo.Horizon) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_day%d.scaler", m, h))
}

func (s *FSModelStore) Save(m dmodels.Metal, h drepo.Horizon, scaler, model []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("model dir: %w", err)
	}
	if err := writeAtomic(s.scalerPath(m, h), scaler); err != nil {
		return fmt.Errorf("write scaler: %w", err)
	}
	if err := writeAtomic(s.modelPath(m, h), model); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

func (s *FSModelStore) Load(m dmodels.Metal, h drepo.Horizon) ([]byte, []byte, error) {
	scaler, err := os.ReadFile(s.scalerPath(m, h))
	if err != nil {
		return nil, nil, fmt.Errorf("read scaler: %w", err)
	}
	model, err := os.ReadFile(s.modelPath(m, h))
	if err != nil {
		return nil, nil, fmt.Errorf("read model: %w", err)
	}
	return scaler, model, nil
}

// Exists requires both artifacts; a lone file counts as missing.
func (s *FSModelStore) Exists(m dmodels.Metal, h drepo.Horizon) bool {
	if _, err := os.Stat(s.scalerPath(m, h)); err != nil {
		return false
	}
	if _, err := os.Stat(s.modelPath(m, h)); err != nil {
		return false
	}
	return true
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
