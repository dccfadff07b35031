package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"xliff-manager/internal/domain"
)

// GeometryStore remembers the main window rectangle between launches.
type GeometryStore struct {
	path string
}

// NewGeometryStore creates a JSON-backed window bounds store.
func NewGeometryStore(path string) *GeometryStore {
	return &GeometryStore{path: path}
}

// Load returns saved bounds; ok is false when nothing usable was saved.
func (s *GeometryStore) Load() (bounds domain.Bounds, ok bool, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Bounds{}, false, nil
		}
		return domain.Bounds{}, false, err
	}

	if err := json.Unmarshal(data, &bounds); err != nil {
		return domain.Bounds{}, false, err
	}
	return bounds, bounds.Valid(), nil
}

// Save writes bounds as JSON and creates parent directories.
func (s *GeometryStore) Save(bounds domain.Bounds) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(bounds)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}
