// Package settings provides read-through access to the persisted user
// settings. Every read goes back to the config file, so a toggle flipped
// mid-run takes effect at the next decision point.
package settings

import (
	"sync"

	"github.com/nhle/marksync/internal/model"
)

// Reader supplies the current settings to collaborators that must not
// cache them (the sync engine and the notification service).
type Reader interface {
	Current() (*model.AppConfig, error)
}

// FileStore is a Reader backed by the YAML config file.
type FileStore struct {
	path string
}

// NewFileStore creates a settings store reading from the given config path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Current re-reads the config file. Missing files resolve to defaults.
func (s *FileStore) Current() (*model.AppConfig, error) {
	return model.LoadConfig(s.path)
}

// Static is a Reader that always returns a fixed configuration. It exists
// for tests and for one-shot CLI runs where the config was just loaded.
type Static struct {
	mu  sync.Mutex
	cfg model.AppConfig
}

// NewStatic wraps a fixed configuration in a Reader.
func NewStatic(cfg model.AppConfig) *Static {
	return &Static{cfg: cfg}
}

// Current returns a copy of the wrapped configuration.
func (s *Static) Current() (*model.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	return &cfg, nil
}

// Update replaces the wrapped configuration. Tests use this to simulate a
// user flipping settings between calls.
func (s *Static) Update(cfg model.AppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}
