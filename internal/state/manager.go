package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkubaj/fastfetch/internal/core"
)

// Manager manages reading/writing the state file.
// It uses a Mutex for thread-safety.
type Manager struct {
	FilePath string
	Current  *State
	FS       core.FileSystem
	mu       sync.RWMutex
}

// NewManager creates a new state manager and loads the existing file.
// A missing file starts an empty state.
func NewManager(path string, fs core.FileSystem) (*Manager, error) {
	if fs == nil {
		fs = &core.RealFS{}
	}
	mgr := &Manager{
		FilePath: path,
		Current:  NewState(),
		FS:       fs,
	}

	if err := mgr.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return mgr, nil
}

// Load reads the state file.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.FS.ReadFile(m.FilePath)
	if err != nil {
		return err
	}

	st := NewState()
	if err := json.Unmarshal(data, st); err != nil {
		return fmt.Errorf("state file %s is corrupt: %w", m.FilePath, err)
	}
	m.Current = st
	return nil
}

// Save writes the current state.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Current.LastRun = time.Now()

	data, err := json.MarshalIndent(m.Current, "", "  ")
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(m.FilePath)
	if err := m.FS.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return core.WriteFileAtomic(m.FS, m.FilePath, data, 0644)
}
