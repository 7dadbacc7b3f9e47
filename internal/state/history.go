package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkubaj/fastfetch/internal/identity"
)

// ErrNoSnapshots is returned when the state holds no snapshot yet.
var ErrNoSnapshots = errors.New("no snapshots saved")

// AddSnapshot records rec under a new ID and saves the state.
func (m *Manager) AddSnapshot(rec identity.Record) (Snapshot, error) {
	snap := Snapshot{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Identity:  rec,
	}

	m.mu.Lock()
	m.Current.Snapshots = append(m.Current.Snapshots, snap)
	m.mu.Unlock()

	return snap, m.Save()
}

// Snapshots returns a copy of all snapshots, oldest first.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to avoid race conditions
	out := make([]Snapshot, len(m.Current.Snapshots))
	copy(out, m.Current.Snapshots)
	return out
}

// Snapshot finds a snapshot by ID or by an unambiguous ID prefix.
func (m *Manager) Snapshot(id string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []Snapshot
	for _, s := range m.Current.Snapshots {
		if s.ID == id {
			return s, nil
		}
		if id != "" && strings.HasPrefix(s.ID, id) {
			found = append(found, s)
		}
	}
	switch len(found) {
	case 0:
		return Snapshot{}, fmt.Errorf("snapshot not found: %s", id)
	case 1:
		return found[0], nil
	default:
		return Snapshot{}, fmt.Errorf("snapshot id %s is ambiguous (%d matches)", id, len(found))
	}
}

// Latest returns the most recently added snapshot.
func (m *Manager) Latest() (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.Current.Snapshots) == 0 {
		return Snapshot{}, ErrNoSnapshots
	}
	return m.Current.Snapshots[len(m.Current.Snapshots)-1], nil
}
