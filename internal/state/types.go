package state

import (
	"time"

	"github.com/pkubaj/fastfetch/internal/identity"
)

// StateVersion is the format version written to new state files.
const StateVersion = "1.0"

// Snapshot is one saved detection result.
type Snapshot struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Identity  identity.Record `json:"identity"`
}

// State is the content of the state file.
type State struct {
	Version   string     `json:"version"`
	LastRun   time.Time  `json:"last_run"`
	Snapshots []Snapshot `json:"snapshots,omitempty"`
}

func NewState() *State {
	return &State{
		Version: StateVersion,
	}
}
