package identity

import "sync"

// Aggregator owns the Record shared by concurrent detection workers.
// Displays may be appended from any goroutine; scalar fields are written
// by probes before the join and by a single Resolve after it.
type Aggregator struct {
	mu        sync.Mutex
	rec       Record
	confirmed bool
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AppendDisplay adds d to the display list.
func (a *Aggregator) AppendDisplay(d DisplayInfo) {
	a.mu.Lock()
	a.rec.Displays = append(a.rec.Displays, d)
	a.mu.Unlock()
}

// ConfirmProtocol records a protocol established by a successful handshake.
// The first recorded protocol wins.
func (a *Aggregator) ConfirmProtocol(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rec.WM.ProtocolName == "" {
		a.rec.WM.ProtocolName = name
		a.confirmed = true
	}
}

// GuessProtocol records a protocol derived from environment signals.
// It never replaces a protocol that is already set.
func (a *Aggregator) GuessProtocol(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rec.WM.ProtocolName == "" {
		a.rec.WM.ProtocolName = name
	}
}

// ProtocolConfirmed reports whether the protocol came from a handshake.
func (a *Aggregator) ProtocolConfirmed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.confirmed
}

// SetWMProcessName records the window manager found through the display
// server connection. The first name wins.
func (a *Aggregator) SetWMProcessName(name string) {
	if name == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rec.WM.ProcessName == "" {
		a.rec.WM.ProcessName = name
	}
}

// DisplayCount returns the number of displays appended so far.
func (a *Aggregator) DisplayCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rec.Displays)
}

// Update runs fn with exclusive access to the record.
func (a *Aggregator) Update(fn func(r *Record)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.rec)
}

// Snapshot returns a copy of the record.
func (a *Aggregator) Snapshot() Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.rec
	out.Displays = append([]DisplayInfo(nil), a.rec.Displays...)
	return out
}
