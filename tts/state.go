// Package tts coordinates read-aloud playback: a state machine that is the
// single source of truth for what is being read, and a background worker
// that drives the loop-owned speech engine through a segment sequence one
// utterance at a time.
package tts

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Phase is the playback phase of the state machine.
type Phase int

const (
	// Idle is the initial and terminal phase; no session is active.
	Idle Phase = iota
	// Speaking means a session is in progress.
	Speaking
	// StopRequested is the transient phase between a user stop and the
	// worker draining at the next segment boundary.
	StopRequested
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Speaking:
		return "speaking"
	case StopRequested:
		return "stop-requested"
	default:
		return "unknown"
	}
}

var (
	// ErrSessionActive rejects starting a session while another is
	// speaking or still draining.
	ErrSessionActive = errors.New("tts: session already active")
	// ErrEmptySequence rejects starting a session with nothing to read.
	ErrEmptySequence = errors.New("tts: empty segment sequence")
)

// NoIndex is the current-index value outside the Speaking phase.
const NoIndex = -1

// Status is a consistent snapshot of the state machine, safe to observe
// from any goroutine.
type Status struct {
	Phase   Phase
	Index   int // NoIndex unless Phase == Speaking
	Session uuid.UUID
}

// State tracks playback phase and the current segment index. All transitions
// go through its methods under a single lock; no field is mutated directly
// from either side of the thread boundary.
type State struct {
	mu      sync.Mutex
	phase   Phase
	index   int
	length  int
	session uuid.UUID
}

// NewState returns an idle state machine.
func NewState() *State {
	return &State{index: NoIndex}
}

// Start begins a session over a sequence of length n and returns the new
// session's identifier. It is rejected when n is zero or a session is
// already active or draining.
func (s *State) Start(n int) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Idle {
		return uuid.Nil, ErrSessionActive
	}
	if n <= 0 {
		return uuid.Nil, ErrEmptySequence
	}
	s.phase = Speaking
	s.index = 0
	s.length = n
	s.session = uuid.New()
	return s.session, nil
}

// Advance moves to the next segment. Past the last valid index the phase
// becomes Idle and the index is cleared; done reports that transition.
// Advance is a no-op outside the Speaking phase.
func (s *State) Advance() (done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Speaking {
		return false
	}
	s.index++
	if s.index >= s.length {
		s.toIdleLocked()
		return true
	}
	return false
}

// Stop requests a halt at the next segment boundary. It reports whether the
// request took effect; stopping an idle or already-stopping machine is a
// no-op.
func (s *State) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Speaking {
		return false
	}
	s.phase = StopRequested
	return true
}

// Stopping reports whether a stop has been requested and not yet drained.
func (s *State) Stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == StopRequested
}

// Drain completes a requested stop, returning the machine to Idle. Called by
// the worker once it has halted; the speech engine must already have been
// reset by then.
func (s *State) Drain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != StopRequested {
		return
	}
	s.toIdleLocked()
}

// Snapshot returns the current status.
func (s *State) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := NoIndex
	if s.phase == Speaking {
		idx = s.index
	}
	return Status{Phase: s.phase, Index: idx, Session: s.session}
}

func (s *State) toIdleLocked() {
	s.phase = Idle
	s.index = NoIndex
	s.length = 0
}
