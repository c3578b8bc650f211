package state

import (
	"sync"

	"github.com/cheshirelabs/chester/pkg/events"
)

// Reader is the read-only capability over AppState: non-blocking under
// contention beyond the length of a single read-lock acquisition, and
// sharable by every shell plus the IPC server.
type Reader interface {
	Check() Status
	Tests() Status
	Coverage() Status
	RepoRoot() string
}

// Writer is the write capability over AppState. By convention (enforced by
// wiring, not the type system) each stage cell has exactly one writer: Check
// by CheckShell, Tests by TestsShell, Coverage by CoverageShell, RepoRoot by
// the IPC layer.
type Writer interface {
	SetCheck(Status)
	SetTests(Status)
	SetCoverage(Status)
	SetRepoRoot(root string) error
}

// AppState is the process-wide snapshot of stage statuses and the watched
// repo root. Each cell is guarded by its own RWMutex; the type deliberately
// does not offer a cross-cell atomic snapshot. AppState implements both
// Reader and Writer — callers narrow to the capability they need.
type AppState struct {
	checkMu  sync.RWMutex
	check    Status
	testsMu  sync.RWMutex
	tests    Status
	coverMu  sync.RWMutex
	coverage Status
	rootMu   sync.RWMutex
	repoRoot string

	pub *events.Publisher
}

// New creates an AppState with every stage Pending and an empty RepoRoot.
// pub is used to publish ChangeDetected whenever RepoRoot is written.
func New(pub *events.Publisher) *AppState {
	return &AppState{
		check:    PendingStatus,
		tests:    PendingStatus,
		coverage: PendingStatus,
		pub:      pub,
	}
}

// Reader narrows s to its read-only capability.
func (s *AppState) Reader() Reader { return s }

// Writer narrows s to its write capability.
func (s *AppState) Writer() Writer { return s }

func (s *AppState) Check() Status {
	s.checkMu.RLock()
	defer s.checkMu.RUnlock()
	return s.check
}

func (s *AppState) SetCheck(v Status) {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()
	s.check = v
}

func (s *AppState) Tests() Status {
	s.testsMu.RLock()
	defer s.testsMu.RUnlock()
	return s.tests
}

func (s *AppState) SetTests(v Status) {
	s.testsMu.Lock()
	defer s.testsMu.Unlock()
	s.tests = v
}

func (s *AppState) Coverage() Status {
	s.coverMu.RLock()
	defer s.coverMu.RUnlock()
	return s.coverage
}

func (s *AppState) SetCoverage(v Status) {
	s.coverMu.Lock()
	defer s.coverMu.Unlock()
	s.coverage = v
}

func (s *AppState) RepoRoot() string {
	s.rootMu.RLock()
	defer s.rootMu.RUnlock()
	return s.repoRoot
}

// SetRepoRoot updates the watched root and then publishes ChangeDetected,
// treating the change as a synthetic filesystem event so the pipeline
// re-runs against the new root. The two effects are not required to be
// atomic with each other, but both complete before SetRepoRoot returns.
func (s *AppState) SetRepoRoot(root string) error {
	s.rootMu.Lock()
	s.repoRoot = root
	s.rootMu.Unlock()

	if s.pub == nil {
		return nil
	}
	if err := s.pub.Send(events.Event{Type: events.ChangeDetected}); err != nil {
		return &WriteError{Cell: "repo_root", Err: err}
	}
	return nil
}
