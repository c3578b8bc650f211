package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/cheshirelabs/chester/pkg/events"
	chesterlog "github.com/cheshirelabs/chester/pkg/log"
	"github.com/cheshirelabs/chester/pkg/state"
	"github.com/cheshirelabs/chester/pkg/testsindex"
)

// TestsIndexShell refreshes the declared-tests set whenever TestsPassed is
// observed, and decides whether Coverage needs to re-run.
type TestsIndexShell struct {
	index  *testsindex.Index
	reader state.Reader
	sub    *events.Subscriber
	pub    *events.Publisher
	log    zerolog.Logger

	doneCh chan struct{}
}

// NewTestsIndexShell subscribes to bus and returns a shell ready to Start.
func NewTestsIndexShell(idx *testsindex.Index, reader state.Reader, bus *events.Bus) *TestsIndexShell {
	return &TestsIndexShell{
		index:  idx,
		reader: reader,
		sub:    bus.Subscribe(),
		pub:    bus.Publisher(),
		log:    chesterlog.WithComponent("testsindex_shell"),
		doneCh: make(chan struct{}),
	}
}

// Start runs the shell's receive loop in its own goroutine.
func (s *TestsIndexShell) Start() {
	go s.loop()
}

// Stop unsubscribes from the bus and waits for the loop to exit.
func (s *TestsIndexShell) Stop() {
	s.sub.Close()
	<-s.doneCh
}

func (s *TestsIndexShell) loop() {
	defer close(s.doneCh)

	for {
		evt, err := s.sub.Recv()
		if err != nil {
			return
		}
		if evt.Type != events.TestsPassed {
			continue
		}

		root := s.reader.RepoRoot()
		switch s.index.Refresh(root) {
		case testsindex.TestsSetChanged:
			if err := s.pub.Send(events.Event{Type: events.TestsSetChanged}); err != nil {
				s.log.Error().Err(err).Msg("publish TestsSetChanged failed")
			}
		case testsindex.TestsSetNotChanged:
			if err := s.pub.Send(events.Event{Type: events.TestsSetNotChanged}); err != nil {
				s.log.Error().Err(err).Msg("publish TestsSetNotChanged failed")
			}
		case testsindex.Failure:
			// No dedicated bus event for this stage's own failure; the
			// sweep simply stops here, logged rather than propagated, since
			// there is nothing a downstream shell could do with a
			// "the test list itself failed to produce" signal.
			s.log.Warn().Str("root", root).Msg("list_tests_cmd failed")
		}
	}
}
