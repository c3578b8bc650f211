package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/cheshirelabs/chester/pkg/events"
	chesterlog "github.com/cheshirelabs/chester/pkg/log"
	"github.com/cheshirelabs/chester/pkg/runner"
	"github.com/cheshirelabs/chester/pkg/state"
)

// TestsShell runs the Tests stage whenever CheckPassed is observed.
type TestsShell struct {
	runner runner.Tests
	state  state.Writer
	reader state.Reader
	sub    *events.Subscriber
	pub    *events.Publisher
	log    zerolog.Logger

	doneCh chan struct{}
}

// NewTestsShell subscribes to bus and returns a shell ready to Start.
func NewTestsShell(r runner.Tests, writer state.Writer, reader state.Reader, bus *events.Bus) *TestsShell {
	return &TestsShell{
		runner: r,
		state:  writer,
		reader: reader,
		sub:    bus.Subscribe(),
		pub:    bus.Publisher(),
		log:    chesterlog.WithComponent("tests_shell"),
		doneCh: make(chan struct{}),
	}
}

// Start runs the shell's receive loop in its own goroutine.
func (s *TestsShell) Start() {
	go s.loop()
}

// Stop unsubscribes from the bus and waits for the loop to exit.
func (s *TestsShell) Stop() {
	s.sub.Close()
	<-s.doneCh
}

func (s *TestsShell) loop() {
	defer close(s.doneCh)

	for {
		evt, err := s.sub.Recv()
		if err != nil {
			return
		}
		if evt.Type != events.CheckPassed {
			continue
		}

		s.state.SetTests(state.PendingStatus)

		root := s.reader.RepoRoot()
		switch s.runner.Run(root) {
		case runner.Success:
			s.state.SetTests(state.SuccessStatus())
			if err := s.pub.Send(events.Event{Type: events.TestsPassed}); err != nil {
				s.log.Error().Err(err).Msg("publish TestsPassed failed")
			}
		case runner.Failure:
			s.state.SetTests(state.FailureStatus())
			if err := s.pub.Send(events.Event{Type: events.TestsFailed}); err != nil {
				s.log.Error().Err(err).Msg("publish TestsFailed failed")
			}
		}
	}
}
