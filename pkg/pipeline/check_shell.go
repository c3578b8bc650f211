package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/cheshirelabs/chester/pkg/events"
	chesterlog "github.com/cheshirelabs/chester/pkg/log"
	"github.com/cheshirelabs/chester/pkg/runner"
	"github.com/cheshirelabs/chester/pkg/state"
)

// CheckShell runs the Check stage whenever ChangeDetected is observed.
type CheckShell struct {
	runner runner.Check
	state  state.Writer
	reader state.Reader
	sub    *events.Subscriber
	pub    *events.Publisher
	log    zerolog.Logger

	doneCh chan struct{}
}

// NewCheckShell subscribes to bus and returns a shell ready to Start.
func NewCheckShell(r runner.Check, writer state.Writer, reader state.Reader, bus *events.Bus) *CheckShell {
	return &CheckShell{
		runner: r,
		state:  writer,
		reader: reader,
		sub:    bus.Subscribe(),
		pub:    bus.Publisher(),
		log:    chesterlog.WithComponent("check_shell"),
		doneCh: make(chan struct{}),
	}
}

// Start runs the shell's receive loop in its own goroutine.
func (s *CheckShell) Start() {
	go s.loop()
}

// Stop unsubscribes from the bus, waking the blocked Recv, and waits for the
// loop to exit.
func (s *CheckShell) Stop() {
	s.sub.Close()
	<-s.doneCh
}

func (s *CheckShell) loop() {
	defer close(s.doneCh)

	for {
		evt, err := s.sub.Recv()
		if err != nil {
			return
		}
		if evt.Type != events.ChangeDetected {
			continue
		}

		s.state.SetCheck(state.PendingStatus)

		root := s.reader.RepoRoot()
		switch s.runner.Run(root) {
		case runner.Success:
			s.state.SetCheck(state.SuccessStatus())
			if err := s.pub.Send(events.Event{Type: events.CheckPassed}); err != nil {
				s.log.Error().Err(err).Msg("publish CheckPassed failed")
			}
		case runner.Failure:
			s.state.SetCheck(state.FailureStatus())
			if err := s.pub.Send(events.Event{Type: events.CheckFailed}); err != nil {
				s.log.Error().Err(err).Msg("publish CheckFailed failed")
			}
		}
	}
}
