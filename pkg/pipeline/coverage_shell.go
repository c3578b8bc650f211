package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/cheshirelabs/chester/pkg/events"
	chesterlog "github.com/cheshirelabs/chester/pkg/log"
	"github.com/cheshirelabs/chester/pkg/runner"
	"github.com/cheshirelabs/chester/pkg/state"
)

// CoverageShell runs the Coverage stage whenever TestsSetChanged is
// observed. It has no outcome event: Coverage is the sweep's sink, so its
// result is written to AppState directly rather than chained into a
// further shell.
type CoverageShell struct {
	runner *runner.Coverage
	state  state.Writer
	reader state.Reader
	sub    *events.Subscriber
	log    zerolog.Logger

	doneCh chan struct{}
}

// NewCoverageShell subscribes to bus and returns a shell ready to Start.
func NewCoverageShell(r *runner.Coverage, writer state.Writer, reader state.Reader, bus *events.Bus) *CoverageShell {
	return &CoverageShell{
		runner: r,
		state:  writer,
		reader: reader,
		sub:    bus.Subscribe(),
		log:    chesterlog.WithComponent("coverage_shell"),
		doneCh: make(chan struct{}),
	}
}

// Start runs the shell's receive loop in its own goroutine.
func (s *CoverageShell) Start() {
	go s.loop()
}

// Stop unsubscribes from the bus and waits for the loop to exit.
func (s *CoverageShell) Stop() {
	s.sub.Close()
	<-s.doneCh
}

func (s *CoverageShell) loop() {
	defer close(s.doneCh)

	for {
		evt, err := s.sub.Recv()
		if err != nil {
			return
		}
		if evt.Type != events.TestsSetChanged {
			continue
		}

		s.state.SetCoverage(state.PendingStatus)

		root := s.reader.RepoRoot()
		result := s.runner.Run(root)
		if result.Success {
			s.state.SetCoverage(state.CoverageSuccess(result.Percent))
		} else {
			s.state.SetCoverage(state.FailureStatus())
		}
	}
}
