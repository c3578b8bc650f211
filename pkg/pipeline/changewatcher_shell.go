package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cheshirelabs/chester/pkg/events"
	chesterlog "github.com/cheshirelabs/chester/pkg/log"
	"github.com/cheshirelabs/chester/pkg/state"
	"github.com/cheshirelabs/chester/pkg/watcher"
)

// ChangeWatcherShell is the sole source of ChangeDetected events: it has no
// bus precondition of its own, instead blocking on the watcher's fsnotify
// wait loop and publishing whenever a non-ignored change is accepted.
type ChangeWatcherShell struct {
	watcher *watcher.Watcher
	state   state.Reader
	pub     *events.Publisher
	log     zerolog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewChangeWatcherShell builds the watcher shell. w must already be
// constructed with the configured ignore patterns.
func NewChangeWatcherShell(w *watcher.Watcher, reader state.Reader, pub *events.Publisher) *ChangeWatcherShell {
	return &ChangeWatcherShell{
		watcher: w,
		state:   reader,
		pub:     pub,
		log:     chesterlog.WithComponent("changewatcher_shell"),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start runs the shell's loop in its own goroutine.
func (s *ChangeWatcherShell) Start() {
	go s.loop()
}

// Stop requests the loop to exit, closes the watcher so that a blocked
// WaitForChange returns, and blocks until the loop has exited.
func (s *ChangeWatcherShell) Stop() {
	close(s.stopCh)
	_ = s.watcher.Close()
	<-s.doneCh
}

func (s *ChangeWatcherShell) loop() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		root := s.state.RepoRoot()
		if root == "" {
			// No root configured yet; poll at a low rate until one is set
			// via the IPC surface.
			select {
			case <-s.stopCh:
				return
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}

		if err := s.watcher.WaitForChange(root); err != nil {
			s.log.Error().Err(err).Str("root", root).Msg("watch failed")
			continue
		}

		select {
		case <-s.stopCh:
			return
		default:
		}

		if err := s.pub.Send(events.Event{Type: events.ChangeDetected}); err != nil {
			s.log.Error().Err(err).Msg("publish ChangeDetected failed")
			return
		}
	}
}
