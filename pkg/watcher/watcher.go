package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the fixed window used to coalesce rapid bursts of
// filesystem events into a single batch.
const DefaultDebounce = 500 * time.Millisecond

// State is one of the three states of ChangeWatcher's state machine.
type State int

const (
	Idle State = iota
	Reattaching
	Blocked
)

// Watcher is chester's ChangeWatcher. WaitForChange blocks until a
// non-ignored change is observed under root; only one goroutine may call
// WaitForChange at a time (it is driven by a single pipeline shell).
type Watcher struct {
	ignored  []*regexp.Regexp
	debounce time.Duration

	mu          sync.Mutex
	fsw         *fsnotify.Watcher
	currentRoot string
	attached    bool
	state       State
}

// New compiles the configured ignore patterns and returns a Watcher with no
// OS watcher attached yet.
func New(ignoredPatterns []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ignored := make([]*regexp.Regexp, 0, len(ignoredPatterns))
	for _, pattern := range ignoredPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &Error{Op: "compile ignore pattern", Err: err}
		}
		ignored = append(ignored, re)
	}

	return &Watcher{ignored: ignored, debounce: debounce}, nil
}

// State reports the watcher's current state machine position. Intended for
// tests and diagnostics, not for pipeline logic.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Close releases the underlying OS watcher, if any.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	w.fsw = nil
	w.attached = false
	return err
}

// WaitForChange blocks until a non-ignored change is observed under root.
// Successive calls with the same root reuse the underlying OS watcher; a
// call whose root differs from the current one tears down and recreates it
// first.
func (w *Watcher) WaitForChange(root string) error {
	fsw, err := w.attach(root)
	if err != nil {
		return err
	}
	return w.waitAccepted(fsw)
}

func (w *Watcher) attach(root string) (*fsnotify.Watcher, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attached && w.currentRoot == root {
		w.state = Blocked
		return w.fsw, nil
	}

	w.state = Reattaching
	if w.fsw != nil {
		_ = w.fsw.Close()
		w.fsw = nil
		w.attached = false
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &Error{Op: "new", Err: err}
	}
	if err := w.addTree(fsw, root); err != nil {
		_ = fsw.Close()
		return nil, &Error{Op: "add", Err: err}
	}

	w.fsw = fsw
	w.currentRoot = root
	w.attached = true
	w.state = Blocked
	return fsw, nil
}

// addTree registers root and every non-ignored subdirectory with fsw.
// fsnotify only watches individual directories, so recursive watching is
// implemented by walking the tree and adding each one; directories matching
// an ignored pattern are neither added nor descended into.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A directory that vanished mid-walk (e.g. a build tool's
			// scratch dir) is not fatal to attaching the watcher.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.isIgnored(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return err
		}
		return nil
	})
}

func (w *Watcher) isIgnored(path string) bool {
	for _, re := range w.ignored {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// waitAccepted debounces raw fsnotify events into batches and returns as
// soon as a batch contains at least one non-ignored path. A batch where
// every path is ignored is silently discarded and the wait continues.
func (w *Watcher) waitAccepted(fsw *fsnotify.Watcher) error {
	var batch []string
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return &Error{Op: "recv", Err: errors.New("watcher channel closed")}
			}

			if ev.Op&fsnotify.Create == fsnotify.Create {
				w.maybeWatchNewDir(fsw, ev.Name)
			}

			batch = append(batch, ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return &Error{Op: "recv", Err: errors.New("watcher channel closed")}
			}
			return &Error{Op: "recv", Err: err}

		case <-timerC:
			if w.batchAccepted(batch) {
				w.mu.Lock()
				w.state = Idle
				w.mu.Unlock()
				return nil
			}
			// Transient / fully-ignored batch: not an error, keep waiting.
			batch = batch[:0]
			timerC = nil
		}
	}
}

func (w *Watcher) maybeWatchNewDir(fsw *fsnotify.Watcher, path string) {
	if w.isIgnored(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	_ = w.addTree(fsw, path)
}

func (w *Watcher) batchAccepted(batch []string) bool {
	for _, path := range batch {
		if !w.isIgnored(path) {
			return true
		}
	}
	return false
}

// Error is chester's WatcherError: a failure to install or receive from the
// OS watcher.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "watcher: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }
