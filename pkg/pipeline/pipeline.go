package pipeline

// Pipeline bundles the five shells and starts/stops them together.
type Pipeline struct {
	watcher    *ChangeWatcherShell
	check      *CheckShell
	tests      *TestsShell
	testsIndex *TestsIndexShell
	coverage   *CoverageShell
}

// New assembles a Pipeline from its already-constructed shells.
func New(watcher *ChangeWatcherShell, check *CheckShell, tests *TestsShell, testsIndex *TestsIndexShell, coverage *CoverageShell) *Pipeline {
	return &Pipeline{
		watcher:    watcher,
		check:      check,
		tests:      tests,
		testsIndex: testsIndex,
		coverage:   coverage,
	}
}

// Start launches every shell's goroutine, downstream shells first and the
// watcher last. Each bus-driven shell subscribed when it was constructed, so
// events published before Start are buffered in its subscription rather
// than missed.
func (p *Pipeline) Start() {
	p.coverage.Start()
	p.testsIndex.Start()
	p.tests.Start()
	p.check.Start()
	p.watcher.Start()
}

// Stop shuts down every shell and waits for each to exit.
func (p *Pipeline) Stop() {
	p.watcher.Stop()
	p.check.Stop()
	p.tests.Stop()
	p.testsIndex.Stop()
	p.coverage.Stop()
}
