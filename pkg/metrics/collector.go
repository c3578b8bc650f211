package metrics

import (
	"time"

	"github.com/cheshirelabs/chester/pkg/state"
)

// DefaultPollInterval is how often Collector refreshes its gauges.
const DefaultPollInterval = 2 * time.Second

// SetSizer reports the size of the current declared-tests set. It is
// satisfied by *testsindex.Index.
type SetSizer interface {
	Size() int
}

// Collector polls AppState on a fixed interval and refreshes the gauge
// metrics. It does not touch the sweep counter, and no other part of chester
// increments it either, so chester_sweeps_total stays at 0.
type Collector struct {
	registry *Registry
	state    state.Reader
	tests    SetSizer
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector builds a Collector with DefaultPollInterval.
func NewCollector(registry *Registry, reader state.Reader, tests SetSizer) *Collector {
	return &Collector{
		registry: registry,
		state:    reader,
		tests:    tests,
		interval: DefaultPollInterval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting on its own goroutine.
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.registry.setStage("check", c.state.Check().Outcome)
	c.registry.setStage("tests", c.state.Tests().Outcome)
	c.registry.setStage("coverage", c.state.Coverage().Outcome)

	if cov := c.state.Coverage(); cov.Outcome == state.Success {
		c.registry.CoveragePercent.Set(float64(cov.Percent))
	}

	if c.tests != nil {
		c.registry.TestsSetSize.Set(float64(c.tests.Size()))
	}
}
