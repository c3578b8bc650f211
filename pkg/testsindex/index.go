package testsindex

import (
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/cheshirelabs/chester/pkg/config"
	"github.com/cheshirelabs/chester/pkg/state"
)

// IndexStatus is the outcome of a refresh.
type IndexStatus int

const (
	TestsSetChanged IndexStatus = iota
	TestsSetNotChanged
	Failure
)

// Index lists the currently declared tests and reports whether the set has
// changed since the last refresh. The stored set starts empty, so the
// first-ever refresh always reports TestsSetChanged.
type Index struct {
	cmd   config.Command
	tests state.Reader

	mu  sync.Mutex
	set map[string]struct{}
}

// New creates an Index that invokes cmd to list tests and consults tests
// (the Tests stage reader) to implement the "a prior failure forces a
// re-run" rule.
func New(cmd config.Command, tests state.Reader) *Index {
	return &Index{cmd: cmd, tests: tests, set: make(map[string]struct{})}
}

// Refresh lists the declared tests under root and compares them against the
// previously stored set.
func (idx *Index) Refresh(root string) IndexStatus {
	// A prior test-run failure is never trustworthy: force coverage to
	// re-run in case it now succeeds.
	if idx.tests.Tests().Outcome == state.Failure {
		return TestsSetChanged
	}

	c := exec.Command(idx.cmd.Path, idx.cmd.Args...)
	c.Dir = root
	out, err := c.Output()
	if err != nil {
		return Failure
	}

	next := parseLines(string(out))

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if symmetricDifferenceSize(idx.set, next) == 0 && len(idx.set) > 0 {
		return TestsSetNotChanged
	}
	idx.set = next
	return TestsSetChanged
}

// Size returns the number of tests in the currently stored set.
func (idx *Index) Size() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.set)
}

func parseLines(output string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}

func symmetricDifferenceSize(a, b map[string]struct{}) int {
	diff := 0
	for k := range a {
		if _, ok := b[k]; !ok {
			diff++
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			diff++
		}
	}
	return diff
}

// sortedKeys is a small helper retained for tests that want to assert on
// the ordered (lexicographic) view of a stored set.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
