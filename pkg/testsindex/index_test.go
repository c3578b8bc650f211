package testsindex

import (
	"testing"

	"github.com/cheshirelabs/chester/pkg/config"
	"github.com/cheshirelabs/chester/pkg/state"
)

type fakeReader struct {
	tests state.Status
}

func (f fakeReader) Check() state.Status    { return state.PendingStatus }
func (f fakeReader) Tests() state.Status    { return f.tests }
func (f fakeReader) Coverage() state.Status { return state.PendingStatus }
func (f fakeReader) RepoRoot() string       { return "" }

func listCmd(output string) config.Command {
	return config.Command{Path: "printf", Args: []string{output}}
}

func TestFirstRefreshAlwaysChanged(t *testing.T) {
	idx := New(listCmd("a\\nb\\n"), fakeReader{tests: state.SuccessStatus()})
	if got := idx.Refresh(t.TempDir()); got != TestsSetChanged {
		t.Fatalf("Refresh() = %v, want TestsSetChanged", got)
	}
}

func TestIdenticalSetIsNotChanged(t *testing.T) {
	tests := fakeReader{tests: state.SuccessStatus()}
	idx := New(listCmd("a\\nb\\n"), tests)

	if got := idx.Refresh(t.TempDir()); got != TestsSetChanged {
		t.Fatalf("first Refresh() = %v, want TestsSetChanged", got)
	}
	if got := idx.Refresh(t.TempDir()); got != TestsSetNotChanged {
		t.Fatalf("second Refresh() = %v, want TestsSetNotChanged", got)
	}
}

func TestDifferentSetIsChanged(t *testing.T) {
	tests := fakeReader{tests: state.SuccessStatus()}
	idx := New(config.Command{}, tests)

	idx.cmd = listCmd("a\\nb\\n")
	if got := idx.Refresh(t.TempDir()); got != TestsSetChanged {
		t.Fatalf("first Refresh() = %v, want TestsSetChanged", got)
	}

	idx.cmd = listCmd("a\\nb\\nc\\n")
	if got := idx.Refresh(t.TempDir()); got != TestsSetChanged {
		t.Fatalf("second Refresh() = %v, want TestsSetChanged", got)
	}
}

func TestPriorTestsFailureForcesChanged(t *testing.T) {
	tests := fakeReader{tests: state.SuccessStatus()}
	idx := New(listCmd("a\\nb\\n"), tests)
	idx.Refresh(t.TempDir()) // seed the stored set

	tests.tests = state.FailureStatus()
	idx2 := New(listCmd("a\\nb\\n"), tests)
	idx2.mu.Lock()
	idx2.set = map[string]struct{}{"a": {}, "b": {}}
	idx2.mu.Unlock()

	if got := idx2.Refresh(t.TempDir()); got != TestsSetChanged {
		t.Fatalf("Refresh() with prior Tests failure = %v, want TestsSetChanged", got)
	}
}

func TestListCommandFailureIsFailure(t *testing.T) {
	idx := New(config.Command{Path: "/no/such/binary"}, fakeReader{tests: state.SuccessStatus()})
	if got := idx.Refresh(t.TempDir()); got != Failure {
		t.Fatalf("Refresh() = %v, want Failure", got)
	}
}

func TestSortedKeysOrdersLexicographically(t *testing.T) {
	got := sortedKeys(map[string]struct{}{"b": {}, "a": {}, "c": {}})
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedKeys() = %v, want %v", got, want)
		}
	}
}
