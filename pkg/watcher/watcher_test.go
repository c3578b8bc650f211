package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mustNew(t *testing.T, ignored []string) *Watcher {
	t.Helper()
	w, err := New(ignored, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

func TestWaitForChangeReturnsOnAcceptedWrite(t *testing.T) {
	root := t.TempDir()
	w := mustNew(t, nil)

	done := make(chan error, 1)
	go func() { done <- w.WaitForChange(root) }()

	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitForChange() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForChange() did not return")
	}
}

func TestIgnoredOnlyBatchDoesNotReturn(t *testing.T) {
	root := t.TempDir()
	w := mustNew(t, []string{`\.log$`})

	done := make(chan error, 1)
	go func() { done <- w.WaitForChange(root) }()

	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "debug.log"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case err := <-done:
		t.Fatalf("WaitForChange() returned early with err=%v, want to keep blocking", err)
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitForChange() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForChange() did not return after non-ignored write")
	}
}

func TestMixedBatchWithOneAcceptedPathReturns(t *testing.T) {
	root := t.TempDir()
	w := mustNew(t, []string{`\.log$`})

	done := make(chan error, 1)
	go func() { done <- w.WaitForChange(root) }()

	time.Sleep(20 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(root, "debug.log"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitForChange() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForChange() did not return")
	}
}

func TestNewSubdirectoryIsWatchedRecursively(t *testing.T) {
	root := t.TempDir()
	w := mustNew(t, nil)

	done := make(chan error, 1)
	go func() { done <- w.WaitForChange(root) }()

	time.Sleep(20 * time.Millisecond)
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitForChange() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForChange() did not return on directory creation")
	}

	// The newly created directory must itself now be watched.
	done2 := make(chan error, 1)
	go func() { done2 <- w.WaitForChange(root) }()

	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "b.go"), []byte("package b"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case err := <-done2:
		if err != nil {
			t.Fatalf("WaitForChange() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForChange() did not return for write inside new subdirectory")
	}
}

func TestReattachOnRootChange(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	w := mustNew(t, nil)

	done := make(chan error, 1)
	go func() { done <- w.WaitForChange(rootA) }()
	time.Sleep(20 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(rootA, "a.go"), []byte("package a"), 0o644)
	if err := <-done; err != nil {
		t.Fatalf("WaitForChange(rootA) error = %v", err)
	}

	done2 := make(chan error, 1)
	go func() { done2 <- w.WaitForChange(rootB) }()
	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(rootB, "b.go"), []byte("package b"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case err := <-done2:
		if err != nil {
			t.Fatalf("WaitForChange(rootB) error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForChange(rootB) did not return after reattach")
	}
}

func TestReattachIsIdempotentForSameRoot(t *testing.T) {
	root := t.TempDir()
	w := mustNew(t, nil)

	done := make(chan error, 1)
	go func() { done <- w.WaitForChange(root) }()
	time.Sleep(20 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644)
	if err := <-done; err != nil {
		t.Fatalf("first WaitForChange() error = %v", err)
	}

	before := w.fsw

	done2 := make(chan error, 1)
	go func() { done2 <- w.WaitForChange(root) }()
	time.Sleep(20 * time.Millisecond)

	w.mu.Lock()
	after := w.fsw
	w.mu.Unlock()
	if before != after {
		t.Fatal("WaitForChange() with an unchanged root recreated the OS watcher")
	}

	_ = os.WriteFile(filepath.Join(root, "b.go"), []byte("package b"), 0o644)
	if err := <-done2; err != nil {
		t.Fatalf("second WaitForChange() error = %v", err)
	}
}

func TestInvalidIgnorePatternFailsConstruction(t *testing.T) {
	if _, err := New([]string{"("}, 0); err == nil {
		t.Fatal("New() with invalid regex = nil error, want error")
	}
}
