package runner

import (
	"bytes"
	"os/exec"

	"github.com/cheshirelabs/chester/pkg/config"
)

// RunStatus is the binary outcome of a Check or Tests invocation.
type RunStatus int

const (
	Success RunStatus = iota
	Failure
)

func run(cmd config.Command, root string, captureStdout bool) (string, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = root

	var stdout bytes.Buffer
	if captureStdout {
		c.Stdout = &stdout
	}
	// Stderr is intentionally left unset (suppressed) per the subprocess
	// contract: only the exit status and, for coverage, stdout matter.

	err := c.Run()
	return stdout.String(), err
}

// Check runs the configured check command under root.
type Check struct {
	Cmd config.Command
}

// Run invokes the check command. A non-zero exit or a failure to spawn the
// process both collapse to Failure: the caller only cares whether the
// repository currently checks out clean, not why it didn't.
func (c Check) Run(root string) RunStatus {
	if _, err := run(c.Cmd, root, false); err != nil {
		return Failure
	}
	return Success
}

// Tests runs the configured tests command under root.
type Tests struct {
	Cmd config.Command
}

// Run invokes the tests command.
func (t Tests) Run(root string) RunStatus {
	if _, err := run(t.Cmd, root, false); err != nil {
		return Failure
	}
	return Success
}
