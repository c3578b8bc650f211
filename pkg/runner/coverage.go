package runner

import (
	"github.com/cheshirelabs/chester/pkg/config"
	"github.com/cheshirelabs/chester/pkg/coverage"
)

// CoverageStatus is the outcome of a Coverage run: either a validated
// percentage or Failure.
type CoverageStatus struct {
	Success bool
	Percent float32
}

// Coverage runs the configured coverage command under root and parses its
// stdout for a percentage.
type Coverage struct {
	Cmd    config.CoverageCommand
	Parser *coverage.Parser
}

// NewCoverage builds a Coverage runner, compiling the command's configured
// parser pattern. A pattern that does not compile is returned as an error
// here; a pattern without a capture group (an empty one included) compiles,
// and every Run then reports Failure.
func NewCoverage(cmd config.CoverageCommand) (*Coverage, error) {
	p, err := coverage.NewParser(cmd.ParserPattern)
	if err != nil {
		return nil, err
	}
	return &Coverage{Cmd: cmd, Parser: p}, nil
}

// Run invokes the coverage command, captures stdout, and parses it. Any
// runner or parse error collapses to Failure.
func (c *Coverage) Run(root string) CoverageStatus {
	stdout, err := run(c.Cmd.Command, root, true)
	if err != nil {
		return CoverageStatus{Success: false}
	}

	percent, err := c.Parser.Parse(stdout)
	if err != nil {
		return CoverageStatus{Success: false}
	}

	return CoverageStatus{Success: true, Percent: percent}
}
