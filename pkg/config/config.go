package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCoveragePattern matches the last non-empty line of coverage
// stdout: e.g. "87.25% coverage".
const DefaultCoveragePattern = `^(\d+\.\d{2})% coverage`

const (
	defaultRuntimeDir  = "/run"
	defaultSocketName  = "chester.sock"
	defaultMetricsAddr = "127.0.0.1:9090"
	defaultLogLevel    = "info"
)

// Command is an executable plus its arguments, run with CWD set to the
// current RepoRoot and the parent environment inherited.
type Command struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args"`
}

// Empty reports whether no command has been configured.
func (c Command) Empty() bool { return c.Path == "" }

// CoverageCommand is a Command whose stdout is parsed for a percentage.
type CoverageCommand struct {
	Command       `yaml:",inline"`
	ParserPattern string `yaml:"parser_pattern"`
}

// Config is chester's resolved configuration.
type Config struct {
	RepoRoot      string          `yaml:"repo_root"`
	IgnoredPaths  []string        `yaml:"ignored_paths"`
	CheckCmd      Command         `yaml:"check_cmd"`
	TestsCmd      Command         `yaml:"tests_cmd"`
	ListTestsCmd  Command         `yaml:"list_tests_cmd"`
	CoverageCmd   CoverageCommand `yaml:"coverage_cmd"`
	RuntimeDir    string          `yaml:"runtime_dir"`
	SocketName    string          `yaml:"socket_name"`
	MetricsAddr   string          `yaml:"metrics_addr"`
	LogLevel      string          `yaml:"log_level"`
	LogJSON       bool            `yaml:"log_json"`
}

// Load reads and validates a YAML configuration file at path, applying
// defaults for every omitted ambient option.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "read", Err: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Op: "parse", Err: err}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, &Error{Op: "validate", Err: err}
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RuntimeDir == "" {
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			c.RuntimeDir = dir
		} else {
			c.RuntimeDir = defaultRuntimeDir
		}
	}
	if c.SocketName == "" {
		c.SocketName = defaultSocketName
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = defaultMetricsAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.CoverageCmd.ParserPattern == "" {
		// A coverage command without a parser is never valid: fall back to
		// the documented default pattern rather than let the stage silently
		// fail on an otherwise-valid config.
		c.CoverageCmd.ParserPattern = DefaultCoveragePattern
	}
}

func (c *Config) validate() error {
	switch {
	case c.CheckCmd.Empty():
		return fmt.Errorf("check_cmd is required")
	case c.TestsCmd.Empty():
		return fmt.Errorf("tests_cmd is required")
	case c.ListTestsCmd.Empty():
		return fmt.Errorf("list_tests_cmd is required")
	case c.CoverageCmd.Empty():
		return fmt.Errorf("coverage_cmd is required")
	}
	return nil
}

// SocketPath returns the full path of the IPC Unix domain socket.
func (c *Config) SocketPath() string {
	return c.RuntimeDir + "/" + c.SocketName
}

// Error is chester's ConfigError: a malformed or invalid configuration is
// fatal at startup, since no stage can run without one.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("config: %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }
