// Package health checks that the external tools decg drives are available.
// It backs the 'decg doctor' report and the precondition checks of commands
// that need a specific tool (gh for pull requests and releases).
package health

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/decg-project/decg/internal/config"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/mattn/go-shellwords"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
	// Required checks fail the report; optional ones only warn.
	Required bool
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// LookPathFunc resolves a binary on PATH.
type LookPathFunc func(file string) (string, error)

// Checker runs tool checks.
type Checker struct {
	lookPath LookPathFunc
}

// Option configures a Checker.
type Option func(*Checker)

// WithLookPath replaces exec.LookPath (for testing).
func WithLookPath(fn LookPathFunc) Option {
	return func(c *Checker) {
		c.lookPath = fn
	}
}

// NewChecker creates a Checker using exec.LookPath by default.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckTool checks that binary is on PATH.
func (c *Checker) CheckTool(name, binary string, required bool) CheckResult {
	path, err := c.lookPath(binary)
	if err != nil {
		return CheckResult{
			Name:     name,
			Passed:   false,
			Message:  fmt.Sprintf("%s not found in PATH", binary),
			Required: required,
		}
	}
	return CheckResult{
		Name:     name,
		Passed:   true,
		Message:  fmt.Sprintf("found at %s", path),
		Required: required,
	}
}

// RequireTool returns a prerequisite error when binary is not on PATH.
func (c *Checker) RequireTool(binary, install string) error {
	if _, err := c.lookPath(binary); err != nil {
		return clierrors.ToolNotFound(binary, install)
	}
	return nil
}

// RunHealthChecks checks git, the compose command, gh and the test runner.
// Only git is required; the rest are needed by individual command groups.
func (c *Checker) RunHealthChecks(cfg *config.Configuration) *HealthReport {
	report := &HealthReport{Passed: true}

	add := func(check CheckResult) {
		report.Checks = append(report.Checks, check)
		if check.Required && !check.Passed {
			report.Passed = false
		}
	}

	add(c.CheckTool("Git", "git", true))
	add(c.CheckTool("Compose", Executable(cfg.Dev.ComposeCommand, "docker-compose"), false))
	add(c.CheckTool("GitHub CLI", Executable(cfg.GH.Command, "gh"), false))
	if cfg.Test.Runner != "" {
		add(c.CheckTool("Test runner", cfg.Test.Runner, false))
	}

	return report
}

// Executable returns the executable of a command string, or fallback when
// the string is empty or cannot be split.
func Executable(command, fallback string) string {
	args, err := shellwords.Parse(command)
	if err != nil || len(args) == 0 {
		return fallback
	}
	return args[0]
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var sb strings.Builder
	for _, check := range report.Checks {
		switch {
		case check.Passed:
			fmt.Fprintf(&sb, "✓ %s: %s\n", check.Name, check.Message)
		case check.Required:
			fmt.Fprintf(&sb, "✗ %s: %s\n", check.Name, check.Message)
		default:
			fmt.Fprintf(&sb, "○ %s: %s\n", check.Name, check.Message)
		}
	}
	return sb.String()
}
