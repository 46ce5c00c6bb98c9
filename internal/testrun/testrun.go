// Package testrun runs the backend test suites inside the configured test
// directory. Command strings from configuration are split into argument
// vectors and streamed to the terminal; the runner's exit status is returned
// as a *shell.ExitError so the CLI can propagate it.
package testrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/decg-project/decg/internal/config"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/logging"
	"github.com/decg-project/decg/internal/output"
	"github.com/decg-project/decg/internal/shell"
	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

// Suite runs test commands in one directory.
type Suite struct {
	hub    *hub.Hub
	runner shell.Runner
	out    io.Writer
	cfg    config.TestConfig
	logger *zap.Logger
}

// New creates a Suite for cfg.Dir under the hub root.
func New(h *hub.Hub, runner shell.Runner, out io.Writer, cfg config.TestConfig, logger *zap.Logger) *Suite {
	return &Suite{hub: h, runner: runner, out: out, cfg: cfg, logger: logging.OrNop(logger)}
}

// Dir is the absolute test directory.
func (s *Suite) Dir() string {
	return s.hub.Abs(s.cfg.Dir)
}

// UnitOptions configures Unit.
type UnitOptions struct {
	// Domain narrows the run to <unit_path>/<domain>/.
	Domain  string
	Verbose bool
}

// Unit runs the unit suite.
func (s *Suite) Unit(ctx context.Context, opts UnitOptions) error {
	var extra []string
	if s.cfg.UnitPath != "" {
		target := s.cfg.UnitPath
		if opts.Domain != "" {
			target = path.Join(target, opts.Domain)
		}
		extra = append(extra, target+"/")
	}
	if opts.Verbose {
		extra = append(extra, "-v")
	}

	label := "unit tests"
	if opts.Domain != "" {
		label = fmt.Sprintf("unit tests (%s)", opts.Domain)
	}
	return s.run(ctx, label, s.cfg.UnitCmd, extra...)
}

// E2E runs the end-to-end suite, optionally filtered to one scenario.
func (s *Suite) E2E(ctx context.Context, scenario string) error {
	var extra []string
	if scenario != "" {
		extra = append(extra, "-k", scenario)
	}
	return s.run(ctx, "e2e tests", s.cfg.E2ECmd, extra...)
}

// All runs every suite, with coverage arguments when coverage is set.
func (s *Suite) All(ctx context.Context, coverage bool) error {
	var extra []string
	if coverage {
		args, err := split("test.coverage_args", s.cfg.CoverageArgs)
		if err != nil {
			return err
		}
		extra = args
	}
	return s.run(ctx, "all tests", s.cfg.AllCmd, extra...)
}

// Coverage runs every suite with coverage and a terminal report, then prints
// where the HTML report was written.
func (s *Suite) Coverage(ctx context.Context) error {
	covArgs, err := split("test.coverage_args", s.cfg.CoverageArgs)
	if err != nil {
		return err
	}
	reportArgs, err := split("test.coverage_report_args", s.cfg.CoverageReportArgs)
	if err != nil {
		return err
	}
	if !s.present() {
		return nil
	}
	if err := s.run(ctx, "coverage", s.cfg.AllCmd, append(covArgs, reportArgs...)...); err != nil {
		return err
	}
	if s.cfg.CoverageHTML != "" {
		output.Info(s.out, "Coverage report: %s", path.Join(s.cfg.Dir, s.cfg.CoverageHTML))
	}
	return nil
}

func (s *Suite) present() bool {
	if _, err := os.Stat(s.Dir()); err != nil {
		output.Warning(s.out, "Test directory not found: %s (skipping)", s.cfg.Dir)
		return false
	}
	return true
}

func (s *Suite) run(ctx context.Context, label, command string, extra ...string) error {
	words, err := split("test command", command)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return fmt.Errorf("no command configured for %s", label)
	}
	if !s.present() {
		return nil
	}

	args := append(words[1:len(words):len(words)], extra...)
	output.Info(s.out, "Running %s", label)
	s.logger.Debug("test run", zap.String("dir", s.Dir()), zap.Strings("argv", append([]string{words[0]}, args...)))

	_, err = s.runner.Run(ctx, shell.Command{
		Name:        words[0],
		Args:        args,
		Dir:         s.Dir(),
		Interactive: true,
	})
	return err
}

func split(key, value string) ([]string, error) {
	words, err := shellwords.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("parsing %s %q: %w", key, value, err)
	}
	return words, nil
}
