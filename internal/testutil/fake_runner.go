// Package testutil provides test helpers for decg: a recording fake of
// shell.Runner, YAML call logs, the helper-process pattern, and throwaway
// git repositories.
package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/decg-project/decg/internal/shell"
)

// CallRecord is one command observed by FakeRunner.
type CallRecord struct {
	Method    string
	Args      []string
	Dir       string
	Timestamp time.Time
	Response  string
	Error     error
	ExitCode  int
}

// Responder computes a result for a matched command. It may have side effects
// (creating a directory a real `git submodule update` would create).
type Responder func(cmd shell.Command) shell.Result

type rule struct {
	prefix string
	dir    string
	fn     Responder
}

// FakeRunner implements shell.Runner without spawning processes. Commands are
// matched against registered rules by prefix of their rendered command line;
// the most recently registered matching rule wins. Unmatched commands succeed
// with empty output.
type FakeRunner struct {
	rules []rule
	calls []CallRecord
	cmds  []shell.Command
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers a fixed result for commands starting with prefix.
func (f *FakeRunner) On(prefix string, res shell.Result) *FakeRunner {
	return f.OnDo(prefix, func(shell.Command) shell.Result { return res })
}

// OnIn is On restricted to commands run in dir.
func (f *FakeRunner) OnIn(dir, prefix string, res shell.Result) *FakeRunner {
	f.rules = append(f.rules, rule{prefix: prefix, dir: dir, fn: func(shell.Command) shell.Result { return res }})
	return f
}

// OnDo registers a Responder for commands starting with prefix.
func (f *FakeRunner) OnDo(prefix string, fn Responder) *FakeRunner {
	f.rules = append(f.rules, rule{prefix: prefix, fn: fn})
	return f
}

// Run records cmd and returns the scripted result.
func (f *FakeRunner) Run(_ context.Context, cmd shell.Command) (*shell.Result, error) {
	res := f.respond(cmd)

	rec := CallRecord{
		Method:    cmd.Name,
		Args:      append([]string(nil), cmd.Args...),
		Dir:       cmd.Dir,
		Timestamp: time.Now(),
		Response:  res.Stdout,
		ExitCode:  res.ExitCode,
	}

	var err error
	if res.ExitCode != 0 {
		err = &shell.ExitError{Command: cmd, Code: res.ExitCode, Stderr: res.Stderr}
		rec.Error = err
	}
	f.calls = append(f.calls, rec)
	f.cmds = append(f.cmds, cmd)
	return &res, err
}

func (f *FakeRunner) respond(cmd shell.Command) shell.Result {
	line := cmd.String()
	for i := len(f.rules) - 1; i >= 0; i-- {
		r := f.rules[i]
		if r.dir != "" && r.dir != cmd.Dir {
			continue
		}
		if strings.HasPrefix(line, r.prefix) {
			return r.fn(cmd)
		}
	}
	return shell.Result{}
}

// Calls returns every recorded call in order.
func (f *FakeRunner) Calls() []CallRecord {
	return f.calls
}

// Commands returns every recorded command in order.
func (f *FakeRunner) Commands() []shell.Command {
	return f.cmds
}

// Lines returns the rendered command lines in order.
func (f *FakeRunner) Lines() []string {
	lines := make([]string, len(f.cmds))
	for i, c := range f.cmds {
		lines[i] = c.String()
	}
	return lines
}

// LinesIn returns the rendered command lines run in dir.
func (f *FakeRunner) LinesIn(dir string) []string {
	var lines []string
	for _, c := range f.cmds {
		if c.Dir == dir {
			lines = append(lines, c.String())
		}
	}
	return lines
}

// CountPrefix counts recorded commands whose line starts with prefix.
func (f *FakeRunner) CountPrefix(prefix string) int {
	n := 0
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}
