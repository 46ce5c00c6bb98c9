// Package shell runs external tools (git, docker compose, gh, test runners)
// as argument vectors. Commands are echoed for the operator before they run;
// output is either captured or, for interactive commands, attached to the
// terminal. A non-zero exit is reported as *ExitError carrying the code.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/decg-project/decg/internal/logging"
	"github.com/decg-project/decg/internal/progress"
	"go.uber.org/zap"
)

// Command is a single external invocation.
type Command struct {
	// Name is the executable (looked up on PATH).
	Name string
	// Args are passed verbatim; nothing is interpreted by a shell.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Interactive attaches stdin/stdout/stderr to the terminal instead of
	// capturing them (log following, gh prompts).
	Interactive bool
}

// Git builds a git command running in dir.
func Git(dir string, args ...string) Command {
	return Command{Name: "git", Args: args, Dir: dir}
}

// String renders the command the way it is echoed: arguments containing
// whitespace or quotes are quoted so the echo is unambiguous.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result is the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands. Implementations must block until the command
// exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command Command
	Code    int
	Stderr  string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command.String(), e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// ExitCode returns the child's exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// IsExitError reports whether err is (or wraps) an *ExitError.
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// Tolerate drops an *ExitError so callers can inspect res.ExitCode instead.
// Other errors (binary missing, context cancelled) are returned unchanged.
func Tolerate(res *Result, err error) (*Result, error) {
	if err != nil && IsExitError(err) {
		return res, nil
	}
	return res, err
}

// CommandFunc builds the *exec.Cmd for a Command. Tests replace it to run a
// helper process instead of the real tool.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	out        io.Writer
	errOut     io.Writer
	in         io.Reader
	logger     *zap.Logger
	echo       bool
	spinner    bool
	commandFn  CommandFunc
	echoPrefix string
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithOutput sets where echoes and interactive stdout go.
func WithOutput(w io.Writer) Option {
	return func(r *ExecRunner) {
		r.out = w
	}
}

// WithErrOutput sets where interactive stderr goes.
func WithErrOutput(w io.Writer) Option {
	return func(r *ExecRunner) {
		r.errOut = w
	}
}

// WithInput sets stdin for interactive commands.
func WithInput(in io.Reader) Option {
	return func(r *ExecRunner) {
		r.in = in
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *ExecRunner) {
		r.logger = l
	}
}

// WithEcho toggles the "  → cmd" echo line.
func WithEcho(enabled bool) Option {
	return func(r *ExecRunner) {
		r.echo = enabled
	}
}

// WithSpinner toggles the spinner shown while captured commands run.
func WithSpinner(enabled bool) Option {
	return func(r *ExecRunner) {
		r.spinner = enabled
	}
}

// WithCommandFunc replaces exec.CommandContext (for testing).
func WithCommandFunc(fn CommandFunc) Option {
	return func(r *ExecRunner) {
		r.commandFn = fn
	}
}

// NewExecRunner creates an ExecRunner writing to the process's stdio by default.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		out:        os.Stdout,
		errOut:     os.Stderr,
		in:         os.Stdin,
		echo:       true,
		commandFn:  exec.CommandContext,
		echoPrefix: "  → ",
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger)
	return r
}

// Run executes cmd and waits for it. There is no timeout; cancelling ctx
// kills the child.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if r.echo {
		fmt.Fprintf(r.out, "%s%s\n", r.echoPrefix, cmd.String())
	}
	r.logger.Debug("running command",
		zap.String("name", cmd.Name),
		zap.Strings("args", cmd.Args),
		zap.String("dir", cmd.Dir),
		zap.Bool("interactive", cmd.Interactive))

	c := r.commandFn(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	if cmd.Interactive {
		c.Stdin = r.in
		c.Stdout = r.out
		c.Stderr = r.errOut
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	stop := func() {}
	if r.spinner && !cmd.Interactive {
		stop = progress.StartSpinner(r.out, cmd.Name)
	}
	runErr := c.Run()
	stop()

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		r.logger.Debug("command failed",
			zap.String("command", cmd.String()),
			zap.Int("exit_code", res.ExitCode))
		return res, &ExitError{Command: cmd, Code: res.ExitCode, Stderr: res.Stderr}
	}

	res.ExitCode = -1
	return res, fmt.Errorf("running %s: %w", cmd.Name, runErr)
}
