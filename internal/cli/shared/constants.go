// Package shared provides constants and helpers used across CLI subpackages:
// command groups, exit codes, argument validators, prompts and the per-command
// environment (configuration, logger, hub, command runner).
package shared

import (
	"errors"
	"fmt"

	clierrors "github.com/decg-project/decg/internal/errors"
)

// Command group IDs for help output.
const (
	GroupWorkspace     = "workspace"
	GroupDevelopment   = "development"
	GroupRelease       = "release"
	GroupConfiguration = "configuration"
)

// Exit codes for the decg CLI.
const (
	// ExitSuccess indicates successful command execution.
	ExitSuccess = 0
	// ExitFailure indicates an unmet precondition or a runtime failure.
	ExitFailure = 1
	// ExitInvalidArguments indicates invalid command arguments or flags.
	ExitInvalidArguments = 3
)

// ExitError carries a specific process exit code.
type ExitError struct {
	Code int
}

// NewExitError returns an error that exits with code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the carried code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCode maps err to the process exit code. Errors carrying their own code
// (a failed external command) keep it, argument errors exit 3 and anything
// else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) && coded.ExitCode() > 0 {
		return coded.ExitCode()
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil && cliErr.Category == clierrors.Argument {
		return ExitInvalidArguments
	}
	return ExitFailure
}
