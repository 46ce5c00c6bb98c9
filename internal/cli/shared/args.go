package shared

import (
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/spf13/cobra"
)

// ExactArgs is cobra.ExactArgs reporting an argument error with usage.
func ExactArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.ExactArgs(n))
}

// RangeArgs is cobra.RangeArgs reporting an argument error with usage.
func RangeArgs(min, max int) cobra.PositionalArgs {
	return wrapArgs(cobra.RangeArgs(min, max))
}

// NoArgs is cobra.NoArgs reporting an argument error with usage.
func NoArgs(cmd *cobra.Command, args []string) error {
	return wrapArgs(cobra.NoArgs)(cmd, args)
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return ArgumentError(cmd, err)
		}
		return nil
	}
}

// ArgumentError converts a cobra parsing error into an argument error
// showing the command's usage line.
func ArgumentError(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	return &clierrors.CLIError{
		Category:    clierrors.Argument,
		Message:     err.Error(),
		Usage:       cmd.UseLine(),
		Remediation: []string{"Run '" + cmd.CommandPath() + " --help' for usage"},
		Err:         err,
	}
}
