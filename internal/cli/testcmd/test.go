// Package testcmd implements 'decg test': the backend test suites. The
// runner's exit status becomes decg's exit status.
package testcmd

import (
	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/testrun"
	"github.com/spf13/cobra"
)

// TestCmd is the parent of the test subcommands.
var TestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the backend test suites",
	Long: `Run the test suites inside test.dir (default apps/decg-be-monorepo). The
commands come from the test.* configuration keys and are split with shell
word rules but never run by a shell. When the directory is missing the run
is skipped with a warning.`,
	Example: `  decg test unit
  decg test unit auth -v
  decg test e2e "login flow"
  decg test all --coverage
  decg test coverage`,
}

var unitCmd = &cobra.Command{
	Use:   "unit [domain]",
	Short: "Run unit tests, optionally for one domain",
	Args:  shared.RangeArgs(0, 1),
	RunE:  runUnit,
}

var e2eCmd = &cobra.Command{
	Use:   "e2e [scenario]",
	Short: "Run end-to-end tests, optionally filtered to one scenario",
	Args:  shared.RangeArgs(0, 1),
	RunE:  runE2E,
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every test suite",
	Args:  shared.NoArgs,
	RunE:  runAll,
}

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Run every suite with coverage and show the report location",
	Args:  shared.NoArgs,
	RunE:  runCoverage,
}

func init() {
	TestCmd.GroupID = shared.GroupDevelopment

	unitCmd.Flags().BoolP("verbose", "v", false, "Verbose test output")
	allCmd.Flags().BoolP("coverage", "c", false, "Collect coverage")

	TestCmd.AddCommand(unitCmd, e2eCmd, allCmd, coverageCmd)
}

func suite(cmd *cobra.Command) (*testrun.Suite, error) {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return nil, err
	}
	return env.Tests(), nil
}

func runUnit(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	s, err := suite(cmd)
	if err != nil {
		return err
	}
	return s.Unit(cmd.Context(), testrun.UnitOptions{Domain: optionalArg(args), Verbose: verbose})
}

func runE2E(cmd *cobra.Command, args []string) error {
	s, err := suite(cmd)
	if err != nil {
		return err
	}
	return s.E2E(cmd.Context(), optionalArg(args))
}

func runAll(cmd *cobra.Command, _ []string) error {
	coverage, _ := cmd.Flags().GetBool("coverage")
	s, err := suite(cmd)
	if err != nil {
		return err
	}
	return s.All(cmd.Context(), coverage)
}

func runCoverage(cmd *cobra.Command, _ []string) error {
	s, err := suite(cmd)
	if err != nil {
		return err
	}
	return s.Coverage(cmd.Context())
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
