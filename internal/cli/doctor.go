package cli

import (
	"fmt"

	"github.com/decg-project/decg/internal/cli/shared"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/health"
	"github.com/decg-project/decg/internal/output"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"doc"},
	Short:   "Check that the external tools decg drives are installed",
	Long: `Check that git, the compose command, the GitHub CLI and the test runner are
on PATH. Only git is required; the others are needed by individual command
groups (dev, branch pr and release publish, test).`,
	Example: `  decg doctor`,
	Args:    shared.NoArgs,
	RunE:    runDoctor,
}

func init() {
	doctorCmd.GroupID = shared.GroupConfiguration
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	env, err := shared.Setup(cmd, false)
	if err != nil {
		return err
	}
	return executeDoctor(env)
}

func executeDoctor(env *shared.Env) error {
	out := env.Out
	if env.Hub != nil {
		output.Info(out, "Hub root: %s", env.Hub.Root)
	} else {
		output.Warning(out, "Not inside a hub (no %s found)", env.Config.Hub.Marker)
	}

	report := env.Checker.RunHealthChecks(env.Config)
	fmt.Fprint(out, health.FormatReport(report))
	if !report.Passed {
		return clierrors.NewPrerequisiteError("required tools are missing",
			"Install the tools marked ✗ and run 'decg doctor' again")
	}
	return nil
}
