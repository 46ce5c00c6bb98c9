package cli

import (
	"context"

	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Show hub, submodule and dev environment status",
	Long: `Show a read-only report of the workspace: the hub branch, each checked-out
submodule's branch and whether it has uncommitted changes, the dev
environment's containers and the first lines of the hub's git status.`,
	Example: `  decg status`,
	Args:    shared.NoArgs,
	RunE:    runStatus,
}

func init() {
	statusCmd.GroupID = shared.GroupWorkspace
}

func runStatus(cmd *cobra.Command, _ []string) error {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	return executeStatus(cmd.Context(), env)
}

func executeStatus(ctx context.Context, env *shared.Env) error {
	ws, err := env.Workspace()
	if err != nil {
		return err
	}
	_, err = ws.Status(ctx)
	return err
}
