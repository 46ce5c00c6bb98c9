package cli

import (
	"context"

	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/workspace"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <service> <version>",
	Short: "Prepare the workspace for a service version",
	Long: `Prepare the hub for working on <service> at <version>.

Steps:
  1. Check out (or create) the hub branch workspace/<service>-<version>
  2. Initialize each participating submodule, apply its sparse-checkout
     scope and check out (or create) <service>/develop/<version>
  3. Create docs/<service>/<version> and releases/<service>/<version>
  4. Report whether the dev compose file is present

A sparse profile is read from configs/sparse-profiles/<service>-<version>.yaml
when present, or from --profile. Without a profile, --include paths apply to
every submodule. Running init again with the same arguments is safe.`,
	Example: `  # Full checkout of every submodule
  decg init auth v1.2.0

  # Narrow every submodule to shared packages
  decg init auth v1.2.0 --include packages/auth --include packages/common

  # Use an explicit profile
  decg init auth v1.2.0 --profile configs/sparse-profiles/auth-minimal.yaml`,
	Args: shared.ExactArgs(2),
	RunE: runInit,
}

func init() {
	initCmd.GroupID = shared.GroupWorkspace
	initCmd.Flags().StringSliceP("include", "i", nil, "Sparse-checkout path applied when no profile is used (repeatable)")
	initCmd.Flags().StringP("profile", "p", "", "Sparse profile path relative to the hub root")
	initCmd.Flags().Bool("skip-docker", false, "Skip the dev environment check")
}

func runInit(cmd *cobra.Command, args []string) error {
	include, _ := cmd.Flags().GetStringSlice("include")
	profilePath, _ := cmd.Flags().GetString("profile")
	skipDocker, _ := cmd.Flags().GetBool("skip-docker")

	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	return executeInit(cmd.Context(), env, workspace.InitOptions{
		Service:     args[0],
		Version:     args[1],
		Include:     include,
		ProfilePath: profilePath,
		SkipDocker:  skipDocker,
	})
}

func executeInit(ctx context.Context, env *shared.Env, opts workspace.InitOptions) error {
	ws, err := env.Workspace()
	if err != nil {
		return err
	}
	return ws.Init(ctx, opts)
}
