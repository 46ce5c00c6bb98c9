// Package version implements 'decg version': versioned docs and release
// folders of a service.
package version

import (
	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/workspace"
	"github.com/spf13/cobra"
)

// VersionCmd is the parent of the version subcommands.
var VersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"ver"},
	Short:   "Manage service versions",
	Long: `Manage the versions of a service: docs/<service>/<version> holds its
documentation and releases/<service>/<version> its release files.`,
	Example: `  decg version new auth v1.3.0 --from v1.2.0
  decg version list auth
  decg version current`,
}

var newCmd = &cobra.Command{
	Use:   "new <service> <version>",
	Short: "Create docs and release folders for a new version",
	Long: `Create docs/<service>/<version> and the release files for a new version.
Existing folders are left untouched. With --from, the new CHANGELOG.md
continues the previous version's changelog.`,
	Example: `  decg version new auth v1.3.0
  decg version new auth v1.3.0 --from v1.2.0`,
	Args: shared.ExactArgs(2),
	RunE: runNew,
}

var listCmd = &cobra.Command{
	Use:     "list <service>",
	Aliases: []string{"ls"},
	Short:   "List the documented versions of a service",
	Example: `  decg version list auth`,
	Args:    shared.ExactArgs(1),
	RunE:    runList,
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the service and version of the hub's workspace branch",
	Long: `Show the service and version encoded in the hub branch
workspace/<service>-<version>. On any other branch the branch is shown with
a warning.`,
	Example: `  decg version current`,
	Args:    shared.NoArgs,
	RunE:    runCurrent,
}

func init() {
	VersionCmd.GroupID = shared.GroupWorkspace
	newCmd.Flags().String("from", "", "Previous version whose CHANGELOG.md is carried over")

	VersionCmd.AddCommand(newCmd)
	VersionCmd.AddCommand(listCmd)
	VersionCmd.AddCommand(currentCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	return executeNew(env, args[0], args[1], from)
}

func executeNew(env *shared.Env, service, version, from string) error {
	ws, err := env.Workspace()
	if err != nil {
		return err
	}
	return ws.VersionNew(service, version, from)
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	_, err = executeList(env, args[0])
	return err
}

func executeList(env *shared.Env, service string) ([]workspace.VersionEntry, error) {
	ws, err := env.Workspace()
	if err != nil {
		return nil, err
	}
	return ws.VersionList(service)
}

func runCurrent(cmd *cobra.Command, _ []string) error {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	return executeCurrent(env)
}

func executeCurrent(env *shared.Env) error {
	ws, err := env.Workspace()
	if err != nil {
		return err
	}
	_, _, _, err = ws.VersionCurrent()
	return err
}
