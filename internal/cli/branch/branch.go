// Package branch implements 'decg branch': task branches across submodules.
package branch

import (
	"context"

	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/workspace"
	"github.com/spf13/cobra"
)

// BranchCmd is the parent of the branch subcommands.
var BranchCmd = &cobra.Command{
	Use:     "branch",
	Aliases: []string{"br"},
	Short:   "Manage task branches across submodules",
	Example: `  decg branch create PROJ-42 fix-login-redirect --repo fe --repo be
  decg branch list
  decg branch sync
  decg branch pr --title "Fix login redirect" --draft`,
}

var createCmd = &cobra.Command{
	Use:   "create <task-id> <description>",
	Short: "Create task/<task-id>-<description> in selected submodules",
	Long: `Create the branch task/<task-id>-<description> in each selected submodule.
--repo selects a submodule by alias, name or path and may be repeated. Without
--repo, branch.default_repos is used (fe and be unless configured), and every
submodule when it is set to an empty list.
Unknown repositories and submodules that are not checked out are skipped with
a warning.`,
	Args: shared.ExactArgs(2),
	RunE: runCreate,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the hub and submodule branches",
	Args:    shared.NoArgs,
	RunE:    runList,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull with rebase in every checked-out submodule",
	Long:  `Run git pull --rebase in every checked-out submodule. A failing submodule is reported and the rest continue.`,
	Args:  shared.NoArgs,
	RunE:  runSync,
}

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Open a pull request with the GitHub CLI",
	Long:  `Open a pull request for the hub's current branch with gh pr create. Requires gh on PATH.`,
	Args:  shared.NoArgs,
	RunE:  runPR,
}

func init() {
	BranchCmd.GroupID = shared.GroupWorkspace

	createCmd.Flags().StringArrayP("repo", "r", nil, "Submodule alias, name or path (repeatable)")
	prCmd.Flags().StringP("title", "t", "", "Pull request title")
	prCmd.Flags().StringP("body", "b", "", "Pull request body")
	prCmd.Flags().BoolP("draft", "d", false, "Open as a draft")

	BranchCmd.AddCommand(createCmd, listCmd, syncCmd, prCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	repos, _ := cmd.Flags().GetStringArray("repo")
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	return executeCreate(cmd.Context(), env, workspace.BranchCreateOptions{
		TaskID:      args[0],
		Description: args[1],
		Repos:       repos,
	})
}

func executeCreate(ctx context.Context, env *shared.Env, opts workspace.BranchCreateOptions) error {
	ws, err := env.Workspace()
	if err != nil {
		return err
	}
	_, err = ws.BranchCreate(ctx, opts)
	return err
}

func runList(cmd *cobra.Command, _ []string) error {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	ws, err := env.Workspace()
	if err != nil {
		return err
	}
	ws.BranchList()
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	return executeSync(cmd.Context(), env)
}

func executeSync(ctx context.Context, env *shared.Env) error {
	ws, err := env.Workspace()
	if err != nil {
		return err
	}
	ws.BranchSync(ctx)
	return nil
}

func runPR(cmd *cobra.Command, _ []string) error {
	title, _ := cmd.Flags().GetString("title")
	body, _ := cmd.Flags().GetString("body")
	draft, _ := cmd.Flags().GetBool("draft")
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return err
	}
	return executePR(cmd.Context(), env, workspace.PROptions{Title: title, Body: body, Draft: draft})
}

func executePR(ctx context.Context, env *shared.Env, opts workspace.PROptions) error {
	ws, err := env.Workspace()
	if err != nil {
		return err
	}
	return ws.BranchPR(ctx, opts)
}
