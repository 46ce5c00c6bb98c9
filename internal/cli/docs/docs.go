// Package docs implements 'decg docs': versioned documentation trees.
package docs

import (
	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/workspace"
	"github.com/spf13/cobra"
)

// DocsCmd is the parent of the docs subcommands.
var DocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage versioned documentation",
	Long:  `Manage docs/<service>/<version>: numbered folders for requirements, user stories, use cases, API spec, implementation guide and test automation.`,
	Example: `  decg docs init auth v1.3.0
  decg docs list auth
  decg docs diff auth v1.2.0 v1.3.0 --patch`,
}

var initCmd = &cobra.Command{
	Use:   "init <service> <version>",
	Short: "Create the docs folders of a version with README templates",
	Args:  shared.ExactArgs(2),
	RunE:  runInit,
}

var listCmd = &cobra.Command{
	Use:     "list <service>",
	Aliases: []string{"ls"},
	Short:   "List versions with their document counts",
	Args:    shared.ExactArgs(1),
	RunE:    runList,
}

var diffCmd = &cobra.Command{
	Use:   "diff <service> <from-version> <to-version>",
	Short: "Compare the markdown files of two versions",
	Long: `Compare the markdown files of two versions of a service by relative path:
files only in <to-version> are added, files only in <from-version> are removed
and files in both whose content differs are modified. --patch prints a
unified diff for each modified file.`,
	Args: shared.ExactArgs(3),
	RunE: runDiff,
}

func init() {
	DocsCmd.GroupID = shared.GroupRelease
	diffCmd.Flags().BoolP("patch", "p", false, "Show unified diffs of modified files")

	DocsCmd.AddCommand(initCmd, listCmd, diffCmd)
}

func workspaceFor(cmd *cobra.Command) (*workspace.Workspace, error) {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return nil, err
	}
	return env.Workspace()
}

func runInit(cmd *cobra.Command, args []string) error {
	ws, err := workspaceFor(cmd)
	if err != nil {
		return err
	}
	return ws.DocsInit(args[0], args[1])
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := workspaceFor(cmd)
	if err != nil {
		return err
	}
	_, err = ws.DocsList(args[0])
	return err
}

func runDiff(cmd *cobra.Command, args []string) error {
	patch, _ := cmd.Flags().GetBool("patch")
	ws, err := workspaceFor(cmd)
	if err != nil {
		return err
	}
	_, err = ws.DocsDiff(diffOptions(args, patch))
	return err
}

func diffOptions(args []string, patch bool) workspace.DocsDiffOptions {
	return workspace.DocsDiffOptions{Service: args[0], From: args[1], To: args[2], Patch: patch}
}
