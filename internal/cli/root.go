// Package cli wires the decg command tree. Top-level workspace commands live
// here; command families (version, dev, branch, test, docs, release, config)
// live in subpackages and are registered in init.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/decg-project/decg/internal/build"
	"github.com/decg-project/decg/internal/cli/branch"
	"github.com/decg-project/decg/internal/cli/config"
	"github.com/decg-project/decg/internal/cli/dev"
	"github.com/decg-project/decg/internal/cli/docs"
	"github.com/decg-project/decg/internal/cli/release"
	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/cli/testcmd"
	"github.com/decg-project/decg/internal/cli/version"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Command groups, re-exported for help output and tests.
const (
	GroupWorkspace     = shared.GroupWorkspace
	GroupDevelopment   = shared.GroupDevelopment
	GroupRelease       = shared.GroupRelease
	GroupConfiguration = shared.GroupConfiguration
)

var rootCmd = &cobra.Command{
	Use:   "decg",
	Short: "Hub workspace orchestration for multi-repository services",
	Long: `decg drives a hub repository and its git submodules as one workspace.

It prepares versioned workspaces with sparse checkouts, scaffolds docs and
release folders, manages task branches across submodules, and wraps the
docker compose dev environment, the test suite and GitHub releases.

Every command runs from anywhere inside the hub: the root is the nearest
directory holding .gitmodules. External tools (git, docker compose, gh,
pytest) are invoked directly with argument vectors, never through a shell.

Documentation: https://github.com/decg-project/decg`,
	Example: `  # Prepare the auth v1.2.0 workspace
  decg init auth v1.2.0 --include packages/auth

  # Start the dev environment and follow backend logs
  decg dev start
  decg dev logs backend

  # Branch every submodule for a task
  decg branch create PROJ-42 "fix login redirect"

  # Cut a release
  decg release changelog auth v1.2.0
  decg release tag auth v1.2.0 --push

  # See where things stand
  decg status`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if shared.GlobalFlag(cmd, shared.FlagNoColor) == "true" {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.Version = build.Info()
	rootCmd.SetVersionTemplate("decg {{.Version}}\n")

	shared.AddGlobalFlags(rootCmd)

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupWorkspace, Title: "Workspace:"},
		&cobra.Group{ID: GroupDevelopment, Title: "Development:"},
		&cobra.Group{ID: GroupRelease, Title: "Docs & Releases:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(GroupConfiguration)
	rootCmd.SetCompletionCommandGroupID(GroupConfiguration)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return shared.ArgumentError(cmd, err)
	})

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(version.VersionCmd)
	rootCmd.AddCommand(dev.DevCmd)
	rootCmd.AddCommand(branch.BranchCmd)
	rootCmd.AddCommand(testcmd.TestCmd)
	rootCmd.AddCommand(docs.DocsCmd)
	rootCmd.AddCommand(release.ReleaseCmd)
	rootCmd.AddCommand(config.ConfigCmd)
}

// Execute runs the command tree and prints any error. The returned error
// carries the exit code (see shared.ExitCode).
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ExecuteContext(ctx)
}

// ExecuteContext runs the command tree with ctx.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	err = normalizeError(err)
	clierrors.FprintAny(rootCmd.ErrOrStderr(), err)
	return err
}

// normalizeError turns cobra's unknown command errors into argument errors.
func normalizeError(err error) error {
	if clierrors.IsCLIError(err) {
		return err
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return err
	}
	if strings.HasPrefix(err.Error(), "unknown command") || strings.Contains(err.Error(), "unknown flag") {
		return clierrors.Wrap(err, clierrors.Argument, "Run 'decg --help' for usage")
	}
	return err
}
