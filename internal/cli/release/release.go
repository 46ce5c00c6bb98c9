// Package release implements 'decg release': release folders, changelogs,
// tags and GitHub releases.
package release

import (
	"context"
	"time"

	"github.com/decg-project/decg/internal/cli/shared"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/release"
	"github.com/spf13/cobra"
)

const defaultSince = 30 * 24 * time.Hour

// ReleaseCmd is the parent of the release subcommands.
var ReleaseCmd = &cobra.Command{
	Use:     "release",
	Aliases: []string{"rel"},
	Short:   "Prepare and publish service releases",
	Long:    `Prepare releases/<service>/<version>, generate its changelog from commit subjects, tag it as <service>-<version> and publish it with the GitHub CLI.`,
	Example: `  decg release init auth v1.3.0
  decg release changelog auth v1.3.0 --date 2026-11-02
  decg release tag auth v1.3.0 --push
  decg release publish auth v1.3.0 --draft`,
}

var initCmd = &cobra.Command{
	Use:   "init <service> <version>",
	Short: "Create release notes, version matrix and changelog templates",
	Args:  shared.ExactArgs(2),
	RunE:  runInit,
}

var changelogCmd = &cobra.Command{
	Use:   "changelog <service> <version>",
	Short: "Generate CHANGELOG.md from recent commit subjects",
	Long: `Generate releases/<service>/<version>/CHANGELOG.md from the hub's commit
subjects: feat* under Added, fix* under Fixed, refactor*, perf* and style*
under Changed. Without --date the date is asked for on a terminal and is TBD
otherwise.`,
	Args: shared.ExactArgs(2),
	RunE: runChangelog,
}

var tagCmd = &cobra.Command{
	Use:   "tag <service> <version>",
	Short: "Create the annotated tag <service>-<version>",
	Long: `Create the annotated tag <service>-<version> in the hub. Without --push or
--no-push, pushing to origin is confirmed on a terminal and skipped otherwise.`,
	Args: shared.ExactArgs(2),
	RunE: runTag,
}

var publishCmd = &cobra.Command{
	Use:   "publish <service> <version>",
	Short: "Create a GitHub release for the version's tag",
	Args:  shared.ExactArgs(2),
	RunE:  runPublish,
}

func init() {
	ReleaseCmd.GroupID = shared.GroupRelease

	changelogCmd.Flags().String("date", "", "Release date heading (e.g. 2026-11-02)")
	changelogCmd.Flags().Duration("since", defaultSince, "How far back to read commits")
	tagCmd.Flags().StringP("message", "m", "", "Tag message (default \"Release <service> <version>\")")
	tagCmd.Flags().Bool("push", false, "Push the tag to origin")
	tagCmd.Flags().Bool("no-push", false, "Do not push the tag")
	tagCmd.MarkFlagsMutuallyExclusive("push", "no-push")
	publishCmd.Flags().BoolP("draft", "d", false, "Create a draft release")

	ReleaseCmd.AddCommand(initCmd, changelogCmd, tagCmd, publishCmd)
}

func manager(cmd *cobra.Command) (*shared.Env, *release.Manager, error) {
	env, err := shared.Setup(cmd, true)
	if err != nil {
		return nil, nil, err
	}
	m, err := env.Release()
	if err != nil {
		return nil, nil, err
	}
	return env, m, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	_, m, err := manager(cmd)
	if err != nil {
		return err
	}
	return m.Init(args[0], args[1])
}

func runChangelog(cmd *cobra.Command, args []string) error {
	date, _ := cmd.Flags().GetString("date")
	since, _ := cmd.Flags().GetDuration("since")
	env, m, err := manager(cmd)
	if err != nil {
		return err
	}
	_, err = executeChangelog(env, m, changelogArgs{
		Service:   args[0],
		Version:   args[1],
		Date:      date,
		DateSet:   cmd.Flags().Changed("date"),
		Since:     since,
		Reference: time.Now(),
	})
	return err
}

// changelogArgs are the changelog inputs. DateSet is true when --date was
// given, even if empty; commits are read from Reference minus Since.
type changelogArgs struct {
	Service   string
	Version   string
	Date      string
	DateSet   bool
	Since     time.Duration
	Reference time.Time
}

func executeChangelog(env *shared.Env, m *release.Manager, a changelogArgs) (string, error) {
	if a.Since <= 0 {
		return "", clierrors.NewArgumentError("--since must be positive", "Example: --since 720h")
	}
	date := a.Date
	if !a.DateSet {
		date = env.Prompter.Ask("Release date (YYYY-MM-DD)", "TBD")
	}
	return m.Changelog(release.ChangelogOptions{
		Service: a.Service,
		Version: a.Version,
		Date:    date,
		Since:   a.Reference.Add(-a.Since),
	})
}

func runTag(cmd *cobra.Command, args []string) error {
	message, _ := cmd.Flags().GetString("message")
	env, m, err := manager(cmd)
	if err != nil {
		return err
	}
	_, err = executeTag(cmd.Context(), env, m, release.TagOptions{
		Service: args[0],
		Version: args[1],
		Message: message,
	}, pushChoice(cmd))
	return err
}

// pushChoice is nil when neither --push nor --no-push was given.
func pushChoice(cmd *cobra.Command) *bool {
	var push bool
	switch {
	case cmd.Flags().Changed("push"):
		push, _ = cmd.Flags().GetBool("push")
	case cmd.Flags().Changed("no-push"):
		noPush, _ := cmd.Flags().GetBool("no-push")
		push = !noPush
	default:
		return nil
	}
	return &push
}

func executeTag(ctx context.Context, env *shared.Env, m *release.Manager, opts release.TagOptions, push *bool) (string, error) {
	if push != nil {
		opts.Push = *push
	} else {
		opts.Push = env.Prompter.Confirm("Push tag "+release.TagName(opts.Service, opts.Version)+" to origin?", false)
	}
	return m.Tag(ctx, opts)
}

func runPublish(cmd *cobra.Command, args []string) error {
	draft, _ := cmd.Flags().GetBool("draft")
	_, m, err := manager(cmd)
	if err != nil {
		return err
	}
	return m.Publish(cmd.Context(), release.PublishOptions{Service: args[0], Version: args[1], Draft: draft})
}
