package release

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/decg-project/decg/internal/cli/clitest"
	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/release"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newManager(t *testing.T, f *clitest.Fixture) *release.Manager {
	t.Helper()
	m, err := f.Env.Release()
	require.NoError(t, err)
	return m
}

func TestReleaseCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, shared.GroupRelease, ReleaseCmd.GroupID)
	since := changelogCmd.Flags().Lookup("since")
	require.NotNil(t, since)
	assert.Equal(t, "720h0m0s", since.DefValue)
	assert.Equal(t, "m", tagCmd.Flags().Lookup("message").Shorthand)
	assert.NotNil(t, tagCmd.Flags().Lookup("no-push"))
	assert.NotNil(t, publishCmd.Flags().Lookup("draft"))
}

func TestExecuteChangelog(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    *string
		date     string
		dateSet  bool
		wantDate string
	}{
		"date flag":                {date: "2026-11-02", dateSet: true, wantDate: "2026-11-02"},
		"empty date flag":          {date: "", dateSet: true, wantDate: "TBD"},
		"prompted on terminal":     {input: ptr("2026-12-01\n"), wantDate: "2026-12-01"},
		"prompt accepts default":   {input: ptr("\n"), wantDate: "TBD"},
		"non-interactive uses TBD": {wantDate: "TBD"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var opts []clitest.Option
			if tc.input != nil {
				opts = append(opts, clitest.WithInput(*tc.input))
			}
			f := clitest.New(t, opts...)
			f.Git.Subjects = []string{"feat: sso login", "fix: token refresh"}

			file, err := executeChangelog(f.Env, newManager(t, f), changelogArgs{
				Service:   "auth",
				Version:   "v1.3.0",
				Date:      tc.date,
				DateSet:   tc.dateSet,
				Since:     48 * time.Hour,
				Reference: reference,
			})
			require.NoError(t, err)
			assert.Equal(t, "releases/auth/v1.3.0/CHANGELOG.md", file)
			assert.Equal(t, reference.Add(-48*time.Hour), f.Git.Since)

			content, err := os.ReadFile(f.Path(file))
			require.NoError(t, err)
			assert.Contains(t, string(content), "## [v1.3.0] - "+tc.wantDate)
			assert.Contains(t, string(content), "- feat: sso login")
		})
	}
}

func TestExecuteChangelog_RejectsNonPositiveSince(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	_, err := executeChangelog(f.Env, newManager(t, f), changelogArgs{
		Service: "auth", Version: "v1.3.0", DateSet: true, Since: 0, Reference: reference,
	})
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArguments, shared.ExitCode(err))
}

func TestPushChoice(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args []string
		want *bool
	}{
		"neither":    {args: nil, want: nil},
		"push":       {args: []string{"--push"}, want: ptr(true)},
		"no-push":    {args: []string{"--no-push"}, want: ptr(false)},
		"push=false": {args: []string{"--push=false"}, want: ptr(false)},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := &cobra.Command{Use: "tag"}
			cmd.Flags().Bool("push", false, "")
			cmd.Flags().Bool("no-push", false, "")
			require.NoError(t, cmd.ParseFlags(tc.args))
			assert.Equal(t, tc.want, pushChoice(cmd))
		})
	}
}

func TestExecuteTag(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    *string
		push     *bool
		wantPush bool
	}{
		"flag push":               {push: ptr(true), wantPush: true},
		"flag no push":            {push: ptr(false)},
		"confirmed on terminal":   {input: ptr("y\n"), wantPush: true},
		"declined on terminal":    {input: ptr("n\n")},
		"non-interactive no push": {},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var opts []clitest.Option
			if tc.input != nil {
				opts = append(opts, clitest.WithInput(*tc.input))
			}
			f := clitest.New(t, opts...)

			tag, err := executeTag(context.Background(), f.Env, newManager(t, f),
				release.TagOptions{Service: "auth", Version: "v1.3.0"}, tc.push)
			require.NoError(t, err)
			assert.Equal(t, "auth-v1.3.0", tag)

			want := []string{`git tag -a auth-v1.3.0 -m "Release auth v1.3.0"`}
			if tc.wantPush {
				want = append(want, "git push origin auth-v1.3.0")
			}
			assert.Equal(t, want, f.Runner.Lines())
		})
	}
}

func TestExecuteTag_Exists(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	f.Git.Tags[f.Root] = []string{"auth-v1.3.0"}

	_, err := executeTag(context.Background(), f.Env, newManager(t, f),
		release.TagOptions{Service: "auth", Version: "v1.3.0"}, ptr(true))
	require.Error(t, err)
	assert.True(t, errors.Is(err, release.ErrTagExists))
	assert.Equal(t, shared.ExitFailure, shared.ExitCode(err))
	assert.Empty(t, f.Runner.Commands())
}

func ptr[T any](v T) *T {
	return &v
}
