package branch

import (
	"context"
	"testing"

	"github.com/decg-project/decg/internal/cli/clitest"
	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchCmd_Flags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		flag      string
		shorthand string
	}{
		"repo":  {flag: "repo", shorthand: "r"},
		"title": {flag: "title", shorthand: "t"},
		"body":  {flag: "body", shorthand: "b"},
		"draft": {flag: "draft", shorthand: "d"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := prCmd
			if tc.flag == "repo" {
				cmd = createCmd
			}
			f := cmd.Flags().Lookup(tc.flag)
			require.NotNil(t, f)
			assert.Equal(t, tc.shorthand, f.Shorthand)
		})
	}
}

func TestExecuteCreate(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	f.Checkout(t, "apps/decg-fe-monorepo")
	f.Checkout(t, "apps/decg-be-monorepo")

	err := executeCreate(context.Background(), f.Env, workspace.BranchCreateOptions{
		TaskID:      "PROJ-42",
		Description: "fix login; rm -rf /",
		Repos:       []string{"decg-be-monorepo", "nope"},
	})
	require.NoError(t, err)

	cmds := f.Runner.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"checkout", "-b", "task/PROJ-42-fix login; rm -rf /"}, cmds[0].Args)
	assert.Equal(t, f.Path("apps/decg-be-monorepo"), cmds[0].Dir)
	assert.Contains(t, f.Out.String(), "Unknown repository: nope")
}

func TestExecuteCreate_DefaultReposByDerivedAlias(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	f.Checkout(t, "apps/decg-fe-monorepo")
	f.Checkout(t, "apps/decg-be-monorepo")

	err := executeCreate(context.Background(), f.Env, workspace.BranchCreateOptions{
		TaskID:      "PROJ-7",
		Description: "signup",
	})
	require.NoError(t, err)

	cmds := f.Runner.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, f.Path("apps/decg-fe-monorepo"), cmds[0].Dir)
	assert.Equal(t, f.Path("apps/decg-be-monorepo"), cmds[1].Dir)
	assert.NotContains(t, f.Out.String(), "Unknown repository")
}

func TestExecuteSync_ContinuesOnFailure(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	f.Checkout(t, "apps/decg-fe-monorepo")
	f.Checkout(t, "apps/decg-be-monorepo")
	f.Runner.OnIn(f.Path("apps/decg-fe-monorepo"), "git pull", shell.Result{ExitCode: 1, Stderr: "conflict"})

	require.NoError(t, executeSync(context.Background(), f.Env))
	assert.Equal(t, 2, f.Runner.CountPrefix("git pull --rebase"))
	assert.Contains(t, f.Out.String(), "Sync failed for apps/decg-fe-monorepo")
}

func TestExecutePR(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tools    map[string]bool
		opts     workspace.PROptions
		wantErr  bool
		wantArgs []string
	}{
		"title and draft": {
			tools:    map[string]bool{"gh": true},
			opts:     workspace.PROptions{Title: "Fix login", Draft: true},
			wantArgs: []string{"pr", "create", "--title", "Fix login", "--draft"},
		},
		"gh missing": {
			tools:   map[string]bool{},
			opts:    workspace.PROptions{Title: "Fix login"},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := clitest.New(t)
			f.Tools = tc.tools

			err := executePR(context.Background(), f.Env, tc.opts)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, shared.ExitFailure, shared.ExitCode(err))
				assert.Empty(t, f.Runner.Commands())
				return
			}
			require.NoError(t, err)
			cmds := f.Runner.Commands()
			require.Len(t, cmds, 1)
			assert.Equal(t, "gh", cmds[0].Name)
			assert.Equal(t, tc.wantArgs, cmds[0].Args)
			assert.True(t, cmds[0].Interactive)
		})
	}
}
