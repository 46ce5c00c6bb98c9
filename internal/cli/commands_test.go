package cli

import (
	"context"
	"testing"

	"github.com/decg-project/decg/internal/cli/clitest"
	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_Flags(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"include", "profile", "skip-docker"} {
		assert.NotNil(t, initCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "i", initCmd.Flags().Lookup("include").Shorthand)
}

func TestExecuteInit(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	err := executeInit(context.Background(), f.Env, workspace.InitOptions{
		Service:    "auth",
		Version:    "v1.2.0",
		SkipDocker: true,
	})
	require.NoError(t, err)

	lines := f.Runner.Lines()
	assert.Contains(t, lines, "git checkout -b workspace/auth-v1.2.0")
	assert.Contains(t, lines, "git submodule update --init --depth 1 apps/decg-fe-monorepo")
	assert.Contains(t, lines, "git checkout -b auth/develop/v1.2.0")
	assert.DirExists(t, f.Path("docs/auth/v1.2.0"))
	assert.FileExists(t, f.Path("releases/auth/v1.2.0/CHANGELOG.md"))
	assert.Contains(t, f.Out.String(), "Workspace initialized")
}

func TestExecuteInit_MissingProfile(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	err := executeInit(context.Background(), f.Env, workspace.InitOptions{
		Service:     "auth",
		Version:     "v1.2.0",
		ProfilePath: "configs/sparse-profiles/missing.yaml",
	})
	require.Error(t, err)
	cliErr := clierrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Equal(t, clierrors.Prerequisite, cliErr.Category)
	assert.Empty(t, f.Runner.Commands())
}

func TestExecuteStatus(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	f.Git.Current[f.Root] = "workspace/auth-v1.2.0"
	f.Checkout(t, "apps/decg-fe-monorepo")

	require.NoError(t, executeStatus(context.Background(), f.Env))
	out := f.Out.String()
	assert.Contains(t, out, "workspace/auth-v1.2.0")
	assert.Contains(t, out, "apps/decg-fe-monorepo")
	assert.Contains(t, out, "(no compose file)")
}

func TestExecuteDoctor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tools   map[string]bool
		wantErr bool
		want    []string
	}{
		"all tools present": {
			tools: map[string]bool{"git": true, "docker-compose": true, "gh": true, "pytest": true},
			want:  []string{"✓ Git", "✓ Compose", "✓ GitHub CLI", "✓ Test runner"},
		},
		"optional tools missing": {
			tools: map[string]bool{"git": true},
			want:  []string{"✓ Git", "○ Compose", "○ GitHub CLI"},
		},
		"git missing": {
			tools:   map[string]bool{"gh": true},
			wantErr: true,
			want:    []string{"✗ Git", "✓ GitHub CLI"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := clitest.New(t)
			f.Tools = tc.tools

			err := executeDoctor(f.Env)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, clierrors.Prerequisite, clierrors.AsCLIError(err).Category)
			} else {
				require.NoError(t, err)
			}
			out := f.Out.String()
			assert.Contains(t, out, "Hub root: "+f.Root)
			for _, want := range tc.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestExecuteInit_PropagatesCheckoutFailure(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	f.Runner.On("git checkout -b workspace/", shell.Result{ExitCode: 128, Stderr: "fatal: not a git repository"})

	err := executeInit(context.Background(), f.Env, workspace.InitOptions{Service: "auth", Version: "v1.2.0"})
	require.Error(t, err)
	assert.True(t, shell.IsExitError(err))
}
