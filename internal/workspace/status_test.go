package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/decg-project/decg/internal/config"
	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.checkout(t, "decg-fe-monorepo")
	f.checkout(t, "decg-be-monorepo")
	testutil.WriteFile(t, filepath.Join(f.root, "scripts", "docker", "docker-compose.dev.yml"), "services: {}\n")

	f.git.Current[f.root] = "workspace/auth-v1.0"
	f.git.Current[f.sub("decg-fe-monorepo")] = "auth/develop/v1.0"
	f.git.Current[f.sub("decg-be-monorepo")] = "task/DEA-1-api"
	f.git.Status[f.sub("decg-be-monorepo")] = []string{" M main.py"}

	var changes []string
	for i := 1; i <= 7; i++ {
		changes = append(changes, fmt.Sprintf("?? notes-%d.md", i))
	}
	f.git.Status[f.root] = changes

	f.runner.On("docker-compose", shell.Result{Stdout: "{\"Name\":\"a\",\"Service\":\"backend\",\"State\":\"running\"}\n" +
		"{\"Name\":\"b\",\"Service\":\"db\",\"State\":\"exited\"}\n"})

	r, err := f.ws.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "workspace/auth-v1.0", r.HubBranch)
	assert.Equal(t, []SubmoduleStatus{
		{Path: "apps/decg-fe-monorepo", Branch: "auth/develop/v1.0", Clean: true},
		{Path: "apps/decg-be-monorepo", Branch: "task/DEA-1-api", Clean: false},
	}, r.Submodules)
	assert.True(t, r.ComposeFile)
	assert.Equal(t, 2, r.Containers)
	assert.Equal(t, 1, r.Running)

	out := f.out.String()
	assert.Contains(t, out, "1 running of 2")
	assert.Contains(t, out, "?? notes-5.md")
	assert.NotContains(t, out, "?? notes-6.md")
	assert.Contains(t, out, "... and 2 more")
	assert.Contains(t, out, "apps/decg-be-monorepo: task/DEA-1-api (uncommitted changes)")

	assert.Len(t, f.runner.Lines(), 1)
	assert.Contains(t, f.runner.Lines()[0], "ps --format json")
}

func TestStatus_Quiet(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	r, err := f.ws.Status(context.Background())
	require.NoError(t, err)

	assert.False(t, r.ComposeFile)
	assert.Empty(t, r.Submodules)
	assert.Empty(t, f.runner.Lines())

	out := f.out.String()
	assert.Contains(t, out, "(no compose file)")
	assert.Contains(t, out, "(no changes)")
	assert.Contains(t, out, "(none checked out)")
}

func TestStatus_SubmoduleOrderSurvivesConcurrentReads(t *testing.T) {
	t.Parallel()

	var names []string
	f := newFixture(t, func(cfg *config.Configuration) {
		cfg.Submodules = nil
		for i := range 3 * statusWorkers {
			name := fmt.Sprintf("svc-%02d", i)
			names = append(names, name)
			cfg.Submodules = append(cfg.Submodules, config.SubmoduleConfig{Name: name, Path: "apps/" + name})
		}
	})
	for _, name := range names {
		f.checkout(t, name)
		f.git.Current[f.sub(name)] = "branch-" + name
	}

	r, err := f.ws.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Submodules, len(names))
	for i, st := range r.Submodules {
		assert.Equal(t, "apps/"+names[i], st.Path)
		assert.Equal(t, "branch-"+names[i], st.Branch)
	}
}

func TestStatus_CancelledContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.checkout(t, "decg-fe-monorepo")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ws.Status(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, f.out.String(), "apps/decg-fe-monorepo")
}
