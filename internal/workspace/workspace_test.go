package workspace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/decg-project/decg/internal/config"
	"github.com/decg-project/decg/internal/health"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/testutil"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

const gitmodules = `[submodule "decg-fe-monorepo"]
	path = apps/decg-fe-monorepo
	url = git@github.com:decg/decg-fe-monorepo.git
[submodule "decg-be-monorepo"]
	path = apps/decg-be-monorepo
	url = git@github.com:decg/decg-be-monorepo.git
[submodule "decg-go-monorepo"]
	path = apps/decg-go-monorepo
	url = git@github.com:decg/decg-go-monorepo.git
`

func init() {
	color.NoColor = true
}

type fixture struct {
	ws     *Workspace
	root   string
	cfg    *config.Configuration
	runner *testutil.FakeRunner
	git    *testutil.FakeGit
	out    *bytes.Buffer
}

type fixtureOption func(*config.Configuration)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, ".gitmodules"), gitmodules)

	cfg, err := config.Load(config.LoadOptions{SkipUser: true})
	require.NoError(t, err)
	for _, opt := range opts {
		opt(cfg)
	}

	h, err := hub.New(root, cfg)
	require.NoError(t, err)

	f := &fixture{
		root:   root,
		cfg:    cfg,
		runner: testutil.NewFakeRunner(),
		git:    testutil.NewFakeGit(),
		out:    &bytes.Buffer{},
	}

	// Cloning a submodule checks out its working copy.
	f.runner.OnDo("git submodule update", func(cmd shell.Command) shell.Result {
		target := cmd.Args[len(cmd.Args)-1]
		testutil.CheckoutSubmodule(t, filepath.Join(root, filepath.FromSlash(target)))
		return shell.Result{}
	})
	// Branch creation is visible to later BranchExists queries.
	f.runner.OnDo("git checkout", func(cmd shell.Command) shell.Result {
		f.git.Checkout(cmd.Dir, cmd.Args[len(cmd.Args)-1])
		return shell.Result{}
	})
	// Submodule git dirs live under the hub's .git/modules.
	f.runner.OnDo("git rev-parse --git-path", func(cmd shell.Command) shell.Result {
		return shell.Result{Stdout: "../../.git/modules/" + filepath.Base(cmd.Dir) + "/info/sparse-checkout\n"}
	})

	lookPath := func(file string) (string, error) {
		if file == "gh" {
			return "/usr/bin/gh", nil
		}
		return "", errors.New("not found")
	}

	ws, err := New(h, cfg, f.runner, f.out,
		WithGitReader(f.git),
		WithChecker(health.NewChecker(health.WithLookPath(lookPath))))
	require.NoError(t, err)
	f.ws = ws
	return f
}

func (f *fixture) sub(name string) string {
	return filepath.Join(f.root, "apps", name)
}

// patternFile is where the sparse patterns of the named submodule land.
func (f *fixture) patternFile(name string) string {
	return filepath.Join(f.root, ".git", "modules", name, "info", "sparse-checkout")
}

func (f *fixture) mkdir(t *testing.T, rel string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, filepath.FromSlash(rel)), 0o755))
}

// checkout marks the named submodule as cloned under apps/.
func (f *fixture) checkout(t *testing.T, name string) {
	t.Helper()
	testutil.CheckoutSubmodule(t, f.sub(name))
}

func withAliases(cfg *config.Configuration) {
	cfg.Submodules = []config.SubmoduleConfig{
		{Name: "decg-fe-monorepo", Path: "apps/decg-fe-monorepo", Alias: "fe"},
		{Name: "decg-be-monorepo", Path: "apps/decg-be-monorepo", Alias: "be"},
		{Name: "decg-go-monorepo", Path: "apps/decg-go-monorepo", Alias: "go"},
	}
}
