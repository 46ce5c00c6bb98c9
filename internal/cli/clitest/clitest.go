// Package clitest builds command environments over throwaway hubs for the
// tests of the cli packages.
package clitest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/config"
	"github.com/decg-project/decg/internal/health"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/testutil"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Gitmodules declares the two submodules of every fixture hub.
const Gitmodules = `[submodule "decg-fe-monorepo"]
	path = apps/decg-fe-monorepo
	url = git@github.com:decg/decg-fe-monorepo.git
[submodule "decg-be-monorepo"]
	path = apps/decg-be-monorepo
	url = git@github.com:decg/decg-be-monorepo.git
`

func init() {
	color.NoColor = true
}

// Fixture is a hub in a temporary directory with fake collaborators.
type Fixture struct {
	Root   string
	Env    *shared.Env
	Runner *testutil.FakeRunner
	Git    *testutil.FakeGit
	Out    *bytes.Buffer
	// Tools are the binaries the checker finds on PATH.
	Tools map[string]bool
}

// Option adjusts a fixture before its environment is built.
type Option func(*options)

type options struct {
	input       string
	interactive bool
	configure   func(*config.Configuration)
}

// WithInput makes prompts interactive and answers them from input.
func WithInput(input string) Option {
	return func(o *options) {
		o.input = input
		o.interactive = true
	}
}

// WithConfig edits the loaded configuration.
func WithConfig(fn func(*config.Configuration)) Option {
	return func(o *options) {
		o.configure = fn
	}
}

// New creates a fixture hub. git and gh are on PATH; submodule clones create
// their directory and checkouts are visible to the fake git reader.
func New(t *testing.T, opts ...Option) *Fixture {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, ".gitmodules"), Gitmodules)

	cfg, err := config.Load(config.LoadOptions{SkipUser: true})
	require.NoError(t, err)
	if o.configure != nil {
		o.configure(cfg)
	}
	h, err := hub.New(root, cfg)
	require.NoError(t, err)

	f := &Fixture{
		Root:   root,
		Runner: testutil.NewFakeRunner(),
		Git:    testutil.NewFakeGit(),
		Out:    &bytes.Buffer{},
		Tools:  map[string]bool{"git": true, "gh": true},
	}

	f.Runner.OnDo("git submodule update", func(cmd shell.Command) shell.Result {
		target := cmd.Args[len(cmd.Args)-1]
		testutil.CheckoutSubmodule(t, filepath.Join(root, filepath.FromSlash(target)))
		return shell.Result{}
	})
	f.Runner.OnDo("git checkout", func(cmd shell.Command) shell.Result {
		f.Git.Checkout(cmd.Dir, cmd.Args[len(cmd.Args)-1])
		return shell.Result{}
	})
	f.Runner.OnDo("git rev-parse --git-path", func(cmd shell.Command) shell.Result {
		return shell.Result{Stdout: "../../.git/modules/" + filepath.Base(cmd.Dir) + "/info/sparse-checkout\n"}
	})
	t.Cleanup(func() { f.saveCallLog(t) })

	lookPath := func(file string) (string, error) {
		if f.Tools[file] {
			return "/usr/bin/" + file, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}

	f.Env = &shared.Env{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Hub:      h,
		Runner:   f.Runner,
		Git:      f.Git,
		Checker:  health.NewChecker(health.WithLookPath(lookPath)),
		Prompter: shared.NewPrompter(strings.NewReader(o.input), f.Out, o.interactive),
		Out:      f.Out,
	}
	return f
}

// Path joins rel to the hub root.
func (f *Fixture) Path(rel string) string {
	return filepath.Join(f.Root, filepath.FromSlash(rel))
}

// Write creates a file under the hub root.
func (f *Fixture) Write(t *testing.T, rel, content string) {
	t.Helper()
	testutil.WriteFile(t, f.Path(rel), content)
}

// Mkdir creates a directory under the hub root.
func (f *Fixture) Mkdir(t *testing.T, rel string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.Path(rel), 0o755))
}

// Checkout marks the submodule at rel as cloned.
func (f *Fixture) Checkout(t *testing.T, rel string) {
	t.Helper()
	testutil.CheckoutSubmodule(t, f.Path(rel))
}

// ArtifactsEnv names a directory where failing tests leave the commands they
// ran.
const ArtifactsEnv = "DECG_TEST_ARTIFACTS"

func (f *Fixture) saveCallLog(t *testing.T) {
	dir := os.Getenv(ArtifactsEnv)
	if dir == "" || !t.Failed() {
		return
	}
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + ".calls.yaml"
	if err := testutil.WriteCallLog(filepath.Join(dir, name), f.Runner.Calls()); err != nil {
		t.Logf("writing call log: %v", err)
	}
}
