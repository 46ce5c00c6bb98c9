package testrun

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/decg-project/decg/internal/config"
	"github.com/decg-project/decg/internal/hub"
	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuite(t *testing.T, withDir bool) (*Suite, *testutil.FakeRunner, *bytes.Buffer) {
	t.Helper()

	root := t.TempDir()
	cfg, err := config.Load(config.LoadOptions{SkipUser: true})
	require.NoError(t, err)
	h, err := hub.New(root, cfg)
	require.NoError(t, err)

	if withDir {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "apps", "decg-be-monorepo"), 0o755))
	}

	runner := testutil.NewFakeRunner()
	var out bytes.Buffer
	return New(h, runner, &out, cfg.Test, nil), runner, &out
}

func TestSuite_Commands(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		run  func(context.Context, *Suite) error
		want string
	}{
		"unit all domains": {
			run:  func(ctx context.Context, s *Suite) error { return s.Unit(ctx, UnitOptions{}) },
			want: "pytest tests/unit/",
		},
		"unit one domain verbose": {
			run:  func(ctx context.Context, s *Suite) error { return s.Unit(ctx, UnitOptions{Domain: "auth", Verbose: true}) },
			want: "pytest tests/unit/auth/ -v",
		},
		"e2e all": {
			run:  func(ctx context.Context, s *Suite) error { return s.E2E(ctx, "") },
			want: "pytest tests/e2e/",
		},
		"e2e scenario": {
			run:  func(ctx context.Context, s *Suite) error { return s.E2E(ctx, "login flow") },
			want: `pytest tests/e2e/ -k "login flow"`,
		},
		"all": {
			run:  func(ctx context.Context, s *Suite) error { return s.All(ctx, false) },
			want: "pytest",
		},
		"all with coverage": {
			run:  func(ctx context.Context, s *Suite) error { return s.All(ctx, true) },
			want: "pytest --cov=src --cov-report=html",
		},
		"coverage": {
			run:  func(ctx context.Context, s *Suite) error { return s.Coverage(ctx) },
			want: "pytest --cov=src --cov-report=html --cov-report=term",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s, runner, _ := newSuite(t, true)
			require.NoError(t, tt.run(context.Background(), s))

			assert.Equal(t, []string{tt.want}, runner.Lines())
			cmd := runner.Commands()[0]
			assert.Equal(t, s.Dir(), cmd.Dir)
			assert.True(t, cmd.Interactive)
		})
	}
}

func TestSuite_ScenarioIsOneArgument(t *testing.T) {
	t.Parallel()

	s, runner, _ := newSuite(t, true)
	require.NoError(t, s.E2E(context.Background(), "a; rm -rf /"))
	assert.Equal(t, []string{"tests/e2e/", "-k", "a; rm -rf /"}, runner.Commands()[0].Args)
}

func TestSuite_MissingDirSkips(t *testing.T) {
	t.Parallel()

	s, runner, out := newSuite(t, false)
	require.NoError(t, s.Unit(context.Background(), UnitOptions{}))
	require.NoError(t, s.Coverage(context.Background()))

	assert.Empty(t, runner.Lines())
	assert.Contains(t, out.String(), "Test directory not found: apps/decg-be-monorepo")
	assert.NotContains(t, out.String(), "Coverage report")
}

func TestSuite_ExitCodePropagates(t *testing.T) {
	t.Parallel()

	s, runner, _ := newSuite(t, true)
	runner.On("pytest", shell.Result{ExitCode: 5})

	err := s.All(context.Background(), false)
	require.Error(t, err)

	var exitErr *shell.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 5, exitErr.ExitCode())
}

func TestSuite_CoverageReportLocation(t *testing.T) {
	t.Parallel()

	s, _, out := newSuite(t, true)
	require.NoError(t, s.Coverage(context.Background()))
	assert.Contains(t, out.String(), "Coverage report: apps/decg-be-monorepo/htmlcov/index.html")
}

func TestSuite_BadCommandString(t *testing.T) {
	t.Parallel()

	s, runner, _ := newSuite(t, true)
	s.cfg.UnitCmd = `pytest "unterminated`
	require.Error(t, s.Unit(context.Background(), UnitOptions{}))

	s.cfg.AllCmd = ""
	require.Error(t, s.All(context.Background(), false))
	assert.Empty(t, runner.Lines())
}
