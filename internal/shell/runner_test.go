package shell_test

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/decg-project/decg/internal/shell"
	"github.com/decg-project/decg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperProcess(t *testing.T) {
	testutil.TestHelperProcess(t)
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cmd  shell.Command
		want string
	}{
		"plain args": {
			cmd:  shell.Git("/hub", "checkout", "-b", "workspace/svc-v1"),
			want: "git checkout -b workspace/svc-v1",
		},
		"arg with spaces is quoted": {
			cmd:  shell.Command{Name: "gh", Args: []string{"pr", "create", "--title", "fix login"}},
			want: `gh pr create --title "fix login"`,
		},
		"empty arg is visible": {
			cmd:  shell.Command{Name: "echo", Args: []string{""}},
			want: `echo ""`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestExecRunner_CapturesOutputAndEchoes(t *testing.T) {
	var out bytes.Buffer
	runner := shell.NewExecRunner(
		shell.WithOutput(&out),
		shell.WithCommandFunc(testutil.HelperCommandFunc(t, "TestHelperProcess", testutil.HelperProcessConfig{
			Stdout: "feature/x\n",
		})),
	)

	res, err := runner.Run(context.Background(), shell.Git(t.TempDir(), "branch", "--show-current"))
	require.NoError(t, err)
	assert.Equal(t, "feature/x\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, out.String(), "→ git branch --show-current")
}

func TestExecRunner_NonZeroExitIsExitError(t *testing.T) {
	runner := shell.NewExecRunner(
		shell.WithOutput(&bytes.Buffer{}),
		shell.WithCommandFunc(testutil.HelperCommandFunc(t, "TestHelperProcess", testutil.HelperProcessConfig{
			ExitCode: 3,
			Stderr:   "boom",
		})),
	)

	res, err := runner.Run(context.Background(), shell.Command{Name: "docker-compose", Args: []string{"up"}})
	require.Error(t, err)

	var exitErr *shell.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecRunner_PassesArgumentVectorVerbatim(t *testing.T) {
	runner := shell.NewExecRunner(
		shell.WithEcho(false),
		shell.WithCommandFunc(testutil.HelperCommandFunc(t, "TestHelperProcess", testutil.HelperProcessConfig{
			EchoArgs: true,
		})),
	)

	desc := `login; rm -rf / && echo "$HOME"`
	res, err := runner.Run(context.Background(), shell.Git("", "checkout", "-b", "task/DEA-1-"+desc))
	require.NoError(t, err)

	args := strings.Split(res.Stdout, "\n")
	assert.Equal(t, []string{"git", "checkout", "-b", "task/DEA-1-" + desc}, args)
}

func TestExecRunner_InteractiveStreamsToOutput(t *testing.T) {
	var out bytes.Buffer
	runner := shell.NewExecRunner(
		shell.WithOutput(&out),
		shell.WithErrOutput(&out),
		shell.WithEcho(false),
		shell.WithCommandFunc(testutil.HelperCommandFunc(t, "TestHelperProcess", testutil.HelperProcessConfig{
			Stdout: "container up\n",
		})),
	)

	res, err := runner.Run(context.Background(), shell.Command{Name: "docker-compose", Args: []string{"ps"}, Interactive: true})
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)
	assert.Equal(t, "container up\n", out.String())
}

func TestExecRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	runner := shell.NewExecRunner(shell.WithOutput(&bytes.Buffer{}))
	_, err := runner.Run(context.Background(), shell.Command{Name: "decg-definitely-not-installed"})
	require.Error(t, err)
	assert.False(t, shell.IsExitError(err))
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestTolerate(t *testing.T) {
	t.Parallel()

	exitErr := &shell.ExitError{Code: 1}
	res, err := shell.Tolerate(&shell.Result{ExitCode: 1}, exitErr)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)

	other := errors.New("not found")
	_, err = shell.Tolerate(nil, other)
	assert.Equal(t, other, err)
}
