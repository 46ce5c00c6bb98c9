package dev

import (
	"context"
	"testing"

	"github.com/decg-project/decg/internal/cli/clitest"
	"github.com/decg-project/decg/internal/cli/shared"
	"github.com/decg-project/decg/internal/devenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const composeFile = `services:
  backend:
    image: decg/backend:dev
  frontend:
    image: decg/frontend:dev
`

func TestDevCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, shared.GroupDevelopment, DevCmd.GroupID)

	tests := map[string]struct {
		flag      string
		shorthand string
		def       string
	}{
		"start service": {flag: "service", shorthand: "s", def: ""},
		"start attach":  {flag: "attach", def: "false"},
		"logs follow":   {flag: "no-follow", def: "false"},
		"logs tail":     {flag: "tail", def: "100"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := startCmd
			if tc.flag == "no-follow" || tc.flag == "tail" {
				cmd = logsCmd
			}
			f := cmd.Flags().Lookup(tc.flag)
			require.NotNil(t, f)
			assert.Equal(t, tc.shorthand, f.Shorthand)
			assert.Equal(t, tc.def, f.DefValue)
		})
	}
}

func TestLogsOptions(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args     []string
		noFollow bool
		tail     int
		want     devenv.LogsOptions
	}{
		"defaults":         {tail: 100, want: devenv.LogsOptions{Follow: true, Tail: 100}},
		"service":          {args: []string{"backend"}, tail: 100, want: devenv.LogsOptions{Service: "backend", Follow: true, Tail: 100}},
		"no follow":        {noFollow: true, tail: 20, want: devenv.LogsOptions{Tail: 20}},
		"negative tail":    {tail: -5, want: devenv.LogsOptions{Follow: true, Tail: 100}},
		"zero tail passes": {tail: 0, want: devenv.LogsOptions{Follow: true, Tail: 0}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, logsOptions(tc.args, tc.noFollow, tc.tail))
		})
	}
}

func TestDevThroughEnv(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	f.Write(t, "scripts/docker/docker-compose.dev.yml", composeFile)

	dev, err := f.Env.Dev()
	require.NoError(t, err)

	require.NoError(t, dev.Start(context.Background(), devenv.StartOptions{Service: "backend"}))
	require.NoError(t, dev.Logs(context.Background(), logsOptions([]string{"backend"}, true, 10)))

	compose := f.Path("scripts/docker/docker-compose.dev.yml")
	assert.Equal(t, []string{
		"docker-compose -f " + compose + " up -d backend",
		"docker-compose -f " + compose + " logs --tail 10 backend",
	}, f.Runner.Lines())
	assert.Contains(t, f.Out.String(), "Frontend: http://localhost:3000")
}

func TestDevThroughEnv_MissingComposeFile(t *testing.T) {
	t.Parallel()

	f := clitest.New(t)
	dev, err := f.Env.Dev()
	require.NoError(t, err)

	err = dev.Stop(context.Background())
	require.Error(t, err)
	assert.Equal(t, shared.ExitFailure, shared.ExitCode(err))
	assert.Empty(t, f.Runner.Commands())
}
