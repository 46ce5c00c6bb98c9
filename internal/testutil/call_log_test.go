package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/decg-project/decg/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadCallLog(t *testing.T) {
	t.Parallel()

	fake := NewFakeRunner().On("git rev-parse", shell.Result{ExitCode: 128, Stderr: "fatal"})
	_, _ = fake.Run(context.Background(), shell.Git("/hub", "status", "--short"))
	_, _ = fake.Run(context.Background(), shell.Git("/hub", "rev-parse", "--verify", "x"))

	path := filepath.Join(t.TempDir(), "calls.yaml")
	require.NoError(t, WriteCallLog(path, fake.Calls()))

	log, err := ReadCallLog(path)
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)

	assert.Equal(t, "git", log.Entries[0].Method)
	assert.Equal(t, []string{"status", "--short"}, log.Entries[0].Args)
	assert.Equal(t, "/hub", log.Entries[0].Dir)
	assert.Empty(t, log.Entries[0].Error)

	assert.Equal(t, 128, log.Entries[1].ExitCode)
	assert.Contains(t, log.Entries[1].Error, "exited with status 128")
}

func TestReadCallLog_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadCallLog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
