package shared

import (
	"errors"
	"fmt"
	"testing"

	clierrors "github.com/decg-project/decg/internal/errors"
	"github.com/decg-project/decg/internal/shell"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		constant int
		want     int
	}{
		"ExitSuccess":          {constant: ExitSuccess, want: 0},
		"ExitFailure":          {constant: ExitFailure, want: 1},
		"ExitInvalidArguments": {constant: ExitInvalidArguments, want: 3},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.constant)
		})
	}
}

func TestGroupConstants(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		constant string
		want     string
	}{
		"GroupWorkspace":     {constant: GroupWorkspace, want: "workspace"},
		"GroupDevelopment":   {constant: GroupDevelopment, want: "development"},
		"GroupRelease":       {constant: GroupRelease, want: "release"},
		"GroupConfiguration": {constant: GroupConfiguration, want: "configuration"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.constant)
		})
	}
}

func TestNewExitError(t *testing.T) {
	t.Parallel()

	err := NewExitError(4)
	assert.Equal(t, "exit code 4", err.Error())

	var exitErr *ExitError
	assert.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 4, exitErr.Code)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	childFailed := &shell.ExitError{Command: shell.Command{Name: "pytest"}, Code: 5}

	tests := map[string]struct {
		err  error
		want int
	}{
		"nil is success": {
			err:  nil,
			want: 0,
		},
		"child exit status propagates": {
			err:  childFailed,
			want: 5,
		},
		"wrapped child exit status propagates": {
			err:  fmt.Errorf("running tests: %w", childFailed),
			want: 5,
		},
		"explicit exit error": {
			err:  NewExitError(4),
			want: 4,
		},
		"argument error": {
			err:  clierrors.NewArgumentError("missing service"),
			want: 3,
		},
		"prerequisite error": {
			err:  clierrors.ComposeFileMissing("docker-compose.yml"),
			want: 1,
		},
		"plain error": {
			err:  errors.New("boom"),
			want: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}
