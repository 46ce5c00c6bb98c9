package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestStatusLines(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		print func(*bytes.Buffer)
		want  string
	}{
		"success": {
			print: func(b *bytes.Buffer) { Success(b, "created %s", "workspace/auth-v1.0") },
			want:  "✓ created workspace/auth-v1.0\n",
		},
		"info": {
			print: func(b *bytes.Buffer) { Info(b, "switched") },
			want:  "ℹ switched\n",
		},
		"warning": {
			print: func(b *bytes.Buffer) { Warning(b, "%d skipped", 2) },
			want:  "⚠ 2 skipped\n",
		},
		"failure": {
			print: func(b *bytes.Buffer) { Failure(b, "boom") },
			want:  "✗ boom\n",
		},
		"step": {
			print: func(b *bytes.Buffer) { Step(b, 1, 4, "Hub branch") },
			want:  "\n[1/4] Hub branch...\n",
		},
		"item": {
			print: func(b *bytes.Buffer) { Item(b, MarkOK, "src/auth") },
			want:  "    ✓ src/auth\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.print(&buf)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Table(&buf, []string{"Version", "Released"}, [][]string{
		{"v1.0", "yes"},
		{"v1.1", "no"},
	})
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "v1.0")
	assert.Contains(t, got, "v1.1")
	assert.Contains(t, strings.ToUpper(got), "RELEASED")
}
