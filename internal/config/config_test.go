package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeHubConfig(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(HubConfigDir(root), 0o755))
	require.NoError(t, os.WriteFile(HubConfigPath(root), []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(LoadOptions{SkipUser: true})
	require.NoError(t, err)

	assert.Equal(t, ".gitmodules", cfg.Hub.Marker)
	assert.Empty(t, cfg.Submodules)
	assert.Equal(t, "docs", cfg.Paths.DocsDir)
	assert.Equal(t, "releases", cfg.Paths.ReleasesDir)
	assert.Equal(t, "configs/sparse-profiles", cfg.Paths.ProfilesDir)
	assert.Equal(t, "scripts/docker/docker-compose.dev.yml", cfg.Dev.ComposeFile)
	assert.Equal(t, "docker-compose", cfg.Dev.ComposeCommand)
	require.Len(t, cfg.Dev.Endpoints, 4)
	assert.Equal(t, "http://localhost:3000", cfg.Dev.Endpoints[0].URL)
	assert.Equal(t, "gh", cfg.GH.Command)
	assert.Equal(t, "apps/decg-be-monorepo", cfg.Test.Dir)
	assert.Equal(t, []string{"fe", "be"}, cfg.Branch.DefaultRepos)
}

func TestLoad_HubLayerOverridesDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeHubConfig(t, root, `
submodules:
  - name: decg-fe-monorepo
    path: apps/decg-fe-monorepo
    alias: fe
  - name: decg-be-monorepo
    path: apps/decg-be-monorepo
    alias: be
dev:
  compose_command: docker compose
branch:
  default_repos: [fe]
`)

	cfg, err := Load(LoadOptions{HubRoot: root, SkipUser: true})
	require.NoError(t, err)

	require.Len(t, cfg.Submodules, 2)
	assert.Equal(t, SubmoduleConfig{Name: "decg-fe-monorepo", Path: "apps/decg-fe-monorepo", Alias: "fe"}, cfg.Submodules[0])
	assert.Equal(t, "be", cfg.Submodules[1].Alias)
	assert.Equal(t, "docker compose", cfg.Dev.ComposeCommand)
	assert.Equal(t, []string{"fe"}, cfg.Branch.DefaultRepos)
	// untouched keys keep their defaults
	assert.Equal(t, "scripts/docker/docker-compose.dev.yml", cfg.Dev.ComposeFile)
}

func TestLoad_ExplicitPathWinsOverHub(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeHubConfig(t, root, "paths:\n  docs_dir: hub-docs\n")
	explicit := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(explicit, []byte("paths:\n  docs_dir: explicit-docs\n"), 0o644))

	cfg, err := Load(LoadOptions{HubRoot: root, ExplicitPath: explicit, SkipUser: true})
	require.NoError(t, err)
	assert.Equal(t, "explicit-docs", cfg.Paths.DocsDir)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(LoadOptions{ExplicitPath: filepath.Join(t.TempDir(), "nope.yml"), SkipUser: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DECG_DEV__COMPOSE_FILE", "docker/compose.yml")
	t.Setenv("DECG_LOG_LEVEL", "debug")

	cfg, err := Load(LoadOptions{SkipUser: true})
	require.NoError(t, err)
	assert.Equal(t, "docker/compose.yml", cfg.Dev.ComposeFile)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_UserLayer(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	require.NoError(t, os.MkdirAll(filepath.Join(cfgHome, "decg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgHome, "decg", "config.yml"), []byte("gh:\n  command: /opt/gh\n"), 0o644))

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/opt/gh", cfg.GH.Command)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		wantErr string
	}{
		"bad log level": {
			content: "log_level: loud\n",
			wantErr: "must be one of",
		},
		"submodule without path": {
			content: "submodules:\n  - name: fe\n",
			wantErr: "is required",
		},
		"duplicate submodule names": {
			content: "submodules:\n  - {name: a, path: apps/a}\n  - {name: a, path: apps/b}\n",
			wantErr: "must not repeat",
		},
		"duplicate aliases": {
			content: "submodules:\n  - {name: a, path: apps/a, alias: x}\n  - {name: b, path: apps/b, alias: x}\n",
			wantErr: `alias "x"`,
		},
		"empty marker": {
			content: "hub:\n  marker: \"\"\n",
			wantErr: "is required",
		},
		"broken yaml": {
			content: "paths:\n  docs_dir: [unclosed\n",
			wantErr: "validating YAML syntax",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			writeHubConfig(t, root, tt.content)

			_, err := Load(LoadOptions{HubRoot: root, SkipUser: true})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"top level":      {in: "DECG_LOG_LEVEL", want: "log_level"},
		"nested":         {in: "DECG_DEV__COMPOSE_FILE", want: "dev.compose_file"},
		"nested simple":  {in: "DECG_GH__COMMAND", want: "gh.command"},
		"double nesting": {in: "DECG_A__B__C", want: "a.b.c"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, envTransform(tt.in))
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".decg", "config.yml")
	require.NoError(t, WriteTemplate(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &node), "template must be valid YAML")

	err = WriteTemplate(path, false)
	require.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, WriteTemplate(path, true))
}

func TestTemplateLoadsCleanly(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, WriteTemplate(HubConfigPath(root), false))

	cfg, err := Load(LoadOptions{HubRoot: root, SkipUser: true})
	require.NoError(t, err)
	assert.Equal(t, ".gitmodules", cfg.Hub.Marker)
	assert.Equal(t, []string{"packages/"}, cfg.Sparse.AlwaysInclude)
	assert.Equal(t, []string{"fe", "be"}, cfg.Branch.DefaultRepos)
}

func TestCheckSyntax(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("a: 1\nb: [\n"), 0o644))
	blank := filepath.Join(dir, "blank.yml")
	require.NoError(t, os.WriteFile(blank, []byte("\n  \n"), 0o644))

	assert.NoError(t, CheckSyntax(filepath.Join(dir, "missing.yml")))
	assert.NoError(t, CheckSyntax(blank))

	err := CheckSyntax(bad)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, bad, vErr.Source)
	assert.Positive(t, vErr.Line)
	assert.NotContains(t, vErr.Message, "yaml:")
}

func TestValidate_ReportsKeys(t *testing.T) {
	t.Parallel()

	cfg, err := Load(LoadOptions{SkipUser: true})
	require.NoError(t, err)
	cfg.Dev.ComposeCommand = ""
	cfg.Submodules = []SubmoduleConfig{
		{Name: "fe", Path: "../outside"},
		{Name: "be"},
	}

	err = Validate(cfg, "test")
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "test: dev.compose_command is required")
	assert.Contains(t, msg, "test: submodules[1].path is required")
	assert.Contains(t, msg, `submodules[0].path must be a relative path inside the hub, got "../outside"`)
}
