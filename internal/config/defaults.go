package config

// GetDefaultConfigTemplate returns a commented config template written by
// `decg config init`.
func GetDefaultConfigTemplate() string {
	return `# decg configuration
# Layers: defaults < ~/.config/decg/config.yml < <hub>/.decg/config.yml < --config < DECG_* env
# Nested keys in env vars use a double underscore: DECG_DEV__COMPOSE_FILE

log_level: warn                       # debug | info | warn | error

hub:
  marker: .gitmodules                 # File that identifies the hub root

# Submodules in processing order. Leave empty to read .gitmodules, where
# "<org>-<alias>-monorepo" names get their alias derived (decg-fe-monorepo: fe).
submodules: []
#  - name: decg-fe-monorepo
#    path: apps/decg-fe-monorepo
#    alias: fe

paths:
  docs_dir: docs                      # <docs_dir>/<service>/<version>/
  releases_dir: releases              # <releases_dir>/<service>/<version>/
  profiles_dir: configs/sparse-profiles

sparse:
  always_include:                     # Appended to every include checkout
    - packages/

dev:
  compose_file: scripts/docker/docker-compose.dev.yml
  compose_command: docker-compose     # e.g. "docker compose"
  endpoints:
    - name: Frontend
      url: http://localhost:3000
    - name: Backend
      url: http://localhost:8000
    - name: API Docs
      url: http://localhost:8000/docs
    - name: pgAdmin
      url: http://localhost:5050

branch:
  default_repos: [fe, be]             # Selectors for 'branch create' without --repo ([] = all)

test:
  dir: apps/decg-be-monorepo
  runner: pytest
  unit_cmd: pytest
  unit_path: tests/unit
  e2e_cmd: pytest tests/e2e/
  all_cmd: pytest
  coverage_args: --cov=src --cov-report=html
  coverage_report_args: --cov-report=term
  coverage_html: htmlcov/index.html

gh:
  command: gh
`
}

// GetDefaults returns the default configuration as flat koanf keys.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"log_level":                 "warn",
		"hub.marker":                ".gitmodules",
		"submodules":                []interface{}{},
		"paths.docs_dir":            "docs",
		"paths.releases_dir":        "releases",
		"paths.profiles_dir":        "configs/sparse-profiles",
		"sparse.always_include":     []string{"packages/"},
		"dev.compose_file":          "scripts/docker/docker-compose.dev.yml",
		"dev.compose_command":       "docker-compose",
		"dev.endpoints":             defaultEndpoints(),
		"branch.default_repos":      []string{"fe", "be"},
		"test.dir":                  "apps/decg-be-monorepo",
		"test.runner":               "pytest",
		"test.unit_cmd":             "pytest",
		"test.unit_path":            "tests/unit",
		"test.e2e_cmd":              "pytest tests/e2e/",
		"test.all_cmd":              "pytest",
		"test.coverage_args":        "--cov=src --cov-report=html",
		"test.coverage_report_args": "--cov-report=term",
		"test.coverage_html":        "htmlcov/index.html",
		"gh.command":                "gh",
	}
}

func defaultEndpoints() []interface{} {
	return []interface{}{
		map[string]interface{}{"name": "Frontend", "url": "http://localhost:3000"},
		map[string]interface{}{"name": "Backend", "url": "http://localhost:8000"},
		map[string]interface{}{"name": "API Docs", "url": "http://localhost:8000/docs"},
		map[string]interface{}{"name": "pgAdmin", "url": "http://localhost:5050"},
	}
}
