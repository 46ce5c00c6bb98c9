// Package config provides layered configuration for decg using koanf.
// Configuration is loaded with priority: environment variables (DECG_*) >
// explicit --config file > hub config (<hub>/.decg/config.yml) > user config
// ($XDG_CONFIG_HOME/decg/config.yml) > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/go-homedir"
)

// EnvPrefix is the prefix of environment overrides. Nested keys use a double
// underscore: DECG_DEV__COMPOSE_FILE sets dev.compose_file.
const EnvPrefix = "DECG_"

// Configuration represents the decg CLI configuration.
type Configuration struct {
	// LogLevel sets the diagnostic log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	Hub HubConfig `koanf:"hub" yaml:"hub"`

	// Submodules lists the hub's submodules in processing order. When empty,
	// submodules are read from the hub's .gitmodules.
	Submodules []SubmoduleConfig `koanf:"submodules" yaml:"submodules" validate:"unique=Name,unique=Path,dive"`

	Paths  PathsConfig  `koanf:"paths" yaml:"paths"`
	Sparse SparseConfig `koanf:"sparse" yaml:"sparse"`
	Dev    DevConfig    `koanf:"dev" yaml:"dev"`
	Branch BranchConfig `koanf:"branch" yaml:"branch"`
	Test   TestConfig   `koanf:"test" yaml:"test"`
	GH     GHConfig     `koanf:"gh" yaml:"gh"`
}

// HubConfig configures workspace-root discovery.
type HubConfig struct {
	// Marker is the file whose presence identifies the hub root.
	Marker string `koanf:"marker" yaml:"marker" validate:"required"`
}

// SubmoduleConfig names one submodule of the hub.
type SubmoduleConfig struct {
	Name  string `koanf:"name" yaml:"name" validate:"required"`
	Path  string `koanf:"path" yaml:"path" validate:"required"`
	Alias string `koanf:"alias" yaml:"alias,omitempty"`
}

// PathsConfig holds hub-relative directories.
type PathsConfig struct {
	DocsDir     string `koanf:"docs_dir" yaml:"docs_dir" validate:"required"`
	ReleasesDir string `koanf:"releases_dir" yaml:"releases_dir" validate:"required"`
	ProfilesDir string `koanf:"profiles_dir" yaml:"profiles_dir" validate:"required"`
}

// SparseConfig configures sparse-checkout application.
type SparseConfig struct {
	// AlwaysInclude is appended to every INCLUDE-mode checkout set.
	AlwaysInclude []string `koanf:"always_include" yaml:"always_include"`
}

// DevConfig configures the container dev environment.
type DevConfig struct {
	ComposeFile    string           `koanf:"compose_file" yaml:"compose_file" validate:"required"`
	ComposeCommand string           `koanf:"compose_command" yaml:"compose_command" validate:"required"`
	Endpoints      []EndpointConfig `koanf:"endpoints" yaml:"endpoints" validate:"dive"`
}

// EndpointConfig is a URL shown after `dev start`.
type EndpointConfig struct {
	Name string `koanf:"name" yaml:"name" validate:"required"`
	URL  string `koanf:"url" yaml:"url" validate:"required"`
}

// BranchConfig configures task branch creation.
type BranchConfig struct {
	// DefaultRepos selects submodules (alias, name or path) for `branch create`
	// when --repo is not given. Empty means every submodule.
	DefaultRepos []string `koanf:"default_repos" yaml:"default_repos"`
}

// TestConfig configures the test suite commands. Command strings are split
// into argument vectors with shell word rules; they are never run by a shell.
type TestConfig struct {
	Dir                string `koanf:"dir" yaml:"dir" validate:"required"`
	Runner             string `koanf:"runner" yaml:"runner"`
	UnitCmd            string `koanf:"unit_cmd" yaml:"unit_cmd" validate:"required"`
	UnitPath           string `koanf:"unit_path" yaml:"unit_path"`
	E2ECmd             string `koanf:"e2e_cmd" yaml:"e2e_cmd" validate:"required"`
	AllCmd             string `koanf:"all_cmd" yaml:"all_cmd" validate:"required"`
	CoverageArgs       string `koanf:"coverage_args" yaml:"coverage_args"`
	CoverageReportArgs string `koanf:"coverage_report_args" yaml:"coverage_report_args"`
	CoverageHTML       string `koanf:"coverage_html" yaml:"coverage_html"`
}

// GHConfig configures the GitHub CLI.
type GHConfig struct {
	Command string `koanf:"command" yaml:"command" validate:"required"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// HubRoot enables the hub-level config layer (<HubRoot>/.decg/config.yml).
	HubRoot string
	// ExplicitPath is a config file given with --config. It must exist.
	ExplicitPath string
	// SkipUser disables the user-level layer (tests).
	SkipUser bool
}

// Load loads defaults, user, hub, explicit and environment layers.
func Load(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUser {
		if err := loadUserConfig(k); err != nil {
			return nil, err
		}
	}

	if opts.HubRoot != "" {
		if err := loadOptionalYAML(k, HubConfigPath(opts.HubRoot), "hub"); err != nil {
			return nil, err
		}
	}

	if opts.ExplicitPath != "" {
		path, err := homedir.Expand(opts.ExplicitPath)
		if err != nil {
			return nil, fmt.Errorf("expanding config path %s: %w", opts.ExplicitPath, err)
		}
		if !fileExists(path) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if err := loadYAMLConfig(k, path, "explicit"); err != nil {
			return nil, err
		}
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config when present.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil {
		return nil
	}
	return loadOptionalYAML(k, path, "user")
}

func loadOptionalYAML(k *koanf.Koanf, path, configType string) error {
	if !fileExists(path) {
		return nil
	}
	return loadYAMLConfig(k, path, configType)
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := CheckSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("loading environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration.
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// Example: DECG_DEV__COMPOSE_FILE -> dev.compose_file
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
