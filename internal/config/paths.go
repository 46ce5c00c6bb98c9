package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file, following
// os.UserConfigDir (XDG_CONFIG_HOME on Linux).
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "decg", "config.yml"), nil
}

// HubConfigDir returns the hub-level config directory.
func HubConfigDir(hubRoot string) string {
	return filepath.Join(hubRoot, ".decg")
}

// HubConfigPath returns the hub-level config file.
func HubConfigPath(hubRoot string) string {
	return filepath.Join(HubConfigDir(hubRoot), "config.yml")
}
