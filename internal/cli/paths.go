package cli

import (
	"os"
	"path/filepath"
)

// appName is the application name used for directories and display.
const appName = "esflame"

// cacheDir returns the artifact cache directory (~/.cache/esflame).
func cacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the optional config file path
// (~/.config/esflame/config.toml).
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
