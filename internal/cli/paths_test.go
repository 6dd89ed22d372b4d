package cli

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir == "" {
		t.Fatal("cacheDir() returned empty string")
	}
	if filepath.Base(dir) != appName {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
	if !strings.Contains(dir, ".cache") {
		t.Errorf("cacheDir() = %q, should contain '.cache'", dir)
	}
}

func TestConfigPath(t *testing.T) {
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("configPath() = %q, should end with config.toml", path)
	}
	if !strings.Contains(path, filepath.Join(".config", appName)) {
		t.Errorf("configPath() = %q, should live under .config/%s", path, appName)
	}
}
