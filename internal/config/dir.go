package config

import (
	"os"
	"path/filepath"
)

// Dir returns the directory holding reqnest configuration. REQNEST_CONFIG_DIR
// overrides the platform default, mainly for tests.
func Dir() string {
	if dir := os.Getenv("REQNEST_CONFIG_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return ".reqnest"
		}
		return filepath.Join(home, ".reqnest")
	}
	return filepath.Join(base, "reqnest")
}

// DefaultWorkspacePath is where the workspace database lives unless settings
// or a flag say otherwise.
func DefaultWorkspacePath() string {
	return filepath.Join(Dir(), "workspace.db")
}
