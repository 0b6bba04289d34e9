// ABOUTME: Standard filesystem paths for blanca configuration, logs, and saves
// ABOUTME: Resolves ~/.blanca/ for global and .blanca/ for project-local paths

package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	globalDirName  = ".blanca"
	projectDirName = ".blanca"
	configFileName = "config.yaml"
)

// GlobalDir returns the user-global config directory (~/.blanca/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.blanca/ in cwd).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFileName)
}

// LogFile returns the log path: the configured one, or ~/.blanca/blanca.log.
func (s *Settings) LogFile() string {
	if s.Log.File != "" {
		return s.Log.File
	}
	return filepath.Join(GlobalDir(), "blanca.log")
}

// DefaultSavePath returns where /save writes when no path is given:
// <save.dir or cwd>/blanca-<timestamp>.txt.
func (s *Settings) DefaultSavePath(now time.Time) string {
	dir := s.Save.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "blanca-"+now.Format("20060102-150405")+".txt")
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
