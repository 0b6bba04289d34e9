// ABOUTME: ${VAR} expansion in path-like settings after the YAML layers merge
// ABOUTME: Unset variables become empty, matching shell semantics

package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in the string settings that commonly
// reference the environment (device names, directories, log file).
func ResolveEnvVars(s *Settings) {
	s.Line.Name = expandEnv(s.Line.Name)
	s.Save.Dir = expandEnv(s.Save.Dir)
	s.Log.File = expandEnv(s.Log.File)
}

func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}
