// ABOUTME: Tests for layered settings loading, env overrides, and validation
// ABOUTME: Uses temp HOME and project directories for isolated file-based tests

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// isolate points HOME at an empty temp dir and returns a project root.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	return home, project
}

func TestDefaults_Valid(t *testing.T) {
	t.Parallel()

	s := Defaults()
	if err := s.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v", err)
	}
	if !s.Display.Timestamps || !s.Display.Newline {
		t.Error("timestamp and newline policies should default to on")
	}
	if s.Buffer.UsageInterval != time.Second {
		t.Errorf("UsageInterval = %s, want 1s", s.Buffer.UsageInterval)
	}
}

func TestLoadAll_NoFiles(t *testing.T) {
	_, project := isolate(t)

	s, err := LoadAll(project, Overrides{})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if s.Line.Rate != Defaults().Line.Rate {
		t.Errorf("Rate = %d, want default", s.Line.Rate)
	}
}

func TestLoadAll_ProjectOverridesGlobal(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, ".blanca", "config.yaml"), `
line:
  name: COM1
  rate: 9600
display:
  timestamps: true
`)
	writeFile(t, filepath.Join(project, ".blanca", "config.yaml"), `
line:
  name: COM3
display:
  timestamps: false
buffer:
  usage_interval: 250ms
`)

	s, err := LoadAll(project, Overrides{})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if s.Line.Name != "COM3" {
		t.Errorf("Name = %q, want COM3", s.Line.Name)
	}
	if s.Line.Rate != 9600 {
		t.Errorf("Rate = %d, want 9600 from global", s.Line.Rate)
	}
	if s.Display.Timestamps {
		t.Error("explicit false in project file should override global true")
	}
	if s.Buffer.UsageInterval != 250*time.Millisecond {
		t.Errorf("UsageInterval = %s, want 250ms", s.Buffer.UsageInterval)
	}
}

func TestLoadAll_KeysMergePerAction(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, ".blanca", "config.yaml"), `
keys:
  open: [f2]
  save: [f3]
`)
	writeFile(t, filepath.Join(project, ".blanca", "config.yaml"), `
keys:
  save: [f4]
`)

	s, err := LoadAll(project, Overrides{})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if got := s.Keys["open"]; len(got) != 1 || got[0] != "f2" {
		t.Errorf("Keys[open] = %v, want [f2] from global", got)
	}
	if got := s.Keys["save"]; len(got) != 1 || got[0] != "f4" {
		t.Errorf("Keys[save] = %v, want [f4] from project", got)
	}
}

func TestLoadAll_InvalidYAML(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, ".blanca", "config.yaml"), "line: [unterminated")

	if _, err := LoadAll(project, Overrides{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadAll_EnvOverrides(t *testing.T) {
	_, project := isolate(t)
	t.Setenv("BLANCA_LINE", "/dev/ttyACM0")
	t.Setenv("BLANCA_RATE", "57600")
	t.Setenv("BLANCA_TIMESTAMPS", "false")
	t.Setenv("BLANCA_LINE_ENDING", "crlf")

	s, err := LoadAll(project, Overrides{})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if s.Line.Name != "/dev/ttyACM0" || s.Line.Rate != 57600 {
		t.Errorf("line = %s@%d", s.Line.Name, s.Line.Rate)
	}
	if s.Display.Timestamps {
		t.Error("BLANCA_TIMESTAMPS=false not applied")
	}
	if !s.Display.Newline {
		t.Error("unset BLANCA_NEWLINE must leave the default")
	}
	if s.Outbound.LineEnding != "crlf" {
		t.Errorf("LineEnding = %q", s.Outbound.LineEnding)
	}
}

func TestLoadAll_CLIOverridesWin(t *testing.T) {
	_, project := isolate(t)
	t.Setenv("BLANCA_RATE", "57600")

	s, err := LoadAll(project, Overrides{Line: "X", Rate: 100, Driver: DriverPTY, Verbose: true})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if s.Line.Name != "X" || s.Line.Rate != 100 || s.Line.Driver != DriverPTY {
		t.Errorf("line = %+v", s.Line)
	}
	if s.Log.Level != "debug" {
		t.Errorf("Verbose should force debug, got %q", s.Log.Level)
	}
}

func TestLoadAll_ExpandsEnvVars(t *testing.T) {
	_, project := isolate(t)
	t.Setenv("SERIAL_DEV", "/dev/ttyS4")
	writeFile(t, filepath.Join(project, ".blanca", "config.yaml"), "line:\n  name: ${SERIAL_DEV}\n")

	s, err := LoadAll(project, Overrides{})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if s.Line.Name != "/dev/ttyS4" {
		t.Errorf("Name = %q, want /dev/ttyS4", s.Line.Name)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"zero rate", func(s *Settings) { s.Line.Rate = 0 }, "line.rate"},
		{"unknown driver", func(s *Settings) { s.Line.Driver = "usb" }, "line.driver"},
		{"unknown line ending", func(s *Settings) { s.Outbound.LineEnding = "nl" }, "line_ending"},
		{"zero scrollback", func(s *Settings) { s.Display.ScrollbackLines = 0 }, "scrollback"},
		{"zero interval", func(s *Settings) { s.Buffer.UsageInterval = 0 }, "usage_interval"},
		{"negative max", func(s *Settings) { s.Buffer.MaxBytes = -1 }, "max_bytes"},
		{"unknown key action", func(s *Settings) { s.Keys = map[string][]string{"launch": {"f5"}} }, "unknown action"},
		{"key conflict", func(s *Settings) { s.Keys = map[string][]string{"save": {"ctrl+o"}} }, "bound to open and save"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := Defaults()
			tt.mutate(s)
			err := s.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLineEndingBytes(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{"none": "", "cr": "\r", "lf": "\n", "crlf": "\r\n"} {
		got, ok := LineEndingBytes(name)
		if !ok || got != want {
			t.Errorf("LineEndingBytes(%q) = %q, %v", name, got, ok)
		}
	}
	if _, ok := LineEndingBytes("bogus"); ok {
		t.Error("bogus line ending accepted")
	}
}

func TestDefaultSavePath(t *testing.T) {
	t.Parallel()

	s := Defaults()
	s.Save.Dir = "/tmp/logs"
	now := time.Date(2026, 10, 16, 9, 5, 7, 0, time.UTC)
	want := filepath.Join("/tmp/logs", "blanca-20261016-090507.txt")
	if got := s.DefaultSavePath(now); got != want {
		t.Errorf("DefaultSavePath = %q, want %q", got, want)
	}
}
