// ABOUTME: Layered YAML settings: defaults, global file, project file, env, CLI overrides
// ABOUTME: Later layers decode onto earlier ones so explicit false/zero values still override

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mauromedda/blanca-go/internal/keybindings"
)

// Driver names accepted in line.driver.
const (
	DriverSerial = "serial"
	DriverPTY    = "pty"
)

// Line endings accepted in outbound.line_ending.
var lineEndings = map[string]string{
	"none": "",
	"cr":   "\r",
	"lf":   "\n",
	"crlf": "\r\n",
}

// Settings holds the merged configuration.
type Settings struct {
	Line     LineSettings     `yaml:"line"`
	Display  DisplaySettings  `yaml:"display"`
	Outbound OutboundSettings `yaml:"outbound"`
	Buffer   BufferSettings   `yaml:"buffer"`
	Save     SaveSettings     `yaml:"save"`
	Log      LogSettings      `yaml:"log"`
	// Keys remaps interactive actions: action name to key list.
	Keys map[string][]string `yaml:"keys"`
}

// LineSettings selects the line opened by /open without arguments.
type LineSettings struct {
	Name        string        `yaml:"name"`
	Rate        int           `yaml:"rate"`
	Driver      string        `yaml:"driver"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// DisplaySettings are the renderer's initial policies.
type DisplaySettings struct {
	Timestamps      bool `yaml:"timestamps"`
	Newline         bool `yaml:"newline"`
	ScrollbackLines int  `yaml:"scrollback_lines"`
}

// OutboundSettings shape text typed by the user.
type OutboundSettings struct {
	LineEnding string `yaml:"line_ending"`
}

// BufferSettings bound the read accumulator.
type BufferSettings struct {
	MaxBytes      int           `yaml:"max_bytes"`
	UsageInterval time.Duration `yaml:"usage_interval"`
}

// SaveSettings are the defaults for /save.
type SaveSettings struct {
	AsBytes bool   `yaml:"as_bytes"`
	Dump    bool   `yaml:"dump"`
	Dir     string `yaml:"dir"`
}

// LogSettings configure the diagnostic log.
type LogSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Overrides carries CLI flag values. Zero values leave settings untouched.
type Overrides struct {
	Line    string
	Rate    int
	Driver  string
	Verbose bool
}

// envOverrides maps BLANCA_* environment variables.
type envOverrides struct {
	Line       string `envconfig:"LINE"`
	Rate       int    `envconfig:"RATE"`
	Driver     string `envconfig:"DRIVER"`
	LineEnding string `envconfig:"LINE_ENDING"`
	Timestamps *bool  `envconfig:"TIMESTAMPS"`
	Newline    *bool  `envconfig:"NEWLINE"`
	MaxBytes   *int   `envconfig:"MAX_BYTES"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	LogFile    string `envconfig:"LOG_FILE"`
}

// Defaults returns the built-in settings. Timestamp and newline policies
// start enabled, matching the classic terminal behaviour.
func Defaults() *Settings {
	return &Settings{
		Line: LineSettings{
			Name:        "/dev/ttyUSB0",
			Rate:        115200,
			Driver:      DriverSerial,
			ReadTimeout: 50 * time.Millisecond,
		},
		Display: DisplaySettings{
			Timestamps:      true,
			Newline:         true,
			ScrollbackLines: 5000,
		},
		Outbound: OutboundSettings{LineEnding: "none"},
		Buffer: BufferSettings{
			MaxBytes:      64 << 20,
			UsageInterval: time.Second,
		},
		Save: SaveSettings{AsBytes: true},
		Log:  LogSettings{Level: "info"},
	}
}

// LoadAll builds settings from every layer: defaults, the global file, the
// project file, BLANCA_* environment variables, then CLI overrides.
func LoadAll(projectRoot string, o Overrides) (*Settings, error) {
	s := Defaults()

	if err := decodeFile(GlobalConfigFile(), s); err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if err := decodeFile(ProjectConfigFile(projectRoot), s); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	ResolveEnvVars(s)

	if err := applyEnv(s); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	applyOverrides(s, o)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// decodeFile decodes a YAML file onto s. A missing file is not an error.
func decodeFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return decode(data, s)
}

func decode(data []byte, s *Settings) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	return nil
}

func applyEnv(s *Settings) error {
	var env envOverrides
	if err := envconfig.Process("blanca", &env); err != nil {
		return err
	}
	if env.Line != "" {
		s.Line.Name = env.Line
	}
	if env.Rate != 0 {
		s.Line.Rate = env.Rate
	}
	if env.Driver != "" {
		s.Line.Driver = env.Driver
	}
	if env.LineEnding != "" {
		s.Outbound.LineEnding = env.LineEnding
	}
	if env.Timestamps != nil {
		s.Display.Timestamps = *env.Timestamps
	}
	if env.Newline != nil {
		s.Display.Newline = *env.Newline
	}
	if env.MaxBytes != nil {
		s.Buffer.MaxBytes = *env.MaxBytes
	}
	if env.LogLevel != "" {
		s.Log.Level = env.LogLevel
	}
	if env.LogFile != "" {
		s.Log.File = env.LogFile
	}
	return nil
}

func applyOverrides(s *Settings, o Overrides) {
	if o.Line != "" {
		s.Line.Name = o.Line
	}
	if o.Rate != 0 {
		s.Line.Rate = o.Rate
	}
	if o.Driver != "" {
		s.Line.Driver = o.Driver
	}
	if o.Verbose {
		s.Log.Level = "debug"
	}
}

// Validate rejects settings the rest of the program cannot honour.
func (s *Settings) Validate() error {
	if s.Line.Rate <= 0 {
		return fmt.Errorf("line.rate must be positive, got %d", s.Line.Rate)
	}
	switch s.Line.Driver {
	case DriverSerial, DriverPTY:
	default:
		return fmt.Errorf("line.driver must be %q or %q, got %q", DriverSerial, DriverPTY, s.Line.Driver)
	}
	if _, ok := lineEndings[s.Outbound.LineEnding]; !ok {
		return fmt.Errorf("outbound.line_ending must be none, cr, lf or crlf, got %q", s.Outbound.LineEnding)
	}
	if s.Display.ScrollbackLines <= 0 {
		return fmt.Errorf("display.scrollback_lines must be positive, got %d", s.Display.ScrollbackLines)
	}
	if s.Buffer.UsageInterval <= 0 {
		return fmt.Errorf("buffer.usage_interval must be positive, got %s", s.Buffer.UsageInterval)
	}
	if s.Buffer.MaxBytes < 0 {
		return fmt.Errorf("buffer.max_bytes must not be negative, got %d", s.Buffer.MaxBytes)
	}
	if _, err := keybindings.New(s.Keys); err != nil {
		return err
	}
	return nil
}

// LineEndingBytes returns the literal suffix for a line_ending name.
// The second value is false for unknown names.
func LineEndingBytes(name string) (string, bool) {
	v, ok := lineEndings[name]
	return v, ok
}
