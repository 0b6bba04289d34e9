// ABOUTME: Persistent CLI flags shared by every blanca command
// ABOUTME: Flag values become config.Overrides, the last settings layer

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mauromedda/blanca-go/internal/config"
	"github.com/mauromedda/blanca-go/internal/log"
)

// globalFlags holds the persistent flag values.
type globalFlags struct {
	line    string
	rate    int
	driver  string
	verbose bool
}

func (f *globalFlags) bind(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.line, "line", "l", "", "Line to open (e.g. /dev/ttyUSB0, COM3)")
	pf.IntVarP(&f.rate, "rate", "r", 0, "Baud rate")
	pf.StringVar(&f.driver, "driver", "", "Line driver: serial or pty")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
}

func (f globalFlags) overrides() config.Overrides {
	return config.Overrides{
		Line:    f.line,
		Rate:    f.rate,
		Driver:  f.driver,
		Verbose: f.verbose,
	}
}

// loadSettings merges every configuration layer for the current directory
// and applies the resulting log level.
func loadSettings(f globalFlags) (*config.Settings, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %w", err)
	}
	s, err := config.LoadAll(cwd, f.overrides())
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	log.SetLevel(log.ParseLevel(s.Log.Level))
	return s, cwd, nil
}
