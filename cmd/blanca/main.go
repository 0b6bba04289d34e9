// ABOUTME: CLI entry point for blanca, an interactive serial-line terminal
// ABOUTME: Builds the cobra command tree; the root command runs the TUI

package main

import (
	"fmt"
	"os"

	// termfix must be imported before any package that imports bubbletea so
	// its init() settles the background color before bubbletea's init() runs.
	_ "github.com/mauromedda/blanca-go/internal/termfix"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f globalFlags
	root := &cobra.Command{
		Use:   "blanca",
		Short: "Interactive serial-line terminal",
		Long: "Opens a serial line, shows what arrives with optional timestamps, " +
			"and sends what you type. Ctrl+P picks a port, F1 lists every key.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(f)
		},
	}
	f.bind(root)

	root.AddCommand(
		monitorCmd(&f),
		portsCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return nil
		},
	}
}

func versionString() string {
	return fmt.Sprintf("blanca %s (%s) built %s", version, commit, date)
}
