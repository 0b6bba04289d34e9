// ABOUTME: The monitor subcommand: headless streaming of one line to stdout
// ABOUTME: Flags pick the output format and an optional save-on-exit path

package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mauromedda/blanca-go/internal/line"
	"github.com/mauromedda/blanca-go/internal/mode/monitor"
)

func monitorCmd(f *globalFlags) *cobra.Command {
	var (
		format string
		save   string
		text   bool
		bytes  bool
		dump   bool
	)
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream a line to stdout and send stdin lines to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings(*f)
			if err != nil {
				return err
			}
			if settings.Line.Name == "" {
				return errors.New("no line given: use --line or set line.name")
			}
			driver, err := line.Resolve(settings.Line.Driver, settings.Line.ReadTimeout)
			if err != nil {
				return err
			}
			return monitor.Run(cmd.Context(), monitor.Config{
				Line:     settings.Line.Name,
				Rate:     settings.Line.Rate,
				Format:   format,
				SavePath: save,
				AsBytes:  saveAsBytes(settings.Save.AsBytes, text, bytes),
				Dump:     dump || settings.Save.Dump,
			}, monitor.Deps{
				Driver:   driver,
				Settings: *settings,
				Stdin:    os.Stdin,
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", monitor.FormatText, "Output format: text or jsonl")
	cmd.Flags().StringVarP(&save, "save", "s", "", "Save the read buffer to this path on exit")
	cmd.Flags().BoolVar(&text, "text", false, "Save the buffer as decoded text")
	cmd.Flags().BoolVar(&bytes, "bytes", false, "Save the buffer as raw bytes")
	cmd.MarkFlagsMutuallyExclusive("text", "bytes")
	cmd.Flags().BoolVar(&dump, "dump", false, "Save the buffer as a hex dump")
	return cmd
}

// saveAsBytes resolves the save mode: an explicit flag wins over save.as_bytes.
func saveAsBytes(configured, text, bytes bool) bool {
	switch {
	case text:
		return false
	case bytes:
		return true
	default:
		return configured
	}
}
