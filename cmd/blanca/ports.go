// ABOUTME: The ports subcommand: lists serial devices as a table or as JSON
// ABOUTME: JSON output is built with easyjson's jwriter, one array of port objects

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mailru/easyjson/jwriter"
	"github.com/spf13/cobra"

	"github.com/mauromedda/blanca-go/internal/line"
)

func portsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := line.ListPorts()
			if err != nil {
				return err
			}
			if asJSON {
				return writePortsJSON(cmd.OutOrStdout(), ports)
			}
			return writePortsTable(cmd.OutOrStdout(), ports)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print ports as JSON")
	return cmd
}

func writePortsJSON(w io.Writer, ports []line.PortInfo) error {
	var jw jwriter.Writer
	jw.RawByte('[')
	for i, p := range ports {
		if i > 0 {
			jw.RawByte(',')
		}
		jw.RawString(`{"name":`)
		jw.String(p.Name)
		jw.RawString(`,"usb":`)
		jw.Bool(p.USB)
		if p.USB {
			jw.RawString(`,"vid":`)
			jw.String(p.VID)
			jw.RawString(`,"pid":`)
			jw.String(p.PID)
			jw.RawString(`,"serial":`)
			jw.String(p.Serial)
			jw.RawString(`,"product":`)
			jw.String(p.Product)
		}
		jw.RawByte('}')
	}
	jw.RawString("]\n")
	_, err := jw.DumpTo(w)
	return err
}

func writePortsTable(w io.Writer, ports []line.PortInfo) error {
	if len(ports) == 0 {
		_, err := fmt.Fprintln(w, "No serial ports found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVID:PID\tPRODUCT")
	for _, p := range ports {
		id := "-"
		if p.USB {
			id = p.VID + ":" + p.PID
		}
		product := p.Product
		if product == "" {
			product = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, id, product)
	}
	return tw.Flush()
}
