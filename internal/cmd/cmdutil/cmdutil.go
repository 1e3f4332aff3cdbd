// Package cmdutil holds helpers shared by curator subcommands.
package cmdutil

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/pkg/errors"
)

// Printer renders a command's report to stdout and status alerts to stderr.
type Printer struct {
	Out    io.Writer
	Format output.Format
	alerts *alerts.Writer
}

// NewPrinter creates a printer for cmd. An empty format is auto-detected.
func NewPrinter(cmd *cobra.Command, format string) *Printer {
	return &Printer{
		Out:    cmd.OutOrStdout(),
		Format: output.DetectFormat(format),
		alerts: alerts.NewWriter(cmd.ErrOrStderr(), flagBool(cmd, "no-color")).Quiet(flagBool(cmd, "quiet")),
	}
}

// Print renders data in the printer's format.
func (p *Printer) Print(data any) error {
	return output.Write(p.Out, p.Format, data)
}

// Alert writes a status line.
func (p *Printer) Alert(a *alerts.Alert) {
	_ = p.alerts.Write(a)
}

// ReadFile reads an input file, wrapping failures as IOError.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// flagBool returns a boolean flag, false when the command does not have it.
func flagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	return err == nil && v
}
