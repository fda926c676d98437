// Package cdbcli implements the command dispatch and per-command logic
// behind cmd/cdbutil, grounded on the Command/IO split used by the tk
// CLI (see DESIGN.md).
package cdbcli

import (
	"fmt"
	"io"
)

// IO bundles a command's standard output and error streams.
type IO struct {
	Out    io.Writer
	ErrOut io.Writer
}

// NewIO wraps out/errOut for use by a Command.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{Out: out, ErrOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.Out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.Out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.ErrOut, a...)
}
