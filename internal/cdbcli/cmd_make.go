package cdbcli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/torbit/cdb"
	flag "github.com/spf13/pflag"
)

// MakeCmd builds a cdb file from cdbmake-format records read on stdin.
func MakeCmd() *Command {
	fs := flag.NewFlagSet("make", flag.ContinueOnError)
	out := fs.StringP("output", "o", "", "output cdb file (required)")

	return &Command{
		Flags: fs,
		Usage: "make -o <out.cdb>",
		Short: "build a cdb file from cdbmake-format records read on stdin",
		Exec: func(o *IO, args []string) error {
			if *out == "" {
				return fmt.Errorf("cdbutil make: -o is required")
			}

			temp := *out + ".tmp"
			b, err := cdb.NewBuilder(*out, temp)
			if err != nil {
				return err
			}

			start := time.Now()
			if err := cdb.WriteRecords(b, os.Stdin); err != nil {
				return err
			}
			if err := b.Finish(); err != nil {
				return err
			}

			slog.Info("cdb built", "path", *out, "elapsed", time.Since(start))
			return nil
		},
	}
}
