package cdbcli

import (
	"fmt"

	"github.com/torbit/cdb"
	flag "github.com/spf13/pflag"
)

// DumpCmd writes every record in a cdb file to stdout in cdbmake format.
func DumpCmd() *Command {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "dump <file.cdb>",
		Short: "write every record in file to stdout in cdbmake format",
		Exec: func(o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("cdbutil dump: expected exactly one file argument")
			}

			db, err := cdb.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			return cdb.DumpRecords(o.Out, db)
		},
	}
}
