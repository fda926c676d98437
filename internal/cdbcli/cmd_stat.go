package cdbcli

import (
	"fmt"

	"github.com/torbit/cdb"
	flag "github.com/spf13/pflag"
)

// StatCmd prints a header-only summary of a cdb file: how many of the
// 256 buckets are populated, total slot count, and the fullest bucket's
// load factor. It never touches the record region.
func StatCmd() *Command {
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "stat <file.cdb>",
		Short: "print a header summary: bucket count, slot totals, load factor",
		Exec: func(o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("cdbutil stat: expected exactly one file argument")
			}

			db, err := cdb.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			s, err := db.Stat()
			if err != nil {
				return err
			}

			o.Printf("populated buckets: %d/256\n", s.Buckets)
			o.Printf("total slots:       %d\n", s.TotalSlots)
			o.Printf("total entries:     %d\n", s.TotalEntries)
			o.Printf("fullest load:      %.2f\n", s.FullestLoad)
			return nil
		},
	}
}
