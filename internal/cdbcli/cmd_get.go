package cdbcli

import (
	"fmt"

	"github.com/torbit/cdb"
	flag "github.com/spf13/pflag"
)

// GetCmd looks up a key and prints its value, or every value with -a.
func GetCmd() *Command {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	all := fs.BoolP("all", "a", false, "print every value for key, not just the first")

	return &Command{
		Flags: fs,
		Usage: "get [-a] <file.cdb> <key>",
		Short: "look up a key and print its value(s)",
		Exec: func(o *IO, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("cdbutil get: expected <file> <key>")
			}

			db, err := cdb.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			key := []byte(args[1])

			if *all {
				vals, err := db.MultiGet(key)
				if err != nil {
					return err
				}
				if vals == nil {
					return cdb.ErrNotFound
				}
				for _, v := range vals {
					o.Printf("%s\n", v)
				}
				return nil
			}

			val, err := db.Get(key)
			if err != nil {
				return err
			}
			o.Printf("%s\n", val)
			return nil
		},
	}
}
