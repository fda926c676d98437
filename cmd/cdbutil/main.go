// Command cdbutil builds and inspects cdb constant databases.
package main

import (
	"os"

	"github.com/torbit/cdb/internal/cdbcli"
)

func main() {
	os.Exit(cdbcli.Run(os.Stdout, os.Stderr, os.Args))
}
