package cdb

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteRecords reads the cdbmake text format from r — one record per
// line as "+klen,dlen:key->data\n", terminated by a blank line — and
// Inserts each record into b. This is the format cmd/cdbutil's "make"
// subcommand accepts on stdin, and the one the original C cdb tooling
// uses for its own cdbmake utility.
func WriteRecords(b *Builder, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("cdb: reading record line: %w", err)
		}
		if line == "" || line == "\n" {
			return nil
		}
		var klen, dlen int
		if _, scanErr := fmt.Sscanf(line, "+%d,%d:", &klen, &dlen); scanErr != nil {
			return fmt.Errorf("cdb: malformed record header %q: %w", line, scanErr)
		}
		sep := strings.IndexByte(line, ':')
		if sep < 0 || len(line) < sep+1+klen+2+dlen {
			return fmt.Errorf("cdb: truncated record line %q", line)
		}
		key := []byte(line[sep+1 : sep+1+klen])
		arrow := sep + 1 + klen
		if line[arrow:arrow+2] != "->" {
			return fmt.Errorf("cdb: malformed record separator in %q", line)
		}
		data := []byte(line[arrow+2 : arrow+2+dlen])
		if err := b.Insert(key, data); err != nil {
			return err
		}
		if err == io.EOF {
			return nil
		}
	}
}

// DumpRecords writes every record of db to w in the same cdbmake text
// format WriteRecords reads, terminated by a blank line.
func DumpRecords(w io.Writer, db *DB) error {
	bw := bufio.NewWriter(w)
	err := db.ForEach(func(key, value []byte) error {
		_, err := fmt.Fprintf(bw, "+%d,%d:%s->%s\n", len(key), len(value), key, value)
		return err
	})
	if err != nil {
		return err
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	return bw.Flush()
}
