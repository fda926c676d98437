// Package cdb reads and writes cdb ("constant database") files: immutable,
// on-disk associative stores optimized for very fast lookup with a small,
// fixed-size index. The format supports multiple values per key and is
// produced in a single write pass (Builder) then consumed by many readers
// (DB).
//
// See the original cdb specification and C implementation by D. J. Bernstein
// at http://cr.yp.to/cdb.html.
package cdb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/exp/mmap"
)

const (
	headerSize = 2048
	numTables  = 256
	slotSize   = 8
	recordHdr  = 8
	matchChunk = 32 // spec-mandated chunk size for the streaming key compare
)

// DB is a handle on a published cdb file. It is single-threaded: a DB
// owns mutable probe and iterator state (see Iterator) and must not be
// shared across goroutines without external synchronization.
type DB struct {
	r      io.ReaderAt
	closer io.Closer
	size   int64

	// Iterator cache, shared between Get and the Iterator returned by
	// Iterator(); Exists and MultiGet always probe the index. end == 0 iff no iteration is in progress. See
	// iterator.go for the full state machine this drives.
	end          uint32
	curPos       uint32
	curKey       []byte
	fetchAdvance bool
	dpos, dlen   uint32
}

// New wraps an already-opened random-access byte source of the given size
// as a DB. The caller remains responsible for closing r if it implements
// io.Closer; New never does so itself.
func New(r io.ReaderAt, size int64) *DB {
	return &DB{r: r, size: size}
}

// Open opens the named file read-only and returns a DB backed by ordinary
// file reads.
//
// The source's sentinel-return-on-failure behavior (see DESIGN.md) is
// replaced here with an ordinary Go error return.
func Open(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() < headerSize {
		f.Close()
		return nil, fmt.Errorf("cdb: %s: file smaller than header: %w", path, ErrMalformedFile)
	}
	db := New(f, info.Size())
	db.closer = f
	return db, nil
}

// OpenMmap opens the named file read-only and memory-maps it, returning a
// DB backed by the mapping. The mapping is shared and read-only, so
// multiple readers opened this way over the same file are independent and
// safe to use concurrently from separate goroutines (each DB still owns
// its own mutable probe/iterator state).
func OpenMmap(path string) (*DB, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	if r.Len() < headerSize {
		r.Close()
		return nil, fmt.Errorf("cdb: %s: file smaller than header: %w", path, ErrMalformedFile)
	}
	db := New(r, int64(r.Len()))
	db.closer = r
	return db, nil
}

// Close ends any in-progress iteration and releases the underlying file
// handle or mapping, if DB owns one.
func (db *DB) Close() error {
	db.iterEnd()
	if db.closer != nil {
		c := db.closer
		db.closer = nil
		return c.Close()
	}
	return nil
}

// readAt is the sole I/O primitive the rest of the package uses. It
// bounds-checks pos+len against the file size known at open time — which
// holds for both a mapped region and a plain file, since both report
// their size up front — before ever calling into r.ReadAt, and retries
// transparently on an interrupted read.
func (db *DB) readAt(buf []byte, pos uint32) error {
	if uint64(pos)+uint64(len(buf)) > uint64(db.size) {
		return fmt.Errorf("cdb: read of %d bytes at %d exceeds file size %d: %w", len(buf), pos, db.size, ErrMalformedFile)
	}
	for {
		n, err := db.r.ReadAt(buf, int64(pos))
		if err == nil {
			return nil
		}
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		if err == io.EOF {
			if n == len(buf) {
				return nil
			}
			if n == 0 {
				return fmt.Errorf("cdb: unexpected eof at %d: %w", pos, ErrMalformedFile)
			}
			return fmt.Errorf("cdb: short read at %d: %w", pos, ErrUnexpectedEOF)
		}
		return fmt.Errorf("cdb: read at %d: %w", pos, err)
	}
}

// probe carries the open-addressing cursor for a single find/findNext
// sequence: the table's base and slot count, the target hash, and how far
// linear probing has advanced. It is local to a single Get/Exists/MultiGet
// call and never persisted on DB, unlike the iterator cache above.
type probe struct {
	hpos, hslots uint32
	khash        uint32
	kpos         uint32
	loop         uint32
}

// findStart computes the primary bucket for key and loads its table
// descriptor from the header. ok is false when the bucket's table is
// empty (no error — there is simply nothing to find).
func (db *DB) findStart(key []byte) (p probe, ok bool, err error) {
	h := hash(key)
	var buf [slotSize]byte
	if err := db.readAt(buf[:], (h&0xff)*slotSize); err != nil {
		return probe{}, false, err
	}
	hpos := unpackUint32(buf[0:4])
	hslots := unpackUint32(buf[4:8])
	if hslots == 0 {
		return probe{}, false, nil
	}
	if uint64(hpos)+uint64(hslots)*slotSize > uint64(db.size) {
		return probe{}, false, fmt.Errorf("cdb: hash table for bucket %d out of bounds: %w", h&0xff, ErrMalformedFile)
	}
	p.hpos = hpos
	p.hslots = hslots
	p.khash = h
	p.kpos = hpos + (h>>8)%hslots*slotSize
	return p, true, nil
}

// findNext advances p by one probe cycle at a time until it finds a
// record whose key equals key, runs out of slots, or hits an empty slot.
// Calling it repeatedly without resetting p.loop yields successive
// matches for duplicate keys in ascending insertion order (multi-get).
func (db *DB) findNext(p *probe, key []byte) (dpos, dlen uint32, found bool, err error) {
	for p.loop < p.hslots {
		var buf [slotSize]byte
		if err := db.readAt(buf[:], p.kpos); err != nil {
			return 0, 0, false, err
		}
		storedHash := unpackUint32(buf[0:4])
		recPos := unpackUint32(buf[4:8])
		if recPos == 0 {
			return 0, 0, false, nil
		}
		p.loop++
		p.kpos += slotSize
		if p.kpos == p.hpos+p.hslots*slotSize {
			p.kpos = p.hpos
		}
		if storedHash != p.khash {
			continue
		}
		var rh [recordHdr]byte
		if err := db.readAt(rh[:], recPos); err != nil {
			return 0, 0, false, err
		}
		klen := unpackUint32(rh[0:4])
		dl := unpackUint32(rh[4:8])
		if klen != uint32(len(key)) {
			continue
		}
		ok, err := db.matchKey(key, recPos+recordHdr)
		if err != nil {
			return 0, 0, false, err
		}
		if !ok {
			continue
		}
		return recPos + recordHdr + klen, dl, true, nil
	}
	return 0, 0, false, nil
}

// matchKey streams the key bytes stored at pos and compares them against
// key in fixed-size chunks, so a compare never has to materialize an
// entire (possibly large) candidate key.
func (db *DB) matchKey(key []byte, pos uint32) (bool, error) {
	var buf [matchChunk]byte
	for n := 0; n < len(key); n += matchChunk {
		chunk := buf[:]
		if rem := len(key) - n; rem < matchChunk {
			chunk = buf[:rem]
		}
		if err := db.readAt(chunk, pos+uint32(n)); err != nil {
			return false, err
		}
		if !bytes.Equal(chunk, key[n:n+len(chunk)]) {
			return false, nil
		}
	}
	return true, nil
}

// Get returns the first value stored for key, or ErrNotFound if key is
// absent. If key equals the key the active Iterator last yielded, Get
// answers from the iterator's cursor instead of re-probing the index (see
// iterator.go); any other key falls through to a normal probe and leaves
// iterator state untouched.
func (db *DB) Get(key []byte) ([]byte, error) {
	if db.end != 0 && bytes.Equal(key, db.curKey) {
		return db.fetchFromCursor()
	}
	p, ok, err := db.findStart(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	dpos, dlen, found, err := db.findNext(&p, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	val := make([]byte, dlen)
	if err := db.readAt(val, dpos); err != nil {
		return nil, err
	}
	return val, nil
}

// Exists reports whether key has at least one value.
func (db *DB) Exists(key []byte) (bool, error) {
	p, ok, err := db.findStart(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	_, _, found, err := db.findNext(&p, key)
	if err != nil {
		return false, err
	}
	return found, nil
}

// Stat summarizes a database's 256-bucket header without touching any
// record data: how many buckets are populated, the total slot count
// across all tables, and the load factor (entries per slot) of the
// fullest bucket. It is cheap — one 2048-byte read — and exists for
// cmd/cdbutil's "stat" subcommand.
type Stat struct {
	Buckets      int
	TotalSlots   uint32
	TotalEntries uint32
	FullestLoad  float64
}

// Stat reads db's header and returns the summary described by Stat.
func (db *DB) Stat() (Stat, error) {
	var header [headerSize]byte
	if err := db.readAt(header[:], 0); err != nil {
		return Stat{}, err
	}
	var s Stat
	for i := 0; i < numTables; i++ {
		slots := unpackUint32(header[i*8+4 : i*8+8])
		if slots == 0 {
			continue
		}
		s.Buckets++
		s.TotalSlots += slots
		entries := slots / 2
		s.TotalEntries += entries
		if load := float64(entries) / float64(slots); load > s.FullestLoad {
			s.FullestLoad = load
		}
	}
	return s, nil
}

// MultiGet returns every value stored for key, in ascending insertion
// order. It returns a nil slice (not an error) when key is absent.
func (db *DB) MultiGet(key []byte) ([][]byte, error) {
	p, ok, err := db.findStart(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var out [][]byte
	for {
		dpos, dlen, found, err := db.findNext(&p, key)
		if err != nil {
			return nil, err
		}
		if !found {
			return out, nil
		}
		val := make([]byte, dlen)
		if err := db.readAt(val, dpos); err != nil {
			return nil, err
		}
		out = append(out, val)
	}
}
