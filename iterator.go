package cdb

import (
	"bytes"
	"fmt"
	"math"
)

// Iterator walks every record in a DB in insertion order. Only one
// Iterator may be active on a DB at a time; starting a new one while
// another is mid-walk resets the shared cursor out from under it. This
// follows the single-threaded-per-handle model documented on DB: the cursor
// lives on DB itself so that Get can answer from it (see the coupling
// rule on DB.Get), not on a private struct the caller can discard.
type Iterator struct {
	db *DB
}

// Iterator returns a walker over db's records, positioned before the
// first one. Call First to begin.
func (db *DB) Iterator() *Iterator {
	return &Iterator{db: db}
}

// iterRestart (re)reads the boundary between the record region and the
// hash tables and resets the cursor to the first record.
func (db *DB) iterRestart() error {
	var buf [4]byte
	if err := db.readAt(buf[:], 0); err != nil {
		return err
	}
	db.end = unpackUint32(buf[:])
	if db.end < headerSize || uint64(db.end) > uint64(db.size) {
		return fmt.Errorf("cdb: record region end %d out of bounds: %w", db.end, ErrMalformedFile)
	}
	db.curPos = headerSize
	db.fetchAdvance = false
	return nil
}

// iterEnd tears down iteration state, returning to Idle.
func (db *DB) iterEnd() {
	db.end = 0
	db.curKey = db.curKey[:0]
	db.fetchAdvance = false
}

// iterPrimeKey loads the key (and caches the value location) of the
// record at db.curPos into db.curKey/db.dpos/db.dlen. Caller must ensure
// db.curPos < db.end.
func (db *DB) iterPrimeKey() error {
	var rh [recordHdr]byte
	if err := db.readAt(rh[:], db.curPos); err != nil {
		return err
	}
	klen := unpackUint32(rh[0:4])
	dlen := unpackUint32(rh[4:8])
	keyEnd := uint64(db.curPos) + recordHdr + uint64(klen)
	if keyEnd > uint64(db.end) || keyEnd+uint64(dlen) > uint64(db.size) {
		return fmt.Errorf("cdb: record at %d extends past %d: %w", db.curPos, db.end, ErrMalformedFile)
	}
	if cap(db.curKey) < int(klen) {
		db.curKey = make([]byte, klen)
	} else {
		db.curKey = db.curKey[:klen]
	}
	if err := db.readAt(db.curKey, db.curPos+recordHdr); err != nil {
		return err
	}
	db.dpos = db.curPos + recordHdr + klen
	db.dlen = dlen
	return nil
}

// iterAdvanceRaw moves curPos past the record currently at curPos.
func (db *DB) iterAdvanceRaw() error {
	var rh [recordHdr]byte
	if err := db.readAt(rh[:], db.curPos); err != nil {
		return err
	}
	klen := unpackUint32(rh[0:4])
	dlen := unpackUint32(rh[4:8])
	next := uint64(db.curPos) + recordHdr + uint64(klen) + uint64(dlen)
	if next > math.MaxUint32 {
		return ErrOverflow
	}
	db.curPos = uint32(next)
	return nil
}

// First moves to the first record, entering the Walking state. ok is
// false immediately (Idle) when the database holds no records.
func (it *Iterator) First() (key []byte, ok bool, err error) {
	db := it.db
	if err := db.iterRestart(); err != nil {
		return nil, false, err
	}
	if db.curPos >= db.end {
		db.iterEnd()
		return nil, false, nil
	}
	if err := db.iterPrimeKey(); err != nil {
		return nil, false, err
	}
	return db.curKey, true, nil
}

// Next advances to the record following prevKey, which must be the key
// most recently returned by First or Next on this Iterator — calling it
// with anything else, or after iteration has ended, is a programmer
// error. On exhaustion it returns ok == false; the cursor is then rewound
// and primed for a subsequent drain-by-fetch pass (see DB.Get), so a
// caller who instead calls Get repeatedly from here gets every value in
// order without re-probing the index.
func (it *Iterator) Next(prevKey []byte) (key []byte, ok bool, err error) {
	db := it.db
	if db.end == 0 || !bytes.Equal(prevKey, db.curKey) {
		panic("cdb: Iterator.Next called out of sequence")
	}
	if err := db.iterAdvanceRaw(); err != nil {
		return nil, false, err
	}
	if db.curPos < db.end {
		if err := db.iterPrimeKey(); err != nil {
			return nil, false, err
		}
		return db.curKey, true, nil
	}
	// Keys exhausted: rewind for the drain-by-fetch pass (Draining).
	if err := db.iterRestart(); err != nil {
		return nil, false, err
	}
	db.fetchAdvance = true
	if db.curPos < db.end {
		if err := db.iterPrimeKey(); err != nil {
			return nil, false, err
		}
	} else {
		db.iterEnd()
	}
	return nil, false, nil
}

// fetchFromCursor answers Get for the key currently cached by the
// iterator. In the interleaved (Walking) pattern it leaves the cursor
// untouched; in the drain (Draining) pattern it also advances to the next
// record, ending iteration once the last cached key has been fetched.
func (db *DB) fetchFromCursor() ([]byte, error) {
	val := make([]byte, db.dlen)
	if err := db.readAt(val, db.dpos); err != nil {
		return nil, err
	}
	if !db.fetchAdvance {
		return val, nil
	}
	if err := db.iterAdvanceRaw(); err != nil {
		return nil, err
	}
	if db.curPos < db.end {
		if err := db.iterPrimeKey(); err != nil {
			return nil, err
		}
	} else {
		db.iterEnd()
	}
	return val, nil
}

// ForEach walks every record in insertion order, calling fn with each
// key/value pair. It uses the interleaved first/fetch/next pattern
// internally, so it never re-probes the index even though it calls Get.
// Returning an error from fn stops the walk and ends iteration early.
func (db *DB) ForEach(fn func(key, value []byte) error) error {
	it := db.Iterator()
	key, ok, err := it.First()
	if err != nil {
		return err
	}
	for ok {
		val, err := db.Get(key)
		if err != nil {
			db.iterEnd()
			return err
		}
		if err := fn(key, val); err != nil {
			db.iterEnd()
			return err
		}
		key, ok, err = it.Next(key)
		if err != nil {
			return err
		}
	}
	return nil
}
