package cdb

import (
	"errors"
	"io"
)

// Sentinel errors returned by the core reader and builder. Callers should
// compare against these with errors.Is rather than inspecting wrapped text.
var (
	// ErrNotFound means the key has no value in the database. Get returns
	// it as its error value for an absent key; it marks an ordinary
	// outcome rather than a failure, so callers that want "absent" should
	// check for it explicitly.
	ErrNotFound = errors.New("cdb: key not found")

	// ErrMalformedFile means the header or a record reference points
	// outside the bounds of the file, or a probed chain reached an
	// impossibly large slot count. Surfaced on the first offending read.
	ErrMalformedFile = errors.New("cdb: malformed file")

	// ErrOverflow means a 32-bit offset or size computation would wrap;
	// the builder refuses to produce a file that violates the format's
	// 32-bit addressing limit.
	ErrOverflow = errors.New("cdb: offset or size overflow")

	// ErrWriteFailed means a write to the temp file returned fewer bytes
	// than requested.
	ErrWriteFailed = errors.New("cdb: short write")
)

// ErrUnexpectedEOF is returned when a read comes up short of bytes that
// the format guarantees should be present. It is io.ErrUnexpectedEOF so
// that callers already checking for that stdlib sentinel keep working.
var ErrUnexpectedEOF = io.ErrUnexpectedEOF
