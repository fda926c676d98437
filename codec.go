package cdb

import "encoding/binary"

// packUint32 stores x as 4 little-endian bytes at the front of buf.
func packUint32(buf []byte, x uint32) {
	binary.LittleEndian.PutUint32(buf, x)
}

// unpackUint32 reads 4 little-endian bytes from the front of buf.
func unpackUint32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// hash computes the DJB-variant hash used to place keys into the
// 256 primary buckets and, within a bucket, into a hash table slot.
func hash(key []byte) uint32 {
	h := uint32(5381)
	for _, b := range key {
		h = (h + (h << 5)) ^ uint32(b)
	}
	return h
}
