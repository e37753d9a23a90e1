package ddmhash

import "encoding/binary"

// Byte utilities for the node representation. Every multi-byte integer
// in cache/DAG node words is logically little-endian; these helpers
// make that explicit at each read/write site instead of relying on
// the host's native order, so the algorithm stays portable to a
// big-endian host even though on a little-endian host (the only kind
// this package has been exercised on) they compile down to identity.

// word32 reads the w'th little-endian 32-bit word out of a 64-byte node.
func word32(node []byte, w int) uint32 {
	return binary.LittleEndian.Uint32(node[w*4:])
}

// putWord32 writes the w'th little-endian 32-bit word into a 64-byte node.
func putWord32(node []byte, w int, v uint32) {
	binary.LittleEndian.PutUint32(node[w*4:], v)
}

// swap64 reverses the byte order of a 64-bit word. Used to turn the
// first 8 bytes of an epoch seed into the big-endian-looking hex
// fragment the DAG filename embeds (see dag.go).
func swap64(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return binary.BigEndian.Uint64(b[:])
}
