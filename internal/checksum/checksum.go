// Package checksum computes the CRC-32 integrity checksums carried by
// package directory records. The polynomial is the reflected zlib one
// (0xEDB88320), so sums are interchangeable with zlib's crc32().
package checksum

import (
	"crypto/subtle"
	"hash/crc32"
)

// Sum returns the CRC-32 of data.
func Sum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Equal reports whether two checksums match. The comparison is constant
// time so verification does not leak mismatch positions through timing.
func Equal(a, b uint32) bool {
	return subtle.ConstantTimeEq(int32(a), int32(b)) == 1
}
