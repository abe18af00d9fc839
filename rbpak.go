// Package rbpak implements the RBPak archive container: many named byte
// blobs bundled into a single file with per-entry DEFLATE compression,
// optional XOR keystream obfuscation, CRC-32 integrity verification,
// optional filename obfuscation, and lazy loading through a byte-bounded
// LRU cache.
//
// Packages are built in memory with Add and written whole by Save. Load
// registers entry metadata only; payload bytes are read, decoded, and
// verified on first Get. Failures carry a Kind from a closed taxonomy; see
// the Error type.
package rbpak

import "github.com/Retroboi64/RBPak/internal/codec"

// Container format constants. All multi-byte fields are little-endian.
const (
	// Signature is the first four bytes of every package file ("RbPk").
	Signature uint32 = 0x6B506252

	// FormatVersion is the packed major.minor.patch format version (2.0.0).
	FormatVersion uint32 = 0x00020000

	// HeaderSize is the fixed size of the file header in bytes.
	HeaderSize = 20

	// MaxNameLen bounds a stored entry name.
	MaxNameLen = 8192

	// MaxEntrySize bounds a declared uncompressed entry size (1 GiB).
	MaxEntrySize = codec.MaxDecodedSize
)

// headerDirOffsetPos is the byte position of the directory offset field,
// backpatched after the payload region and directory are written.
const headerDirOffsetPos = 16

// Header flag bits. They record the configuration a package was saved
// with; when decoding an entry, the per-entry encrypted flag is
// authoritative and the header bits are only a summary.
const (
	FlagCompressed uint32 = 1 << iota
	FlagEncrypted
	FlagObfuscatedNames
	FlagChecksumVerified
)

// entryFlagEncrypted marks an encrypted payload in a directory record.
const entryFlagEncrypted uint8 = 1 << 0

// entry is the in-memory descriptor for one named blob.
type entry struct {
	name             string
	storedName       string
	offset           uint32
	compressedSize   uint32
	uncompressedSize uint32
	crc32            uint32
	encrypted        bool
	data             []byte
	loaded           bool
}

func (e *entry) info() EntryInfo {
	return EntryInfo{
		Name:             e.name,
		StoredName:       e.storedName,
		Offset:           e.offset,
		CompressedSize:   e.compressedSize,
		UncompressedSize: e.uncompressedSize,
		CRC32:            e.crc32,
		Encrypted:        e.encrypted,
		Loaded:           e.loaded,
	}
}

// EntryInfo is a read-only view of an entry's metadata.
type EntryInfo struct {
	// Name is the logical name callers use; it may contain '/'.
	Name string

	// StoredName is the name written to the directory: equal to Name, or
	// the obfuscated "rbp_<hash>.dat" form.
	StoredName string

	// Offset is the absolute byte offset of the payload in the container.
	Offset uint32

	// CompressedSize is the payload length as written.
	CompressedSize uint32

	// UncompressedSize is the plaintext length.
	UncompressedSize uint32

	// CRC32 is the checksum of the plaintext, computed before any transform.
	CRC32 uint32

	// Encrypted reports whether the payload went through the cipher.
	Encrypted bool

	// Loaded reports whether the plaintext is materialized in memory.
	Loaded bool
}

// ProgressFunc receives one call per item, before the item is processed.
// Callbacks run synchronously on the calling goroutine and must not
// re-enter the package they were invoked from.
type ProgressFunc func(index, total int, name string)

// FileMapping pairs a logical entry name with the filesystem path backing it.
type FileMapping struct {
	Name string
	Path string
}
