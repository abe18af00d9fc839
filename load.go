package rbpak

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Retroboi64/RBPak/internal/crypt"
	"github.com/Retroboi64/RBPak/internal/wire"
)

type fileHeader struct {
	version         uint32
	entryCount      uint32
	flags           uint32
	directoryOffset uint32
}

// Load replaces the package contents with the entries described by the
// file at path. Only metadata is read; payload bytes are decoded on first
// Get (or immediately, when lazy loading is off).
//
// The header's encryption, obfuscation, and verification flags are adopted
// into the live configuration: they describe the file, not the caller. The
// opened reader stays owned by the package until the next Clear or Load.
func (p *Package) Load(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clearLocked()
	p.cache.Clear()

	f, err := os.Open(path)
	if err != nil {
		return pathError("open "+path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return wrapError(KindIOError, "stat "+path, err)
	}
	fileSize := info.Size()

	hdr, err := readHeader(f, fileSize)
	if err != nil {
		f.Close()
		return err
	}

	dirOffset := int64(hdr.directoryOffset)
	if dirOffset < HeaderSize || dirOffset > fileSize {
		f.Close()
		return newError(KindCorruptedData, fmt.Sprintf("directory offset %d out of bounds", dirOffset))
	}

	r := wire.NewReader(bufio.NewReader(io.NewSectionReader(f, dirOffset, fileSize-dirOffset)))
	entries := make(map[string]*entry, hdr.entryCount)
	for i := uint32(0); i < hdr.entryCount; i++ {
		e, err := readDirectoryRecord(r, dirOffset)
		if err != nil {
			f.Close()
			return err
		}
		entries[e.name] = e
	}

	p.entries = entries
	p.file = f
	p.path = path
	if err := p.adoptHeaderFlagsLocked(hdr.flags); err != nil {
		return err
	}
	p.log().Info("package loaded", "path", path, "entry_count", len(entries),
		"directory_offset", dirOffset, "lazy", p.cfg.LazyLoad)

	if !p.cfg.LazyLoad {
		for _, name := range p.sortedNamesLocked() {
			if err := p.loadEntryLocked(p.entries[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

// adoptHeaderFlagsLocked overwrites the configuration bits that describe
// the file rather than the caller. The cipher is derived on demand when the
// file turns out to be encrypted and the caller supplied a key.
func (p *Package) adoptHeaderFlagsLocked(flags uint32) error {
	if flags&FlagEncrypted != 0 {
		p.cfg.Encryption = EncryptionXOR
	} else {
		p.cfg.Encryption = EncryptionNone
	}
	p.cfg.ObfuscateFilenames = flags&FlagObfuscatedNames != 0
	p.cfg.VerifyChecksums = flags&FlagChecksumVerified != 0

	if p.cfg.Encryption == EncryptionXOR && p.cipher == nil && p.cfg.EncryptionKey != "" {
		c, err := crypt.New(p.cfg.EncryptionKey)
		if err != nil {
			return wrapError(KindInvalidParameter, "derive cipher key", err)
		}
		p.cipher = c
	}
	return nil
}

func readHeader(f io.ReaderAt, fileSize int64) (fileHeader, error) {
	r := wire.NewReader(io.NewSectionReader(f, 0, HeaderSize))

	sig, err := r.U32()
	if err != nil {
		return fileHeader{}, wrapError(KindInvalidSignature, "truncated header", err)
	}
	if sig != Signature {
		return fileHeader{}, newError(KindInvalidSignature, fmt.Sprintf("signature %#08x", sig))
	}
	if fileSize < HeaderSize {
		return fileHeader{}, newError(KindCorruptedData, "file shorter than header")
	}

	var hdr fileHeader
	for _, field := range []*uint32{&hdr.version, &hdr.entryCount, &hdr.flags, &hdr.directoryOffset} {
		v, err := r.U32()
		if err != nil {
			return fileHeader{}, wrapError(KindCorruptedData, "truncated header", err)
		}
		*field = v
	}
	if hdr.version>>16 != FormatVersion>>16 {
		return fileHeader{}, newError(KindCorruptedData, fmt.Sprintf("unsupported format version %#08x", hdr.version))
	}
	return hdr, nil
}

func readDirectoryRecord(r *wire.Reader, dirOffset int64) (*entry, error) {
	name, err := r.String()
	if err != nil {
		if errors.Is(err, wire.ErrStringTooLong) {
			return nil, wrapError(KindCorruptedData, "entry name exceeds 8192 bytes", err)
		}
		return nil, wrapError(KindCorruptedData, "truncated directory", err)
	}
	if name == "" {
		return nil, newError(KindCorruptedData, "empty entry name in directory")
	}

	var fields [4]uint32
	for i := range fields {
		v, err := r.U32()
		if err != nil {
			return nil, wrapError(KindCorruptedData, "truncated directory record for "+name, err)
		}
		fields[i] = v
	}
	flags, err := r.U8()
	if err != nil {
		return nil, wrapError(KindCorruptedData, "truncated directory record for "+name, err)
	}

	e := &entry{
		name:             name,
		storedName:       name,
		offset:           fields[0],
		compressedSize:   fields[1],
		uncompressedSize: fields[2],
		crc32:            fields[3],
		encrypted:        flags&entryFlagEncrypted != 0,
	}
	if e.uncompressedSize == 0 || e.uncompressedSize > MaxEntrySize {
		return nil, newError(KindCorruptedData, fmt.Sprintf("entry %s declares %d uncompressed bytes", name, e.uncompressedSize))
	}
	if int64(e.offset) < HeaderSize || int64(e.offset)+int64(e.compressedSize) > dirOffset {
		return nil, newError(KindCorruptedData, fmt.Sprintf("entry %s payload [%d, %d) outside payload region", name, e.offset, int64(e.offset)+int64(e.compressedSize)))
	}
	return e, nil
}

// ValidatePackageFile reports whether the file at path begins with the
// package signature.
func ValidatePackageFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var buf [4]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return false
	}
	return binary.LittleEndian.Uint32(buf[:]) == Signature
}
