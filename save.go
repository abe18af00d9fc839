package rbpak

import (
	"bufio"
	"os"

	"github.com/Retroboi64/RBPak/internal/codec"
	"github.com/Retroboi64/RBPak/internal/obfuscate"
	"github.com/Retroboi64/RBPak/internal/wire"
)

// Save serializes the package to path: header, payload region, directory,
// then the directory offset patched back into the header. Entries are
// written in sorted-name order, and progress is invoked before each entry.
//
// A failed Save returns the first error and leaves the partial file in
// place; disposing of it is the caller's responsibility.
func (p *Package) Save(path string, progress ProgressFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.cfg.Validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return pathError("create "+path, err)
	}
	defer f.Close()

	names := p.sortedNamesLocked()
	p.log().Info("saving package", "path", path, "entry_count", len(names),
		"compression", p.cfg.Compression.String(), "encryption", p.cfg.Encryption.String())

	bw := bufio.NewWriter(f)
	w := wire.NewWriter(bw)
	if err := writeHeader(w, uint32(len(names)), p.headerFlagsLocked(), 0); err != nil {
		return wrapError(KindIOError, "write header", err)
	}

	for i, name := range names {
		if progress != nil {
			progress(i, len(names), name)
		}
		if err := p.writePayloadLocked(w, p.entries[name]); err != nil {
			return err
		}
	}

	dirOffset := w.Offset()
	for _, name := range names {
		if err := writeDirectoryRecord(w, p.entries[name]); err != nil {
			return wrapError(KindIOError, "write directory", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return wrapError(KindIOError, "flush "+path, err)
	}
	if err := wire.PatchU32(f, headerDirOffsetPos, uint32(dirOffset)); err != nil {
		return wrapError(KindIOError, "patch directory offset", err)
	}
	if err := f.Close(); err != nil {
		return wrapError(KindIOError, "close "+path, err)
	}

	p.log().Debug("package saved", "path", path, "directory_offset", dirOffset)
	return nil
}

func (p *Package) headerFlagsLocked() uint32 {
	var flags uint32
	if p.cfg.Compression != CompressionNone {
		flags |= FlagCompressed
	}
	if p.cfg.Encryption != EncryptionNone {
		flags |= FlagEncrypted
	}
	if p.cfg.ObfuscateFilenames {
		flags |= FlagObfuscatedNames
	}
	if p.cfg.VerifyChecksums {
		flags |= FlagChecksumVerified
	}
	return flags
}

func writeHeader(w *wire.Writer, entryCount, flags, dirOffset uint32) error {
	for _, v := range []uint32{Signature, FormatVersion, entryCount, flags, dirOffset} {
		if err := w.U32(v); err != nil {
			return err
		}
	}
	return nil
}

// writePayloadLocked encodes one entry: encrypt a working copy, compress,
// then append the bytes, recording offset and compressed size. Entries that
// were never materialized are pulled through the decode pipeline first.
func (p *Package) writePayloadLocked(w *wire.Writer, e *entry) error {
	if !e.loaded {
		if err := p.loadEntryLocked(e); err != nil {
			return err
		}
	}

	payload := e.data
	if e.encrypted {
		if p.cipher == nil {
			return newError(KindInvalidParameter, "entry "+e.name+" requires a cipher")
		}
		buf := make([]byte, len(payload))
		copy(buf, payload)
		p.cipher.Apply(buf)
		payload = buf
	}

	compressed, err := codec.Compress(payload, int(p.cfg.Compression))
	if err != nil {
		return wrapError(KindCompressionFailed, "compress "+e.name, err)
	}

	e.storedName = e.name
	if p.cfg.ObfuscateFilenames {
		e.storedName = obfuscate.StoredName(e.name)
	}
	e.offset = uint32(w.Offset())
	e.compressedSize = uint32(len(compressed))

	if err := w.Bytes(compressed); err != nil {
		return wrapError(KindIOError, "write payload "+e.name, err)
	}
	p.log().Debug("entry written", "name", e.name, "stored_name", e.storedName,
		"offset", e.offset, "compressed_size", e.compressedSize)
	return nil
}

func writeDirectoryRecord(w *wire.Writer, e *entry) error {
	if err := w.String(e.storedName); err != nil {
		return err
	}
	for _, v := range []uint32{e.offset, e.compressedSize, e.uncompressedSize, e.crc32} {
		if err := w.U32(v); err != nil {
			return err
		}
	}
	var flags uint8
	if e.encrypted {
		flags |= entryFlagEncrypted
	}
	return w.U8(flags)
}
