package rbpak

import (
	"fmt"

	"github.com/Retroboi64/RBPak/internal/checksum"
	"github.com/Retroboi64/RBPak/internal/codec"
)

// Get returns a copy of the plaintext bytes stored under name. Callers may
// mutate the returned slice freely.
//
// The cache is consulted first in lazy-load mode. On a miss, the entry's
// payload is read from the backing file, decoded, verified, and cached.
// A missing entry or a pipeline failure returns a nil slice and an error
// that is also recorded as the package's last error.
func (p *Package) Get(name string) ([]byte, error) {
	if p.lazyLoad() {
		if data, ok := p.cache.Get(name); ok {
			return clone(data), nil
		}
	}

	v, err, _ := p.group.Do(name, func() (any, error) {
		return p.entryData(name)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]byte)), nil
}

func (p *Package) lazyLoad() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.LazyLoad
}

func clone(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

func (p *Package) entryData(name string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[name]
	if !ok {
		err := newError(KindFileNotFound, "no entry named "+name)
		p.lastErr = err
		return nil, err
	}
	if !e.loaded {
		if err := p.loadEntryLocked(e); err != nil {
			return nil, err
		}
	}
	if p.cfg.LazyLoad {
		p.cache.Put(e.name, e.data, int64(len(e.data)))
	}
	return e.data, nil
}

// loadEntryLocked runs the decode pipeline for e: read exactly the payload
// bytes, inflate to the declared size, decrypt in place, then verify the
// plaintext checksum. Decryption precedes verification because the CRC is
// over plaintext. Every failure is recorded as the package's last error.
func (p *Package) loadEntryLocked(e *entry) (err error) {
	defer func() {
		if err != nil {
			p.lastErr = err
		}
	}()

	if p.file == nil {
		return newError(KindIOError, "no open package file")
	}

	compressed := make([]byte, e.compressedSize)
	if _, rerr := p.file.ReadAt(compressed, int64(e.offset)); rerr != nil {
		return wrapError(KindIOError, "read payload "+e.name, rerr)
	}

	plain, derr := codec.Decompress(compressed, int(e.uncompressedSize))
	if derr != nil {
		return wrapError(KindDecompressionFailed, "decompress "+e.name, derr)
	}

	if e.encrypted {
		if p.cipher == nil {
			return newError(KindDecryptionFailed, "entry "+e.name+" is encrypted and no key is configured")
		}
		p.cipher.Apply(plain)
	}

	if p.cfg.VerifyChecksums {
		if sum := checksum.Sum(plain); !checksum.Equal(sum, e.crc32) {
			return newError(KindChecksumMismatch, fmt.Sprintf("entry %s: checksum %#08x, want %#08x", e.name, sum, e.crc32))
		}
	}

	e.data = plain
	e.loaded = true
	p.log().Debug("entry loaded", "name", e.name, "size", len(plain))
	return nil
}
