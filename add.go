package rbpak

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Retroboi64/RBPak/internal/checksum"
)

// Add registers data under name, replacing any existing entry of the same
// name. The bytes are copied; the caller keeps ownership of data. The
// plaintext checksum is computed here, before any transform.
func (p *Package) Add(name string, data []byte) error {
	if name == "" {
		return newError(KindInvalidParameter, "empty entry name")
	}
	if len(name) > MaxNameLen {
		return newError(KindInvalidParameter, "entry name exceeds 8192 bytes")
	}
	if len(data) == 0 {
		return newError(KindInvalidParameter, "empty entry data")
	}
	if len(data) > MaxEntrySize {
		return newError(KindInvalidParameter, "entry exceeds 1 GiB")
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	p.entries[name] = &entry{
		name:             name,
		storedName:       name,
		uncompressedSize: uint32(len(buf)),
		crc32:            checksum.Sum(buf),
		encrypted:        p.cfg.Encryption != EncryptionNone,
		data:             buf,
		loaded:           true,
	}
	p.cache.Remove(name)
	return nil
}

// AddFromFile reads the file at path and registers its contents under name.
func (p *Package) AddFromFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return pathError("read "+path, err)
	}
	return p.Add(name, data)
}

// AddMultiple adds each mapping in order, invoking progress before each
// item. The first failure aborts the iteration.
func (p *Package) AddMultiple(files []FileMapping, progress ProgressFunc) error {
	for i, f := range files {
		if progress != nil {
			progress(i, len(files), f.Name)
		}
		if err := p.AddFromFile(f.Name, f.Path); err != nil {
			return err
		}
	}
	return nil
}

// AddDirectory registers every regular file under dir, keyed by its
// slash-separated path relative to dir. When recursive is false, only the
// immediate children are considered. Filesystem failures during the walk
// fold into IOError.
func (p *Package) AddDirectory(dir string, recursive bool, progress ProgressFunc) error {
	names, err := enumerateDir(dir, recursive)
	if err != nil {
		return pathError("walk "+dir, err)
	}
	p.log().Info("adding directory", "dir", dir, "file_count", len(names), "recursive", recursive)

	for i, name := range names {
		if progress != nil {
			progress(i, len(names), name)
		}
		if err := p.AddFromFile(name, filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			return err
		}
	}
	return nil
}

func enumerateDir(dir string, recursive bool) ([]string, error) {
	if !recursive {
		ents, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(ents))
		for _, ent := range ents {
			if ent.Type().IsRegular() {
				names = append(names, ent.Name())
			}
		}
		return names, nil
	}

	var names []string
	err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Remove erases the entry named name and reports whether it existed. The
// backing file is untouched.
func (p *Package) Remove(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[name]
	if ok {
		delete(p.entries, name)
		p.cache.Remove(name)
	}
	return ok
}

// Clear drops every entry, closes the backing file, and forgets the file
// path. Cached payloads stay resident; use ClearCache to drop them.
func (p *Package) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
}

func (p *Package) clearLocked() {
	p.entries = make(map[string]*entry)
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	p.path = ""
}
