package rbpak

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Extract writes the plaintext of name to outPath, creating parent
// directories as needed.
func (p *Package) Extract(name, outPath string) error {
	data, err := p.Get(name)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return pathError("create directory for "+outPath, err)
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return pathError("write "+outPath, err)
	}
	return nil
}

// ExtractAll writes every entry under dir, mapping slash-separated entry
// names to relative paths. Names that would escape dir are rejected before
// anything is written for them. Progress is invoked before each entry.
func (p *Package) ExtractAll(dir string, progress ProgressFunc) error {
	names := p.List()
	p.log().Info("extracting package", "dir", dir, "entry_count", len(names))

	for i, name := range names {
		if progress != nil {
			progress(i, len(names), name)
		}
		if !fs.ValidPath(name) {
			return newError(KindInvalidParameter, "entry name escapes destination: "+name)
		}
		if err := p.Extract(name, filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			return err
		}
	}
	return nil
}
