package rbpak

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Retroboi64/RBPak/internal/crypt"
	"github.com/Retroboi64/RBPak/internal/lru"
)

// Package bundles named byte blobs behind a single container file.
//
// Add, Remove, Save, Load, and Clear must not be called concurrently on one
// Package. Concurrent Get calls are safe: the decode pipeline runs under
// the package mutex, duplicate loads of one entry are collapsed, and the
// cache serializes its own access.
type Package struct {
	logger *slog.Logger

	mu      sync.Mutex // guards cfg, entries, file, path, cipher, lastErr
	cfg     Config
	entries map[string]*entry
	file    *os.File
	path    string
	cipher  *crypt.Cipher
	lastErr error

	cache *lru.Cache
	group singleflight.Group
}

// New creates an empty package with the given configuration.
func New(cfg Config, opts ...Option) (*Package, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxCacheSize == 0 {
		cfg.MaxCacheSize = DefaultMaxCacheSize
	}

	p := &Package{
		cfg:     cfg,
		entries: make(map[string]*entry),
		cache:   lru.New(cfg.MaxCacheSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	if cfg.Encryption == EncryptionXOR {
		c, err := crypt.New(cfg.EncryptionKey)
		if err != nil {
			return nil, wrapError(KindInvalidParameter, "derive cipher key", err)
		}
		p.cipher = c
	}
	return p, nil
}

func (p *Package) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.logger
}

// Config returns the active configuration. Note that Load overwrites the
// encryption, obfuscation, and verification settings with the loaded file's
// header flags, since those are properties of the file.
func (p *Package) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// LastError returns the most recent decode-pipeline failure, or nil.
func (p *Package) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Has reports whether the package contains an entry named name.
func (p *Package) Has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[name]
	return ok
}

// GetFileInfo returns the metadata view for name.
func (p *Package) GetFileInfo(name string) (EntryInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[name]
	if !ok {
		return EntryInfo{}, false
	}
	return e.info(), true
}

// List returns every entry name in sorted order.
func (p *Package) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sortedNamesLocked()
}

func (p *Package) sortedNamesLocked() []string {
	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListDetailed returns a metadata view per entry. Order is not specified.
func (p *Package) ListDetailed() []EntryInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	infos := make([]EntryInfo, 0, len(p.entries))
	for _, e := range p.entries {
		infos = append(infos, e.info())
	}
	return infos
}

// GetFileCount returns the number of entries.
func (p *Package) GetFileCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// GetTotalSize returns the sum of uncompressed entry sizes.
func (p *Package) GetTotalSize() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var total uint64
	for _, e := range p.entries {
		total += uint64(e.uncompressedSize)
	}
	return total
}

// GetCompressedSize returns the sum of on-disk payload sizes. Entries that
// have never been through a Save contribute zero.
func (p *Package) GetCompressedSize() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var total uint64
	for _, e := range p.entries {
		total += uint64(e.compressedSize)
	}
	return total
}

// GetCompressionRatio returns compressed size over uncompressed size, or
// zero for an empty package.
func (p *Package) GetCompressionRatio() float64 {
	total := p.GetTotalSize()
	if total == 0 {
		return 0
	}
	return float64(p.GetCompressedSize()) / float64(total)
}

// ClearCache drops every cached payload.
func (p *Package) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the bytes currently resident in the cache.
func (p *Package) GetCacheSize() int64 {
	return p.cache.Size()
}
