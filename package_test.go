package rbpak

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, cfg Config) *Package {
	t.Helper()
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func writeTestFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Compression: CompressionBalanced, Encryption: EncryptionXOR})
	assert.True(t, IsKind(err, KindInvalidParameter), "encryption with empty key")

	_, err = New(Config{Compression: 3})
	assert.True(t, IsKind(err, KindInvalidParameter), "unknown compression level")

	cfg := DefaultConfig()
	cfg.MaxCacheSize = -1
	_, err = New(cfg)
	assert.True(t, IsKind(err, KindInvalidParameter), "negative cache size")
}

func TestPresets(t *testing.T) {
	t.Parallel()

	def := DefaultConfig()
	assert.Equal(t, CompressionBalanced, def.Compression)
	assert.Equal(t, EncryptionNone, def.Encryption)
	assert.True(t, def.VerifyChecksums)
	assert.True(t, def.LazyLoad)
	assert.Equal(t, DefaultMaxCacheSize, def.MaxCacheSize)

	sec := SecureConfig("key")
	assert.Equal(t, EncryptionXOR, sec.Encryption)
	assert.Equal(t, "key", sec.EncryptionKey)
	assert.True(t, sec.ObfuscateFilenames)
	assert.True(t, sec.VerifyChecksums)
	require.NoError(t, sec.Validate())

	fast := FastLoadConfig()
	assert.Equal(t, CompressionFast, fast.Compression)
	assert.False(t, fast.VerifyChecksums)
	assert.False(t, fast.LazyLoad)
	require.NoError(t, fast.Validate())
}

func TestAddRejectsBadParameters(t *testing.T) {
	t.Parallel()

	p := mustNew(t, DefaultConfig())

	err := p.Add("", []byte("data"))
	assert.True(t, IsKind(err, KindInvalidParameter), "empty name")

	err = p.Add("name", nil)
	assert.True(t, IsKind(err, KindInvalidParameter), "nil data")

	err = p.Add("name", []byte{})
	assert.True(t, IsKind(err, KindInvalidParameter), "empty data")
}

func TestAddReplacesExisting(t *testing.T) {
	t.Parallel()

	p := mustNew(t, DefaultConfig())
	require.NoError(t, p.Add("n", []byte("a")))

	// A Get in between must not pin the old bytes in the cache.
	got, err := p.Get("n")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	require.NoError(t, p.Add("n", []byte("b")))
	got, err = p.Get("n")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)
	assert.Equal(t, 1, p.GetFileCount())
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	p := mustNew(t, DefaultConfig())
	require.NoError(t, p.Add("n", []byte("immutable")))

	got, err := p.Get("n")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := p.Get("n")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), again)
}

func TestGetUnknownName(t *testing.T) {
	t.Parallel()

	p := mustNew(t, DefaultConfig())
	data, err := p.Get("ghost")
	assert.Nil(t, data)
	assert.True(t, IsKind(err, KindFileNotFound))
	assert.True(t, IsKind(p.LastError(), KindFileNotFound), "lookup failure is sticky")
}

func TestRemove(t *testing.T) {
	t.Parallel()

	p := mustNew(t, DefaultConfig())
	require.NoError(t, p.Add("x", []byte("1")))

	assert.True(t, p.Remove("x"))
	assert.False(t, p.Remove("x"), "second remove finds nothing")
	assert.False(t, p.Has("x"))
}

func TestQueries(t *testing.T) {
	t.Parallel()

	p := mustNew(t, DefaultConfig())
	require.NoError(t, p.Add("b.txt", []byte("bbbb")))
	require.NoError(t, p.Add("a.txt", []byte("aa")))
	require.NoError(t, p.Add("c/d.txt", []byte("cccccc")))

	assert.True(t, p.Has("a.txt"))
	assert.False(t, p.Has("z.txt"))
	assert.Equal(t, 3, p.GetFileCount())
	assert.Equal(t, []string{"a.txt", "b.txt", "c/d.txt"}, p.List())
	assert.Equal(t, uint64(12), p.GetTotalSize())
	assert.Len(t, p.ListDetailed(), 3)

	info, ok := p.GetFileInfo("a.txt")
	require.True(t, ok)
	assert.Equal(t, "a.txt", info.Name)
	assert.Equal(t, uint32(2), info.UncompressedSize)
	assert.True(t, info.Loaded)

	_, ok = p.GetFileInfo("z.txt")
	assert.False(t, ok)
}

func TestClearKeepsCache(t *testing.T) {
	t.Parallel()

	p := mustNew(t, DefaultConfig())
	require.NoError(t, p.Add("n", []byte("data")))
	_, err := p.Get("n")
	require.NoError(t, err)
	require.Positive(t, p.GetCacheSize())

	p.Clear()
	assert.Equal(t, 0, p.GetFileCount())
	assert.Positive(t, p.GetCacheSize(), "Clear leaves the cache alone")

	p.ClearCache()
	assert.Equal(t, int64(0), p.GetCacheSize())
}

func TestAddFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTestFile(t, dir, "blob.bin", []byte{0x89, 0x50, 0x4E, 0x47})

	p := mustNew(t, DefaultConfig())
	require.NoError(t, p.AddFromFile("img/logo.png", path))

	got, err := p.Get("img/logo.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, got)

	err = p.AddFromFile("missing", filepath.Join(dir, "nope"))
	assert.True(t, IsKind(err, KindFileNotFound))
}

func TestAddMultipleInvokesProgressBeforeEachItem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []FileMapping{
		{Name: "one", Path: writeTestFile(t, dir, "one.txt", []byte("1"))},
		{Name: "two", Path: writeTestFile(t, dir, "two.txt", []byte("2"))},
	}

	p := mustNew(t, DefaultConfig())
	var seen []string
	err := p.AddMultiple(files, func(index, total int, name string) {
		assert.Equal(t, 2, total)
		assert.False(t, p.Has(name), "callback fires before the item is processed")
		seen = append(seen, name)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, seen)
	assert.Equal(t, 2, p.GetFileCount())
}

func TestAddDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "top.txt", []byte("top"))
	writeTestFile(t, dir, "sub/inner.txt", []byte("inner"))
	writeTestFile(t, dir, "sub/deep/leaf.txt", []byte("leaf"))

	p := mustNew(t, DefaultConfig())
	require.NoError(t, p.AddDirectory(dir, true, nil))
	assert.Equal(t, []string{"sub/deep/leaf.txt", "sub/inner.txt", "top.txt"}, p.List())

	got, err := p.Get("sub/inner.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("inner"), got)
}

func TestAddDirectoryNonRecursive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "top.txt", []byte("top"))
	writeTestFile(t, dir, "sub/inner.txt", []byte("inner"))

	p := mustNew(t, DefaultConfig())
	require.NoError(t, p.AddDirectory(dir, false, nil))
	assert.Equal(t, []string{"top.txt"}, p.List())
}

func TestAddDirectoryMissing(t *testing.T) {
	t.Parallel()

	p := mustNew(t, DefaultConfig())
	err := p.AddDirectory(filepath.Join(t.TempDir(), "absent"), true, nil)
	assert.True(t, IsKind(err, KindFileNotFound))
}
