package rbpak

import "log/slog"

// CompressionLevel selects the DEFLATE effort used at Save time. The value
// is the effort level written into the codec.
type CompressionLevel int

const (
	// CompressionNone stores bytes without compression effort.
	CompressionNone CompressionLevel = 0

	// CompressionFast favors speed over ratio.
	CompressionFast CompressionLevel = 1

	// CompressionBalanced is the default trade-off.
	CompressionBalanced CompressionLevel = 6

	// CompressionBest favors ratio over speed.
	CompressionBest CompressionLevel = 9
)

func (l CompressionLevel) String() string {
	switch l {
	case CompressionNone:
		return "none"
	case CompressionFast:
		return "fast"
	case CompressionBalanced:
		return "balanced"
	case CompressionBest:
		return "best"
	default:
		return "unknown"
	}
}

// EncryptionMethod selects the payload cipher.
type EncryptionMethod uint8

const (
	// EncryptionNone leaves payloads as plaintext before compression.
	EncryptionNone EncryptionMethod = iota

	// EncryptionXOR runs payloads through the keyed XOR keystream.
	EncryptionXOR
)

func (m EncryptionMethod) String() string {
	switch m {
	case EncryptionNone:
		return "none"
	case EncryptionXOR:
		return "xor"
	default:
		return "unknown"
	}
}

// DefaultMaxCacheSize bounds the lazy-load cache (100 MiB).
const DefaultMaxCacheSize int64 = 100 << 20

// Config controls how a Package encodes entries and serves reads.
// The zero MaxCacheSize selects DefaultMaxCacheSize.
type Config struct {
	// Compression is the DEFLATE level applied at Save time.
	Compression CompressionLevel

	// Encryption selects the payload cipher.
	Encryption EncryptionMethod

	// EncryptionKey seeds the cipher's key schedule. Required when
	// Encryption is not EncryptionNone.
	EncryptionKey string

	// ObfuscateFilenames stores "rbp_<hash>.dat" in the directory
	// instead of the logical name.
	ObfuscateFilenames bool

	// VerifyChecksums makes Get compare the decoded plaintext's CRC-32
	// against the directory record.
	VerifyChecksums bool

	// LazyLoad keeps Load metadata-only and lets Get populate the cache.
	// When false, Load materializes every entry and Get bypasses the cache.
	LazyLoad bool

	// MaxCacheSize is the soft cap on cache residency in bytes.
	MaxCacheSize int64
}

// DefaultConfig returns balanced compression, no encryption, checksum
// verification and lazy loading on.
func DefaultConfig() Config {
	return Config{
		Compression:     CompressionBalanced,
		Encryption:      EncryptionNone,
		VerifyChecksums: true,
		LazyLoad:        true,
		MaxCacheSize:    DefaultMaxCacheSize,
	}
}

// SecureConfig returns a configuration with XOR payload encryption under
// key, obfuscated filenames, and checksum verification on.
func SecureConfig(key string) Config {
	cfg := DefaultConfig()
	cfg.Encryption = EncryptionXOR
	cfg.EncryptionKey = key
	cfg.ObfuscateFilenames = true
	return cfg
}

// FastLoadConfig returns a configuration tuned for startup speed: fast
// compression, no checksum verification, eager loading.
func FastLoadConfig() Config {
	cfg := DefaultConfig()
	cfg.Compression = CompressionFast
	cfg.VerifyChecksums = false
	cfg.LazyLoad = false
	return cfg
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	switch c.Compression {
	case CompressionNone, CompressionFast, CompressionBalanced, CompressionBest:
	default:
		return newError(KindInvalidParameter, "unknown compression level")
	}
	switch c.Encryption {
	case EncryptionNone, EncryptionXOR:
	default:
		return newError(KindInvalidParameter, "unknown encryption method")
	}
	if c.Encryption != EncryptionNone && c.EncryptionKey == "" {
		return newError(KindInvalidParameter, "encryption enabled with empty key")
	}
	if c.MaxCacheSize < 0 {
		return newError(KindInvalidParameter, "negative cache size")
	}
	return nil
}

// Option configures ambient package behavior.
type Option func(*Package)

// WithLogger attaches a logger for operation-level diagnostics. Without it,
// logging is discarded.
func WithLogger(l *slog.Logger) Option {
	return func(p *Package) {
		p.logger = l
	}
}
