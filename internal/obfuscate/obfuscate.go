// Package obfuscate derives the synthetic stored names written to a package
// directory when filename obfuscation is enabled.
package obfuscate

import (
	"strconv"

	"github.com/spaolacci/murmur3"
)

// Seed for the 32-bit name hash. Fixed so stored names are stable across
// runs and implementations.
const Seed uint32 = 0x52425061

// StoredName maps a logical entry name to its obfuscated on-disk form,
// "rbp_<hash>.dat".
//
// Distinct names can collide. The stored name is only a storage label; the
// entry map's authoritative key is the logical name, so a collision shows
// up as one directory record replacing another, not as corruption.
func StoredName(name string) string {
	h := murmur3.Sum32WithSeed([]byte(name), Seed)
	return "rbp_" + strconv.FormatUint(uint64(h), 10) + ".dat"
}
