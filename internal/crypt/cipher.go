// Package crypt implements the keyed XOR keystream applied to entry
// payloads before compression. It obfuscates bytes at rest; it is not a
// security boundary.
package crypt

import (
	"errors"
	"strconv"
)

const (
	keySize = 32
	salt    = "RBPak_Salt_2025"

	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619
)

// ErrEmptyKey is returned when a cipher is requested without key material.
var ErrEmptyKey = errors.New("crypt: empty key")

// Cipher XORs bytes against a 32-byte schedule derived from a user key.
// Applying it twice restores the original bytes.
type Cipher struct {
	key [keySize]byte
}

// New derives the key schedule from userKey.
//
// Each round hashes the running seed with 32-bit FNV-1a, takes the low byte
// of the hash as the next schedule byte, and appends the hash's decimal
// representation to the seed for the following round. The first seed is
// userKey concatenated with a fixed salt.
func New(userKey string) (*Cipher, error) {
	if userKey == "" {
		return nil, ErrEmptyKey
	}
	c := &Cipher{}
	seed := append([]byte(userKey), salt...)
	for i := range c.key {
		h := fnvOffsetBasis
		for _, b := range seed {
			h ^= uint32(b)
			h *= fnvPrime
		}
		c.key[i] = byte(h)
		seed = strconv.AppendUint(seed, uint64(h), 10)
	}
	return c, nil
}

// Apply XORs data in place with the key schedule.
func (c *Cipher) Apply(data []byte) {
	for i := range data {
		data[i] ^= c.key[i%keySize]
	}
}
