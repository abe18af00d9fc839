// Package codec implements the per-entry payload transform: DEFLATE inside
// zlib framing at a small set of effort levels.
//
// Level 0 does not run the compressor but still wraps the bytes in stored
// DEFLATE blocks, so every payload in a package decodes through the same
// path regardless of the level it was written at.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compression levels accepted by Compress.
const (
	LevelStore    = 0
	LevelFast     = 1
	LevelBalanced = 6
	LevelBest     = 9
)

// MaxDecodedSize caps the declared uncompressed size of a payload (1 GiB).
// Larger declarations are treated as hostile.
const MaxDecodedSize = 1 << 30

// Sentinel errors for parameter validation.
var (
	// ErrEmptyInput is returned when there are no bytes to transform.
	ErrEmptyInput = errors.New("codec: empty input")

	// ErrBadSize is returned for a declared size of zero or above MaxDecodedSize.
	ErrBadSize = errors.New("codec: declared size out of range")
)

// Compress deflates input at the given effort level.
func Compress(input []byte, level int) ([]byte, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	if _, err := zw.Write(input); err != nil {
		zw.Close()
		return nil, fmt.Errorf("codec: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates input and checks that the result is exactly
// expectedSize bytes. A stream that is shorter or longer than declared is
// an error, not a truncated result.
func Decompress(input []byte, expectedSize int) ([]byte, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}
	if expectedSize <= 0 || expectedSize > MaxDecodedSize {
		return nil, ErrBadSize
	}

	zr, err := zlib.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	defer zr.Close()

	out := make([]byte, expectedSize)
	if n, err := io.ReadFull(zr, out); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("codec: short stream (%d of %d bytes)", n, expectedSize)
		}
		return nil, fmt.Errorf("codec: %w", err)
	}

	// The stream must end exactly at expectedSize; this read also drives
	// the zlib trailer check.
	var extra [1]byte
	n, rerr := zr.Read(extra[:])
	if n != 0 {
		return nil, fmt.Errorf("codec: stream longer than declared %d bytes", expectedSize)
	}
	if rerr != nil && rerr != io.EOF {
		return nil, fmt.Errorf("codec: %w", rerr)
	}
	return out, nil
}
