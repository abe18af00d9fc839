// Package wire provides the little-endian primitives shared by the package
// serializer and parser: fixed-width integers and length-prefixed strings
// over ordinary byte streams.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxStringLen bounds length-prefixed strings (8 KiB).
const MaxStringLen = 8192

// ErrStringTooLong is returned for a string whose declared or actual length
// exceeds MaxStringLen.
var ErrStringTooLong = errors.New("wire: string exceeds length bound")

// Writer serializes little-endian values to an underlying stream while
// tracking the absolute byte offset.
type Writer struct {
	w   io.Writer
	off int64
}

// NewWriter wraps w. The offset starts at zero.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 {
	return w.off
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.off += int64(n)
	return err
}

// U8 writes a single byte.
func (w *Writer) U8(v uint8) error {
	return w.write([]byte{v})
}

// U16 writes a little-endian 16-bit value.
func (w *Writer) U16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return w.write(b[:])
}

// U32 writes a little-endian 32-bit value.
func (w *Writer) U32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return w.write(b[:])
}

// Bytes writes p verbatim.
func (w *Writer) Bytes(p []byte) error {
	return w.write(p)
}

// String writes a u16 length prefix followed by the raw bytes of s, with no
// terminator.
func (w *Writer) String(s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	if err := w.U16(uint16(len(s))); err != nil {
		return err
	}
	return w.write([]byte(s))
}

// Reader deserializes little-endian values from an underlying stream.
// Truncated streams surface as io.ErrUnexpectedEOF.
type Reader struct {
	r io.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) read(p []byte) error {
	_, err := io.ReadFull(r.r, p)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// U8 reads a single byte.
func (r *Reader) U8() (uint8, error) {
	var b [1]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian 16-bit value.
func (r *Reader) U16() (uint16, error) {
	var b [2]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// U32 reads a little-endian 32-bit value.
func (r *Reader) U32() (uint32, error) {
	var b [4]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// String reads a u16 length prefix and that many bytes. Declared lengths
// above MaxStringLen are rejected before any payload bytes are read.
func (r *Reader) String() (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	if int(n) > MaxStringLen {
		return "", fmt.Errorf("%w: declared %d bytes", ErrStringTooLong, n)
	}
	buf := make([]byte, n)
	if err := r.read(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// PatchU32 overwrites a previously written little-endian 32-bit value at
// the given absolute offset.
func PatchU32(w io.WriterAt, off int64, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.WriteAt(b[:], off)
	return err
}
