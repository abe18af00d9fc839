package rbpak

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a package operation failure. The set is closed; every
// error produced by this package carries exactly one Kind.
type Kind uint8

const (
	KindNone Kind = iota
	KindFileNotFound
	KindInvalidSignature
	KindCorruptedData
	KindDecryptionFailed
	KindCompressionFailed
	KindDecompressionFailed
	KindChecksumMismatch
	KindIOError
	KindInvalidParameter
	KindOutOfMemory
	KindAccessDenied
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFileNotFound:
		return "file not found"
	case KindInvalidSignature:
		return "invalid signature"
	case KindCorruptedData:
		return "corrupted data"
	case KindDecryptionFailed:
		return "decryption failed"
	case KindCompressionFailed:
		return "compression failed"
	case KindDecompressionFailed:
		return "decompression failed"
	case KindChecksumMismatch:
		return "checksum mismatch"
	case KindIOError:
		return "io error"
	case KindInvalidParameter:
		return "invalid parameter"
	case KindOutOfMemory:
		return "out of memory"
	case KindAccessDenied:
		return "access denied"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by package operations. It pairs a Kind
// with a short human message and, when a lower layer failed, the wrapped
// cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rbpak: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("rbpak: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind returns the Kind carried by err. A nil error maps to KindNone
// and a foreign error to KindIOError.
func ErrorKind(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOError
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool {
	return ErrorKind(err) == k
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// pathError folds a filesystem failure into the closed taxonomy.
func pathError(msg string, err error) *Error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return wrapError(KindFileNotFound, msg, err)
	case errors.Is(err, fs.ErrPermission):
		return wrapError(KindAccessDenied, msg, err)
	default:
		return wrapError(KindIOError, msg, err)
	}
}
