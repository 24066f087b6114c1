package ubjson

import (
	"fmt"

	"github.com/pkg/errors"
)

// SizeKind distinguishes which resource limit a SizeError reports against.
type SizeKind int

const (
	// SizeKindContainer marks a container-element-count overrun.
	SizeKindContainer SizeKind = iota
	// SizeKindString marks a string-byte-length overrun.
	SizeKindString
)

func (k SizeKind) String() string {
	switch k {
	case SizeKindContainer:
		return "container"
	case SizeKindString:
		return "string"
	default:
		return "unknown"
	}
}

// ErrUnexpectedEnd is returned when the source is exhausted mid-value.
// It replaces the underlying io.EOF/io.ErrUnexpectedEOF, so errors.Is
// matches ErrUnexpectedEnd and not those io errors.
var ErrUnexpectedEnd = errors.New("ubjson: unexpected end of input")

// MarkerError reports an unknown or contextually forbidden marker byte.
type MarkerError struct {
	Byte     byte
	Position int64
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("ubjson: invalid marker 0x%02X at position %d", e.Byte, e.Position)
}

// Utf8Error reports a byte span declared as UTF-8 that failed to decode.
type Utf8Error struct {
	Position int64
}

func (e *Utf8Error) Error() string {
	return fmt.Sprintf("ubjson: invalid UTF-8 at position %d", e.Position)
}

// HighPrecisionError reports a HighPrec payload that failed the JSON number
// grammar.
type HighPrecisionError struct {
	Position int64
	Detail   string
}

func (e *HighPrecisionError) Error() string {
	return fmt.Sprintf("ubjson: invalid high-precision number at position %d: %s",
		e.Position, e.Detail)
}

// CharError reports a Char payload byte that exceeded 0x7F.
type CharError struct {
	Byte     byte
	Position int64
}

func (e *CharError) Error() string {
	return fmt.Sprintf("ubjson: char value 0x%02X exceeds 0x7F at position %d",
		e.Byte, e.Position)
}

// DepthError reports recursion that would exceed the configured ceiling.
type DepthError struct {
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("ubjson: depth limit %d exceeded", e.Limit)
}

// SizeError reports a count or string length that exceeded its ceiling.
type SizeError struct {
	Kind      SizeKind
	Limit     int64
	Requested int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("ubjson: %s size %d exceeds limit %d",
		e.Kind, e.Requested, e.Limit)
}

// TypedContainerError reports a typed container whose declared type or count
// disagreed with its body.
type TypedContainerError struct {
	Position int64
	Detail   string
}

func (e *TypedContainerError) Error() string {
	return fmt.Sprintf("ubjson: typed container violation at position %d: %s",
		e.Position, e.Detail)
}

// DuplicateKeyError reports a repeated object key when rejection is enabled.
type DuplicateKeyError struct {
	Key      string
	Position int64
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("ubjson: duplicate key %q at position %d", e.Key, e.Position)
}

// UnsupportedValueError reports a value the writer cannot represent, such as
// a TypedArray whose declared tag disagrees with an element.
type UnsupportedValueError struct {
	Detail string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("ubjson: unsupported value: %s", e.Detail)
}

// wrapIO wraps an underlying I/O error with context the way
// kolide-launcher's control package wraps errors at the boundary
// (errors.Wrap), preserving the original error for errors.Is/errors.As.
func wrapIO(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}
