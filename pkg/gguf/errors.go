package gguf

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is returned when fewer bytes remain than a field requires.
	ErrUnexpectedEOF = errors.New("gguf: unexpected end of data")

	// ErrBadMagic is returned when the first 4 bytes are not "GGUF".
	ErrBadMagic = errors.New("gguf: invalid magic")

	// ErrInvalidUTF8 is returned when string bytes are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("gguf: string is not valid UTF-8")

	// ErrNestingTooDeep is returned when array-of-array nesting exceeds the
	// decoder's depth limit.
	ErrNestingTooDeep = errors.New("gguf: array nesting too deep")
)

// UnknownTypeTagError reports a type tag outside the defined 0..12 range.
type UnknownTypeTagError struct {
	Tag uint32
}

func (e *UnknownTypeTagError) Error() string {
	return fmt.Sprintf("gguf: unknown type tag 0x%x", e.Tag)
}

// InvalidBoolError reports a boolean field whose byte is neither 0 nor 1.
type InvalidBoolError struct {
	Byte byte
}

func (e *InvalidBoolError) Error() string {
	return fmt.Sprintf("gguf: invalid bool byte 0x%02x", e.Byte)
}
