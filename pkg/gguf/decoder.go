package gguf

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// maxArrayDepth bounds array-of-array nesting. The format itself places no
// limit, but input files are untrusted and the decoder recurses per level.
const maxArrayDepth = 64

// minEntrySize is the smallest possible encoded metadata entry:
// u64 key length + u32 type tag + a 1-byte value.
const minEntrySize = 13

// DecodeHeader decodes a GGUF header from the start of data. It reads the
// magic, version, tensor count, and metadata count, then exactly that many
// metadata entries in file order. The decode is all-or-nothing: any malformed
// field aborts the whole operation with one of the error kinds in errors.go,
// and no partial header is returned.
//
// Bytes past the end of the header (tensor infos, tensor data) are ignored.
func DecodeHeader(data []byte) (*Header, error) {
	h, _, err := decodeHeader(data)
	return h, err
}

// decodeHeader also reports the number of bytes consumed, which File uses to
// locate the end of the header within a mapped file.
func decodeHeader(data []byte) (*Header, int, error) {
	d := &decoder{data: data}

	if err := d.magic(); err != nil {
		return nil, 0, err
	}
	version, err := d.u32()
	if err != nil {
		return nil, 0, fmt.Errorf("read version: %w", err)
	}
	tensorCount, err := d.u64()
	if err != nil {
		return nil, 0, fmt.Errorf("read tensor count: %w", err)
	}
	metadataCount, err := d.u64()
	if err != nil {
		return nil, 0, fmt.Errorf("read metadata count: %w", err)
	}

	// More entries than the remaining bytes could ever encode is malformed;
	// reject before allocating.
	if metadataCount > uint64(d.remaining()/minEntrySize) {
		return nil, 0, fmt.Errorf("metadata count %d: %w", metadataCount, ErrUnexpectedEOF)
	}

	h := &Header{
		Version:     version,
		TensorCount: tensorCount,
		Metadata:    make([]MetadataEntry, 0, metadataCount),
	}
	for i := uint64(0); i < metadataCount; i++ {
		entry, err := d.entry()
		if err != nil {
			return nil, 0, fmt.Errorf("metadata entry %d: %w", i, err)
		}
		h.Metadata = append(h.Metadata, entry)
	}
	return h, d.off, nil
}

// decoder is a forward-only cursor over an immutable buffer. Every read
// either advances off or fails; after a failure the position is unspecified
// and the whole decode must be treated as aborted.
type decoder struct {
	data []byte
	off  int
}

func (d *decoder) remaining() int {
	return len(d.data) - d.off
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || d.remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) magic() error {
	if d.remaining() < len(magicGGUF) {
		return fmt.Errorf("read magic: %w", ErrUnexpectedEOF)
	}
	got := d.data[d.off : d.off+len(magicGGUF)]
	if string(got) != magicGGUF {
		return fmt.Errorf("%w: %q", ErrBadMagic, got)
	}
	d.off += len(magicGGUF)
	return nil
}

func (d *decoder) u8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) u64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// str reads a u64 length prefix followed by that many UTF-8 bytes. There is
// no terminator. The length is checked against the remaining buffer before
// any allocation so a hostile length field cannot force one.
func (d *decoder) str() (string, error) {
	n, err := d.u64()
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if n > uint64(d.remaining()) {
		return "", fmt.Errorf("string of %d bytes: %w", n, ErrUnexpectedEOF)
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// valueType reads a 4-byte type tag and rejects values outside 0..12. This is
// the only place tags are resolved; scalar, string, and array decoding all
// receive an already-validated ValueType.
func (d *decoder) valueType() (ValueType, error) {
	raw, err := d.u32()
	if err != nil {
		return 0, err
	}
	vt := ValueType(raw)
	if !vt.Valid() {
		return 0, &UnknownTypeTagError{Tag: raw}
	}
	return vt, nil
}

// entry decodes one metadata record: key string, type tag, then the value
// selected by that tag.
func (d *decoder) entry() (MetadataEntry, error) {
	key, err := d.str()
	if err != nil {
		return MetadataEntry{}, fmt.Errorf("read key: %w", err)
	}
	vt, err := d.valueType()
	if err != nil {
		return MetadataEntry{}, fmt.Errorf("key %q: %w", key, err)
	}
	val, err := d.value(vt, 0)
	if err != nil {
		return MetadataEntry{}, fmt.Errorf("key %q: %w", key, err)
	}
	return MetadataEntry{Key: key, Value: Value{Type: vt, Value: val}}, nil
}

// value dispatches on the resolved type. This is the single point binding
// value kinds to their decoders; new kinds would be added here.
func (d *decoder) value(vt ValueType, depth int) (any, error) {
	switch vt {
	case TypeUint8:
		return d.u8()
	case TypeInt8:
		v, err := d.u8()
		return int8(v), err
	case TypeUint16:
		return d.u16()
	case TypeInt16:
		v, err := d.u16()
		return int16(v), err
	case TypeUint32:
		return d.u32()
	case TypeInt32:
		v, err := d.u32()
		return int32(v), err
	case TypeUint64:
		return d.u64()
	case TypeInt64:
		v, err := d.u64()
		return int64(v), err
	case TypeFloat32:
		v, err := d.u32()
		return math.Float32frombits(v), err
	case TypeFloat64:
		v, err := d.u64()
		return math.Float64frombits(v), err
	case TypeBool:
		b, err := d.u8()
		if err != nil {
			return nil, err
		}
		switch b {
		case 0:
			return false, nil
		case 1:
			return true, nil
		default:
			// Booleans are exactly 0 or 1, not general integers.
			return nil, &InvalidBoolError{Byte: b}
		}
	case TypeString:
		return d.str()
	case TypeArray:
		return d.array(depth)
	default:
		return nil, &UnknownTypeTagError{Tag: uint32(vt)}
	}
}

// array decodes an element type tag, an element count, then that many values
// of the declared element type. A count of 0 is valid and consumes only the
// tag and count. Elements may themselves be arrays up to maxArrayDepth.
func (d *decoder) array(depth int) (ArrayValue, error) {
	if depth >= maxArrayDepth {
		return ArrayValue{}, ErrNestingTooDeep
	}
	elem, err := d.valueType()
	if err != nil {
		return ArrayValue{}, fmt.Errorf("read array element type: %w", err)
	}
	count, err := d.u64()
	if err != nil {
		return ArrayValue{}, fmt.Errorf("read array length: %w", err)
	}
	// Every element encodes to at least one byte, so a count beyond the
	// remaining buffer cannot be satisfied; reject it before allocating.
	if count > uint64(d.remaining()) {
		return ArrayValue{}, fmt.Errorf("array of %d elements: %w", count, ErrUnexpectedEOF)
	}
	values := make([]any, 0, count)
	for i := uint64(0); i < count; i++ {
		v, err := d.value(elem, depth+1)
		if err != nil {
			return ArrayValue{}, fmt.Errorf("array element %d: %w", i, err)
		}
		values = append(values, v)
	}
	return ArrayValue{ElemType: elem, Values: values}, nil
}
