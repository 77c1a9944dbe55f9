// Package gguf decodes the header section of GGUF model files into a typed,
// in-memory representation: format version, tensor count, and the ordered
// list of key/value metadata records that describe the model.
//
// The decoder operates on a byte buffer that is already resident in memory
// and never touches the tensor data section that follows the header.
//
// Specification: https://github.com/ggml-org/ggml/blob/master/docs/gguf.md
package gguf

import "fmt"

// magicGGUF is the 4-byte ASCII marker every GGUF file starts with.
const magicGGUF = "GGUF"

// ValueType identifies the shape of a metadata value. The numeric values are
// encoded in the file and must match the GGUF specification exactly.
type ValueType uint32

const (
	TypeUint8   ValueType = 0
	TypeInt8    ValueType = 1
	TypeUint16  ValueType = 2
	TypeInt16   ValueType = 3
	TypeUint32  ValueType = 4
	TypeInt32   ValueType = 5
	TypeFloat32 ValueType = 6
	TypeBool    ValueType = 7
	TypeString  ValueType = 8
	TypeArray   ValueType = 9
	TypeUint64  ValueType = 10
	TypeInt64   ValueType = 11
	TypeFloat64 ValueType = 12
)

// Valid reports whether t is one of the 13 defined value types.
func (t ValueType) Valid() bool {
	return t <= TypeFloat64
}

func (t ValueType) String() string {
	switch t {
	case TypeUint8:
		return "u8"
	case TypeInt8:
		return "i8"
	case TypeUint16:
		return "u16"
	case TypeInt16:
		return "i16"
	case TypeUint32:
		return "u32"
	case TypeInt32:
		return "i32"
	case TypeUint64:
		return "u64"
	case TypeInt64:
		return "i64"
	case TypeFloat32:
		return "f32"
	case TypeFloat64:
		return "f64"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// ArrayValue holds the elements of an array value. All elements share one
// declared element type; the type is fixed once for the whole array at decode
// time and elements are not re-tagged individually.
type ArrayValue struct {
	ElemType ValueType
	Values   []any
}

// Value is a decoded metadata value. The dynamic type of Value always matches
// Type because the decoder that produced it was selected by Type:
//
//	u8..u64    uint8/uint16/uint32/uint64
//	i8..i64    int8/int16/int32/int64
//	f32, f64   float32/float64
//	bool       bool
//	string     string
//	array      ArrayValue
type Value struct {
	Type  ValueType
	Value any
}

// MetadataEntry is one key/value record from the header's metadata section.
type MetadataEntry struct {
	Key   string
	Value Value
}

// Type returns the declared value type of the entry.
func (e MetadataEntry) Type() ValueType {
	return e.Value.Type
}

// Header is the decoded GGUF header. Metadata is in file order; duplicate
// keys, if a file carries any, are preserved rather than merged.
type Header struct {
	Version     uint32
	TensorCount uint64
	Metadata    []MetadataEntry
}
