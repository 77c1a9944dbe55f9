package gguf

import (
	"reflect"
	"testing"
)

func testHeader() *Header {
	return &Header{
		Version:     3,
		TensorCount: 10,
		Metadata: []MetadataEntry{
			{Key: "general.architecture", Value: Value{Type: TypeString, Value: "llama"}},
			{Key: "general.name", Value: Value{Type: TypeString, Value: "Test Model"}},
			{Key: "llama.context_length", Value: Value{Type: TypeUint32, Value: uint32(2048)}},
			{Key: "llama.rope.freq_base", Value: Value{Type: TypeFloat32, Value: float32(10000)}},
			{Key: "tokenizer.ggml.add_bos_token", Value: Value{Type: TypeBool, Value: true}},
			{Key: "tokenizer.ggml.bos_token_id", Value: Value{Type: TypeInt32, Value: int32(1)}},
			{Key: "strings", Value: Value{Type: TypeArray, Value: ArrayValue{
				ElemType: TypeString,
				Values:   []any{"a", "b", "c"},
			}}},
			{Key: "ints", Value: Value{Type: TypeArray, Value: ArrayValue{
				ElemType: TypeInt32,
				Values:   []any{int32(1), int32(2), int32(3)},
			}}},
			{Key: "mixed", Value: Value{Type: TypeArray, Value: ArrayValue{
				ElemType: TypeString,
				Values:   []any{"a", 1},
			}}},
		},
	}
}

func TestTypedAccessors(t *testing.T) {
	t.Parallel()

	h := testHeader()

	if s, ok := h.GetString("general.architecture"); !ok || s != "llama" {
		t.Errorf("GetString: got %q, %v", s, ok)
	}
	if _, ok := h.GetString("llama.context_length"); ok {
		t.Error("GetString on uint32 should fail")
	}
	if b, ok := h.GetBool("tokenizer.ggml.add_bos_token"); !ok || !b {
		t.Errorf("GetBool: got %v, %v", b, ok)
	}
	if v, ok := h.GetUint64("llama.context_length"); !ok || v != 2048 {
		t.Errorf("GetUint64: got %d, %v", v, ok)
	}
	if v, ok := h.GetInt64("tokenizer.ggml.bos_token_id"); !ok || v != 1 {
		t.Errorf("GetInt64: got %d, %v", v, ok)
	}
	if f, ok := h.GetFloat64("llama.rope.freq_base"); !ok || f != 10000 {
		t.Errorf("GetFloat64: got %g, %v", f, ok)
	}
	if _, ok := h.Get("missing"); ok {
		t.Error("Get on missing key should fail")
	}

	if s, err := h.MustGetString("general.name"); err != nil || s != "Test Model" {
		t.Errorf("MustGetString: got %q, %v", s, err)
	}
	if _, err := h.MustGetString("missing"); err == nil {
		t.Error("MustGetString on missing key should error")
	}
	if _, err := h.MustGetUint64("general.name"); err == nil {
		t.Error("MustGetUint64 on string should error")
	}
}

func TestGetArray(t *testing.T) {
	t.Parallel()

	h := testHeader()

	strs, ok := GetArray[string](h, "strings")
	if !ok {
		t.Error("expected ok for strings")
	}
	if !reflect.DeepEqual(strs, []string{"a", "b", "c"}) {
		t.Errorf("got %v, want [a b c]", strs)
	}

	ints, ok := GetArray[int32](h, "ints")
	if !ok {
		t.Error("expected ok for ints")
	}
	if !reflect.DeepEqual(ints, []int32{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", ints)
	}

	if _, ok := GetArray[int32](h, "strings"); ok {
		t.Error("expected !ok for type mismatch")
	}
	if _, ok := GetArray[string](h, "mixed"); ok {
		t.Error("expected !ok for mixed element types")
	}
	if _, ok := GetArray[string](h, "general.name"); ok {
		t.Error("expected !ok for non-array value")
	}
	if _, ok := GetArray[string](h, "missing"); ok {
		t.Error("expected !ok for missing key")
	}
}

func TestValueTypeString(t *testing.T) {
	t.Parallel()

	if got := TypeUint32.String(); got != "u32" {
		t.Errorf("got %q", got)
	}
	if got := TypeArray.String(); got != "array" {
		t.Errorf("got %q", got)
	}
	if got := ValueType(99).String(); got != "type(99)" {
		t.Errorf("got %q", got)
	}
	if ValueType(13).Valid() {
		t.Error("13 should not be valid")
	}
	if !ValueType(12).Valid() {
		t.Error("12 should be valid")
	}
}
