package gguf

import "fmt"

// Get returns the value for key. Metadata is ordered and may contain
// duplicate keys; the first occurrence in file order wins.
func (h *Header) Get(key string) (Value, bool) {
	for i := range h.Metadata {
		if h.Metadata[i].Key == key {
			return h.Metadata[i].Value, true
		}
	}
	return Value{}, false
}

func (h *Header) GetString(key string) (string, bool) {
	v, ok := h.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.Value.(string)
	return s, ok
}

func (h *Header) GetBool(key string) (bool, bool) {
	v, ok := h.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.Value.(bool)
	return b, ok
}

func (h *Header) GetUint64(key string) (uint64, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	return asUint64(v.Value)
}

func (h *Header) GetInt64(key string) (int64, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.Value.(type) {
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	default:
		return 0, false
	}
}

func (h *Header) GetFloat64(key string) (float64, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.Value.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

// GetArray retrieves the elements of an array value as a []T. It returns
// false if the key is missing, the value is not an array, or any element
// fails the type assertion.
func GetArray[T any](h *Header, key string) ([]T, bool) {
	v, ok := h.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.Value.(ArrayValue)
	if !ok {
		return nil, false
	}

	out := make([]T, 0, len(arr.Values))
	for _, item := range arr.Values {
		tItem, ok := item.(T)
		if !ok {
			return nil, false
		}
		out = append(out, tItem)
	}
	return out, true
}

func (h *Header) MustGetString(key string) (string, error) {
	if s, ok := h.GetString(key); ok {
		return s, nil
	}
	return "", fmt.Errorf("missing or invalid %s", key)
}

func (h *Header) MustGetUint64(key string) (uint64, error) {
	if v, ok := h.GetUint64(key); ok {
		return v, nil
	}
	return 0, fmt.Errorf("missing or invalid %s", key)
}

// Architecture returns the model architecture (e.g. "llama"), or "".
func (h *Header) Architecture() string {
	s, _ := h.GetString("general.architecture")
	return s
}

// Name returns the model name, or "".
func (h *Header) Name() string {
	s, _ := h.GetString("general.name")
	return s
}

// ContextLength returns the architecture-prefixed context length, or 0.
func (h *Header) ContextLength() uint64 {
	arch := h.Architecture()
	if arch == "" {
		return 0
	}
	v, _ := h.GetUint64(arch + ".context_length")
	return v
}

func asUint64(v any) (uint64, bool) {
	switch t := v.(type) {
	case uint8:
		return uint64(t), true
	case uint16:
		return uint64(t), true
	case uint32:
		return uint64(t), true
	case uint64:
		return t, true
	case int8:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case int16:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case int32:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case int64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	default:
		return 0, false
	}
}
