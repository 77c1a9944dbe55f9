package api

import "github.com/erikkrieg/gguf/pkg/gguf"

// arraySummaryThreshold is the element count above which array values are
// summarised instead of inlined, unless the client asks for ?full=1.
// Tokenizer vocabularies routinely run to six figures.
const arraySummaryThreshold = 64

type ModelSummary struct {
	Name         string `json:"name"`
	SizeBytes    int64  `json:"size_bytes"`
	Version      uint32 `json:"version,omitempty"`
	Architecture string `json:"architecture,omitempty"`
	Error        string `json:"error,omitempty"`
}

type ModelListResponse struct {
	Models []ModelSummary `json:"models"`
}

type HeaderResponse struct {
	Name          string `json:"name"`
	Version       uint32 `json:"version"`
	TensorCount   uint64 `json:"tensor_count"`
	MetadataCount int    `json:"metadata_count"`
	HeaderSize    int64  `json:"header_size_bytes"`
	Architecture  string `json:"architecture,omitempty"`
	ModelName     string `json:"model_name,omitempty"`
	ContextLength uint64 `json:"context_length,omitempty"`
}

type MetadataEntryDTO struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type MetadataResponse struct {
	Name     string             `json:"name"`
	Metadata []MetadataEntryDTO `json:"metadata"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func metadataDTO(h *gguf.Header, full bool) []MetadataEntryDTO {
	out := make([]MetadataEntryDTO, 0, len(h.Metadata))
	for _, e := range h.Metadata {
		out = append(out, MetadataEntryDTO{
			Key:   e.Key,
			Type:  e.Type().String(),
			Value: valueJSON(e.Value, full),
		})
	}
	return out
}

// valueJSON converts a decoded value into a JSON-friendly shape. Large
// arrays collapse to a summary so a tokenizer vocabulary does not dominate
// every response.
func valueJSON(v gguf.Value, full bool) any {
	arr, ok := v.Value.(gguf.ArrayValue)
	if !ok {
		return v.Value
	}
	if !full && len(arr.Values) > arraySummaryThreshold {
		return map[string]any{
			"elem_type": arr.ElemType.String(),
			"len":       len(arr.Values),
			"truncated": true,
		}
	}
	values := make([]any, 0, len(arr.Values))
	for _, item := range arr.Values {
		if nested, ok := item.(gguf.ArrayValue); ok {
			values = append(values, valueJSON(gguf.Value{Type: gguf.TypeArray, Value: nested}, full))
			continue
		}
		values = append(values, item)
	}
	return map[string]any{
		"elem_type": arr.ElemType.String(),
		"values":    values,
	}
}
