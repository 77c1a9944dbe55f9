package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/erikkrieg/gguf/pkg/gguf"
)

func inspectCmd() *cli.Command {
	var (
		showKV  bool
		asJSON  bool
		onlyKey string
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode and print a model file's header",
		ArgsUsage: "<path.gguf>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "kv",
				Usage:       "print all metadata key/values",
				Destination: &showKV,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the full header as JSON",
				Destination: &asJSON,
			},
			&cli.StringFlag{
				Name:        "key",
				Usage:       "print a single metadata value",
				Destination: &onlyKey,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return errors.New("usage: gguf inspect [--kv] [--json] [--key K] <path.gguf>")
			}
			path := cmd.Args().First()

			f, err := gguf.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			if onlyKey != "" {
				v, ok := f.Header.Get(onlyKey)
				if !ok {
					return fmt.Errorf("key not found: %s", onlyKey)
				}
				fmt.Println(formatValue(v))
				return nil
			}

			if asJSON {
				return printJSON(os.Stdout, path, f)
			}

			fmt.Printf("File: %s\n", path)
			fmt.Printf("GGUF v%d | tensors=%d | kv=%d | header=%d bytes\n",
				f.Header.Version, f.Header.TensorCount, len(f.Header.Metadata), f.HeaderSize)

			printKey(f.Header, "general.name")
			printKey(f.Header, "general.architecture")
			printKey(f.Header, "general.quantization")
			printKey(f.Header, "general.file_type")
			printKey(f.Header, "tokenizer.ggml.model")
			printKey(f.Header, "tokenizer.ggml.bos_token_id")
			printKey(f.Header, "tokenizer.ggml.eos_token_id")

			if arch := f.Header.Architecture(); arch != "" {
				fmt.Println()
				fmt.Println("Model params:")
				printKey(f.Header, arch+".block_count")
				printKey(f.Header, arch+".embedding_length")
				printKey(f.Header, arch+".attention.head_count")
				printKey(f.Header, arch+".attention.head_count_kv")
				printKey(f.Header, arch+".context_length")
				printKey(f.Header, arch+".vocab_size")
			}

			if showKV {
				fmt.Println()
				fmt.Println("All metadata:")
				for _, e := range f.Header.Metadata {
					fmt.Printf("  %s = %s\n", e.Key, formatValue(e.Value))
				}
			}
			return nil
		},
	}
}

func printKey(h *gguf.Header, key string) {
	if v, ok := h.Get(key); ok {
		fmt.Printf("  %-36s %s\n", key+":", formatValue(v))
	}
}

func formatValue(v gguf.Value) string {
	switch val := v.Value.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case gguf.ArrayValue:
		return fmt.Sprintf("array(%s) len=%d", val.ElemType.String(), len(val.Values))
	default:
		return fmt.Sprintf("%v", val)
	}
}

type jsonEntry struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type jsonHeader struct {
	File        string      `json:"file"`
	Version     uint32      `json:"version"`
	TensorCount uint64      `json:"tensor_count"`
	HeaderSize  int64       `json:"header_size_bytes"`
	Metadata    []jsonEntry `json:"metadata"`
}

func printJSON(w *os.File, path string, f *gguf.File) error {
	out := jsonHeader{
		File:        path,
		Version:     f.Header.Version,
		TensorCount: f.Header.TensorCount,
		HeaderSize:  f.HeaderSize,
		Metadata:    make([]jsonEntry, 0, len(f.Header.Metadata)),
	}
	for _, e := range f.Header.Metadata {
		out.Metadata = append(out.Metadata, jsonEntry{
			Key:   e.Key,
			Type:  e.Type().String(),
			Value: jsonValue(e.Value.Value),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// jsonValue unpacks nested arrays so the encoder sees plain slices.
func jsonValue(v any) any {
	arr, ok := v.(gguf.ArrayValue)
	if !ok {
		return v
	}
	values := make([]any, 0, len(arr.Values))
	for _, item := range arr.Values {
		values = append(values, jsonValue(item))
	}
	return map[string]any{
		"elem_type": arr.ElemType.String(),
		"values":    values,
	}
}
