package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/erikkrieg/gguf/pkg/gguf"
)

var ErrModelNotFound = errors.New("model not found")

// Catalog serves decoded headers for the .gguf files in one directory.
// Headers are cached per file and invalidated when the file's size or
// mtime changes. Decoding itself is stateless, so concurrent requests for
// different files only contend on the cache map.
type Catalog struct {
	dir string

	mu    sync.Mutex
	cache map[string]cachedHeader
}

type cachedHeader struct {
	modTime    time.Time
	size       int64
	header     *gguf.Header
	headerSize int64
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir:   dir,
		cache: make(map[string]cachedHeader),
	}
}

// ModelFile is one decodable entry in the catalog directory.
type ModelFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// List returns the .gguf files in the catalog directory, without decoding
// them. Callers that need header fields ask for each model individually.
func (c *Catalog) List() ([]ModelFile, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read models dir: %w", err)
	}
	var out []ModelFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".gguf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, ModelFile{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// Header returns the decoded header for the named model, from cache when the
// file is unchanged. The name must be a bare .gguf file name; paths escaping
// the catalog directory are rejected as not found.
func (c *Catalog) Header(name string) (*gguf.Header, int64, error) {
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(strings.ToLower(name), ".gguf") {
		return nil, 0, ErrModelNotFound
	}
	path := filepath.Join(c.dir, name)

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrModelNotFound
		}
		return nil, 0, err
	}

	c.mu.Lock()
	cached, ok := c.cache[name]
	c.mu.Unlock()
	if ok && cached.size == stat.Size() && cached.modTime.Equal(stat.ModTime()) {
		return cached.header, cached.headerSize, nil
	}

	f, err := gguf.Open(path)
	if err != nil {
		return nil, 0, err
	}
	// The decoded header owns all its memory, so the mapping can go away.
	hdr, hdrSize := f.Header, f.HeaderSize
	_ = f.Close()

	c.mu.Lock()
	c.cache[name] = cachedHeader{
		modTime:    stat.ModTime(),
		size:       stat.Size(),
		header:     hdr,
		headerSize: hdrSize,
	}
	c.mu.Unlock()

	return hdr, hdrSize, nil
}
