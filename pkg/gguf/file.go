package gguf

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// minHeaderSize is magic + version + tensor count + metadata count.
const minHeaderSize = 4 + 4 + 8 + 8

// File is a GGUF file with its header decoded. The underlying bytes stay
// mapped (or loaded) until Close so callers can locate the tensor section
// via HeaderSize without re-reading the file.
type File struct {
	Path   string
	Size   int64
	Header *Header

	// HeaderSize is the number of bytes the header decode consumed. Tensor
	// infos begin at this offset; this package does not parse them.
	HeaderSize int64

	data    []byte
	mmapped bool
}

// Open maps path read-only and decodes its header. If mmap is unavailable,
// it falls back to ReadAt-based loading. The returned file must be closed to
// release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size64 := stat.Size()
	if size64 < minHeaderSize {
		return nil, fmt.Errorf("%s: %w", path, ErrUnexpectedEOF)
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, fmt.Errorf("%s: file too large to map", path)
	}
	size := int(size64)

	data, err := unix.Mmap(
		int(f.Fd()),
		0,
		size,
		unix.PROT_READ,
		unix.MAP_SHARED,
	)
	if err == nil {
		gf, decodeErr := newFile(path, data, true)
		if decodeErr != nil {
			_ = unix.Munmap(data)
			return nil, decodeErr
		}
		return gf, nil
	}

	// Fallback path that does not require mmap support.
	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return newFile(path, data, false)
}

// OpenReaderAt decodes a GGUF header from a random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrUnexpectedEOF
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return newFile("", data, false)
}

func newFile(path string, data []byte, mmapped bool) (*File, error) {
	hdr, n, err := decodeHeader(data)
	if err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return &File{
		Path:       path,
		Size:       int64(len(data)),
		Header:     hdr,
		HeaderSize: int64(n),
		data:       data,
		mmapped:    mmapped,
	}, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrUnexpectedEOF
	}
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Close releases file resources and any mmap backing.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	if f.data != nil && f.mmapped {
		err := unix.Munmap(f.data)
		f.data = nil
		f.mmapped = false
		return err
	}
	f.data = nil
	f.mmapped = false
	return nil
}
