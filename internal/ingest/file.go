package ingest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// File is a selected input file.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// PathFile is a file on disk.
type PathFile string

func (p PathFile) Name() string {
	return filepath.Base(string(p))
}

func (p PathFile) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

type bytesFile struct {
	name string
	data []byte
}

// BytesFile wraps already-received content, e.g. an HTTP upload.
func BytesFile(name string, data []byte) File {
	return bytesFile{name: name, data: data}
}

func (f bytesFile) Name() string {
	return f.name
}

func (f bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
