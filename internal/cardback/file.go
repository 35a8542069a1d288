package cardback

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// File is a candidate card-back image.
type File struct {
	Name     string
	MIMEType string
	open     func() (io.ReadCloser, error)
}

// NewFile describes a file whose content is produced by open.
func NewFile(name, mimeType string, open func() (io.ReadCloser, error)) *File {
	return &File{Name: name, MIMEType: mimeType, open: open}
}

// FileFromBytes wraps in-memory content. The MIME type is sniffed.
func FileFromBytes(name string, data []byte) *File {
	return NewFile(name, mimetype.Detect(data).String(), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// FileFromPath describes a file on disk, sniffing its MIME type from the
// content rather than the extension.
func FileFromPath(path string) (*File, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("cardback: cannot inspect %s: %w", path, err)
	}
	return NewFile(filepath.Base(path), mtype.String(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// Open returns the file content.
func (f *File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("no content for %s", f.Name)
	}
	return f.open()
}
