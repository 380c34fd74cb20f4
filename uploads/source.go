package uploads

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/uuid"
)

// Source yields the bytes of a queued file. Release is called once the item
// is terminal.
type Source interface {
	Open() (io.ReadCloser, error)
	Release() error
}

// Submission is one file handed to the queue.
type Submission struct {
	Name        string
	Size        int64
	ContentType string
	Source      Source
}

// TempFile is a Source backed by a spooled file on local disk.
type TempFile struct {
	path string
}

// Spool copies r into a new file under dir and returns it with the number of
// bytes written.
func Spool(dir string, r io.Reader) (*TempFile, int64, error) {
	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, 0, fmt.Errorf("spool upload: %w", err)
	}
	return &TempFile{path: f.Name()}, n, nil
}

func (t *TempFile) Open() (io.ReadCloser, error) {
	return os.Open(t.path)
}

func (t *TempFile) Release() error {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// StorageName returns a fresh object name for an original file name,
// keeping its extension: "report.pdf" -> "<uuid>.pdf".
func StorageName(original string) string {
	return uuid.NewString() + path.Ext(original)
}

// StoragePath places name under the uploads prefix.
func StoragePath(name string) string {
	return Prefix + name
}

// Prefix is where uploaded objects live in the bucket.
const Prefix = "uploads/"
