// Package storage is the object-storage collaborator of the catalog: file
// bytes live in a bucket under their storage path, separate from metadata.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// ObjectStorage is the subset of object-storage operations the catalog uses.
type ObjectStorage interface {
	// Put stores r at path. filename is the name browsers save the object as.
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType, filename string) error
	// DownloadURL returns a URL that downloads the object as filename.
	DownloadURL(ctx context.Context, path, filename string) (string, error)
	Remove(ctx context.Context, paths []string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
