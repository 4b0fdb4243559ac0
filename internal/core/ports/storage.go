package ports

import (
	"context"
	"io"
)

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Field    string
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// FileStorage stores uploaded files and hands back a reference that clients
// can resolve (a URL or path). Delete accepts a reference returned by Save.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}
