package blob

import (
	"context"
	"io"
	"path"
	"strings"
)

// Store is the object-storage boundary for profile media. Upload
// returns the public URL of the stored object; Delete removes an
// object by its storage key.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// KeyFromURL derives the storage key from a stored media URL: the
// final path segment with any extension stripped.
func KeyFromURL(url string) string {
	name := path.Base(url)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
