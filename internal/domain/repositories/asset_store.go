package repositories

import (
	"context"
	"errors"
	"io"
)

// ErrAssetNotFound is returned when an asset key does not exist
var ErrAssetNotFound = errors.New("asset not found")

// AssetStore gives read and write access to static assets such as fonts,
// logos and stylesheets. Keys are slash-separated paths relative to the
// store root, e.g. "fonts/Vazirmatn-Regular.ttf".
type AssetStore interface {
	// List returns every key under prefix, recursively
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether key is present
	Exists(ctx context.Context, key string) (bool, error)

	// Read returns the content of key, or ErrAssetNotFound
	Read(ctx context.Context, key string) ([]byte, error)

	// Put stores size bytes from r under key
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}
