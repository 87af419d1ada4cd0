package storage

import "context"

// Uploader pushes a local file to object storage and returns a stable public
// URL for it. An empty URL is never returned without an error.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
