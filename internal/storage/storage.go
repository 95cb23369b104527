// Package storage holds the blob-store abstraction raw track files are
// written to. The interface mirrors the hosted-storage collaborator the
// service talks to (upload, public URL, delete); the disk implementation
// backs it for self-hosted deployments.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrKeyExists is returned by Upload when the key is already taken
	// and overwrite was not requested.
	ErrKeyExists = errors.New("storage key already exists")
	// ErrInvalidKey is returned for keys that escape the store root or
	// are empty.
	ErrInvalidKey = errors.New("invalid storage key")
)

type BlobStore interface {
	// Upload stores content under key and returns the key actually used.
	Upload(ctx context.Context, key string, r io.Reader, overwrite bool) (string, error)
	// PublicURL maps a stored key to the URL clients download it from.
	PublicURL(key string) string
	// Delete removes a stored object. Used by the ingest compensation
	// path when a later step fails after the upload succeeded.
	Delete(ctx context.Context, key string) error
}
