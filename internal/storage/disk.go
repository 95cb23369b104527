package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
)

// DiskStore keeps blobs as plain files under Root. Keys use forward
// slashes; the gin static route serves the same tree under /files.
type DiskStore struct {
	Root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{Root: root}
}

func (s *DiskStore) Upload(ctx context.Context, key string, r io.Reader, overwrite bool) (string, error) {
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !overwrite {
		if _, err := os.Stat(full); err == nil {
			return "", ErrKeyExists
		}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return key, nil
}

func (s *DiskStore) PublicURL(key string) string {
	return "/files/" + key
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Remove(full)
}

// resolve rejects keys that would escape Root. A key is valid when its
// rooted form is already clean: traversal elements get rewritten by
// path.Clean, so any difference means the key tried to climb out.
// Dots inside a filename (sortie..gpx) survive Clean and stay valid.
func (s *DiskStore) resolve(key string) (string, error) {
	rooted := "/" + key
	if clean := path.Clean(rooted); clean == "/" || clean != rooted {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.Root, filepath.FromSlash(key)), nil
}
