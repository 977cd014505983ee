package imagestore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// LocalStore writes images below a directory and returns file:// URLs.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving image directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

// Dir returns the absolute root directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Upload implements Uploader.
func (s *LocalStore) Upload(ctx context.Context, nodeID, filename string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", ErrEmpty
	}

	name, err := objectName(nodeID, filename)
	if err != nil {
		return "", fmt.Errorf("generating image name: %w", err)
	}
	dest := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dest)}
	return u.String(), nil
}
