// Package imagestore persists node images and hands back URLs the rendering
// surface can load.
package imagestore

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/matsen/relgraph/internal/logger"
)

// ErrEmpty is returned when asked to store an empty image.
var ErrEmpty = errors.New("empty image")

// Uploader stores image bytes for a node and returns a URL for them.
type Uploader interface {
	Upload(ctx context.Context, nodeID, filename string, body []byte) (string, error)
}

// objectName builds "<nodeID>/<random><ext>", with nodeID escaped so it is a
// single safe path segment.
func objectName(nodeID, filename string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	segment := url.PathEscape(nodeID)
	if segment == "" || segment == "." || segment == ".." {
		segment = "_"
	}
	return segment + "/" + id + strings.ToLower(path.Ext(filename)), nil
}

type fallback struct {
	primary Uploader
	local   Uploader
}

// WithFallback returns an Uploader that tries primary and, if it fails,
// stores the image with local instead. A nil primary yields local.
func WithFallback(primary, local Uploader) Uploader {
	if primary == nil {
		return local
	}
	return &fallback{primary: primary, local: local}
}

func (f *fallback) Upload(ctx context.Context, nodeID, filename string, body []byte) (string, error) {
	u, err := f.primary.Upload(ctx, nodeID, filename, body)
	if err == nil {
		return u, nil
	}
	logger.Warn("image upload failed, using local store", "node", nodeID, "error", err)
	return f.local.Upload(ctx, nodeID, filename, body)
}
