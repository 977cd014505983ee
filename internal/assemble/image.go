package assemble

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

var errMalformedDataURI = errors.New("malformed data URI")

// storedImageSchemes are URL schemes kept as-is: remote images and the
// URLs the image stores hand out.
var storedImageSchemes = map[string]bool{"http": true, "https": true, "file": true, "s3": true}

// resolveImage returns the URL to store for a declared node image. Stored
// URLs pass through; inline data URIs are handed to the uploader and kept
// inline when no uploader is configured or the upload fails.
func (a *Assembler) resolveImage(ctx context.Context, nodeID, image string, res *Result) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}

	if !strings.HasPrefix(image, "data:") {
		u, err := url.Parse(image)
		if err != nil || !storedImageSchemes[strings.ToLower(u.Scheme)] {
			res.warn("node %q: ignoring image with unsupported URL %q", nodeID, image)
			return ""
		}
		return image
	}

	body, mediaType, err := decodeDataURI(image)
	if err != nil {
		res.warn("node %q: %v", nodeID, err)
		return ""
	}
	if a.uploader == nil {
		return image
	}

	uploaded, err := a.uploader.Upload(ctx, nodeID, "image"+extensionFor(mediaType), body)
	if err != nil {
		res.warn("node %q: image upload failed, keeping inline image: %v", nodeID, err)
		return image
	}
	return uploaded
}

// decodeDataURI decodes an RFC 2397 data URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", errMalformedDataURI
	}

	isBase64 := false
	if h, found := strings.CutSuffix(header, ";base64"); found {
		header, isBase64 = h, true
	}
	mediaType := "text/plain"
	if header != "" {
		mt, _, err := mime.ParseMediaType(header)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", errMalformedDataURI, err)
		}
		mediaType = mt
	}

	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", errMalformedDataURI, err)
		}
		return []byte(text), mediaType, nil
	}
	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errMalformedDataURI, err)
	}
	return body, mediaType, nil
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
