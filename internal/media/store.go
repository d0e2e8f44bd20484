// Package media persists user-supplied images (message attachments and
// profile pictures) on local disk and serves them back over HTTP.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	URLPrefix    = "/media/"
	MaxImageSize = 8 << 20
)

var ErrInvalidImage = errors.New("invalid_image")

var extByFormat = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// SaveDataURL decodes a base64 "data:image/...;base64," URL, checks that the
// payload is an image and writes it under Dir. It returns the public URL path.
func (s *Store) SaveDataURL(ctx context.Context, dataURL string) (string, error) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	ext, ok := extByFormat[format]
	if !ok {
		return "", fmt.Errorf("%w: unsupported format %s", ErrInvalidImage, format)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	filename := uuid.NewString() + ext
	tmpFile, err := os.CreateTemp(s.Dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	cleanup := func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}
	if _, err := tmpFile.Write(raw); err != nil {
		cleanup()
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close media file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filepath.Join(s.Dir, filename)); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", fmt.Errorf("store media file: %w", err)
	}
	_ = os.Chmod(filepath.Join(s.Dir, filename), 0o644)

	return URLPrefix + filename, nil
}

// Handler serves stored files under URLPrefix. Directory listings are refused.
func (s *Store) Handler() http.Handler {
	fs := http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.Dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, URLPrefix)
		if name == "" || strings.HasSuffix(name, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	})
}

func decodeDataURL(dataURL string) ([]byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return nil, fmt.Errorf("%w: expected a data url", ErrInvalidImage)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data url", ErrInvalidImage)
	}
	if !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: expected base64 image data", ErrInvalidImage)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize {
		return nil, fmt.Errorf("%w: image too large", ErrInvalidImage)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64", ErrInvalidImage)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	return raw, nil
}
