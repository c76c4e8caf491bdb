// Package storage keeps uploaded product images on local disk under a
// directory that the API serves at PublicPrefix.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const PublicPrefix = "/uploads/"

const (
	maxNameLen = 100
	maxExtLen  = 10
)

var (
	ErrUnsupportedType = errors.New("only png, jpeg, webp and gif images are accepted")
	ErrTooLarge        = errors.New("image exceeds the upload size limit")
	ErrEmptyFile       = errors.New("image is empty")
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImageStore persists product images and returns a public reference.
type ImageStore interface {
	SaveImage(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// LocalStore writes images to dir.
type LocalStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Dir returns the directory served for uploads.
func (s *LocalStore) Dir() string {
	return s.dir
}

// SaveImage sniffs the content, rejects non-images and writes the file as
// <unix millis>-<sanitized name>. The returned reference is the public path.
func (s *LocalStore) SaveImage(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeName(originalName, detected.Extension()))
	path := filepath.Join(s.dir, name)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}

// Delete removes a previously saved image. Unknown or foreign references are ignored.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := strings.CutPrefix(ref, PublicPrefix)
	if !ok || name == "" || name != filepath.Base(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func sanitizeName(original, fallbackExt string) string {
	base := filepath.Base(strings.TrimSpace(original))
	base = unsafeNameChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		base = "image" + fallbackExt
	}
	if len(base) <= maxNameLen {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if len(ext) > maxExtLen {
		ext = fallbackExt
	}
	if stem == "" {
		stem = "image"
	}
	if len(stem) > maxNameLen-len(ext) {
		stem = stem[:maxNameLen-len(ext)]
	}
	return stem + ext
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write upload: %w", err)
	}
	return f.Close()
}
