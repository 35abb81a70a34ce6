// Package media stores uploaded avatars on an afero filesystem and serves
// them over HTTP.
package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const URLPrefix = "/media/"

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Store struct {
	fs       afero.Fs
	origin   string
	maxBytes int64
}

// NewStore serves files from fs; origin is prepended to URLs and maxBytes
// caps uploads.
func NewStore(fs afero.Fs, origin string, maxBytes int64) *Store {
	return &Store{fs: fs, origin: strings.TrimRight(origin, "/"), maxBytes: maxBytes}
}

// NewDiskStore roots the store at dir on the local filesystem.
func NewDiskStore(dir, origin string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), dir), origin, maxBytes), nil
}

// SaveAvatar writes an image read from r and returns its key.
// The content type is sniffed from the data, not trusted from the client.
func (s *Store) SaveAvatar(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", ErrUnsupportedType
	}

	key := path.Join("avatars", uuid.NewString()+ext)
	if err := s.fs.MkdirAll("/avatars", 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, fsPath(key), data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}
	return key, nil
}

// Delete removes key. A missing file is not an error.
func (s *Store) Delete(key string) error {
	if key == "" {
		return nil
	}
	if err := s.fs.Remove(fsPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns the absolute URL for key, or "" for an empty key.
func (s *Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.origin + URLPrefix + key
}

// Handler serves stored files under URLPrefix. Directories are not listed.
func (s *Store) Handler() http.Handler {
	files := filesOnly{afero.NewHttpFs(s.fs).Dir("/")}
	return http.StripPrefix(strings.TrimSuffix(URLPrefix, "/"), http.FileServer(files))
}

// filesOnly reports directories as missing so keys cannot be enumerated.
type filesOnly struct {
	http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// fsPath roots key so that every afero backend resolves it the same way.
func fsPath(key string) string {
	return "/" + strings.TrimPrefix(key, "/")
}
