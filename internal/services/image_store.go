package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	maxImageCount = 10
	maxImageSize  = 10 * 1024 * 1024
)

var (
	ErrTooManyImages    = errors.New("a maximum of 10 images can be uploaded")
	ErrImageTooLarge    = errors.New("each image must be smaller than 10MB")
	ErrUnsupportedImage = errors.New("only image files are allowed")
)

// ImageStore writes uploaded image files to a server-local directory and
// hands back the web paths under which they are served.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// Save validates all files before writing any of them, then stores each
// under a collision-resistant name. On a write failure the files saved so
// far are removed. Returned paths preserve upload order.
func (s *ImageStore) Save(files []*multipart.FileHeader) ([]string, error) {
	if len(files) > maxImageCount {
		return nil, ErrTooManyImages
	}

	for _, f := range files {
		if f.Size > maxImageSize {
			return nil, ErrImageTooLarge
		}
		if !strings.HasPrefix(f.Header.Get("Content-Type"), "image/") {
			return nil, ErrUnsupportedImage
		}
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeFilename(f.Filename))
		if err := fasthttp.SaveMultipartFile(f, filepath.Join(s.dir, name)); err != nil {
			s.Remove(paths)
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		paths = append(paths, "/uploads/"+name)
	}

	return paths, nil
}

// Remove deletes previously saved images, best effort.
func (s *ImageStore) Remove(webPaths []string) {
	for _, p := range webPaths {
		os.Remove(filepath.Join(s.dir, path.Base(p)))
	}
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload"
	}
	return strings.ReplaceAll(name, " ", "_")
}
