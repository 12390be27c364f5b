package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var (
	ErrMissingExtension = errors.New("image file extension is required")
	ErrUnsupportedType  = errors.New("unsupported image type")
	ErrTooLarge         = errors.New("image file too large (max 5MB)")
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
}

// Stager writes uploaded images into a local temp directory before they are
// pushed to object storage.
type Stager struct {
	dir string
}

func NewStager(dir string) *Stager {
	return &Stager{dir: dir}
}

// Validate checks the extension and size of an uploaded image.
func Validate(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		return "", ErrMissingExtension
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if file.Size > MaxImageSize {
		return "", ErrTooLarge
	}
	return ext, nil
}

// Stage copies file into the temp directory and returns the local path.
// The caller owns the file; Uploader.Upload removes it.
func (s *Stager) Stage(file *multipart.FileHeader) (string, error) {
	ext, err := Validate(file)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir %s: %w", s.dir, err)
	}

	fullPath := filepath.Join(s.dir, uuid.NewString()+ext)
	out, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}

	in, err := file.Open()
	if err != nil {
		out.Close()
		os.Remove(fullPath)
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(fullPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(fullPath)
		return "", err
	}
	return fullPath, nil
}
