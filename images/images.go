// Package images stores uploaded profile pictures and returns the URL they
// are served from.
package images

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidType = errors.New("invalid image type")

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

type Store interface {
	// Save persists the upload and returns the URL it will be served from.
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// Opener is implemented by stores that serve their images through the app
// rather than from a static directory or a CDN.
type Opener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
}

// Remover is implemented by stores that can delete an image they saved,
// given the URL Save returned.
type Remover interface {
	Remove(ctx context.Context, url string) error
}

// AllowedFile reports whether filename carries one of the accepted image
// extensions, ignoring case.
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename reduces an uploaded name to a safe base name: no directory
// parts, ASCII letters, digits, '_', '-', '.' only, no leading dots.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" || name == "." {
		return ""
	}
	return name
}

// uniqueName prefixes the secured name with a uuid so uploads from
// different users never overwrite each other.
func uniqueName(original string) string {
	name := SecureFilename(original)
	if name == "" {
		name = "upload" + strings.ToLower(filepath.Ext(original))
	}
	return uuid.NewString() + "_" + name
}

func checkType(file *multipart.FileHeader) error {
	if file == nil || !AllowedFile(file.Filename) {
		return ErrInvalidType
	}
	return nil
}
