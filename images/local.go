package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
)

// LocalStore writes uploads into Dir, which the router serves under URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{Dir: dir, URLPrefix: urlPrefix}
}

func (s *LocalStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := checkType(file); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uniqueName(file.Filename)
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if err := writeFile(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path.Join(s.URLPrefix, name), nil
}

// writeFile copies src into dst and closes dst, reporting either failure.
func writeFile(dst io.WriteCloser, src io.Reader) error {
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// Remove deletes a file previously returned by Save.
func (s *LocalStore) Remove(ctx context.Context, url string) error {
	err := os.Remove(filepath.Join(s.Dir, path.Base(url)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", url, err)
	}
	return nil
}
