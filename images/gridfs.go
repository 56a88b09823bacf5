package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrImageNotFound = errors.New("image not found")

// GridFSStore keeps images in the database next to the users and comments.
// They are served by the app at URLPrefix/<id>.
type GridFSStore struct {
	bucket    *gridfs.Bucket
	URLPrefix string
}

func NewGridFSStore(db *mongo.Database, urlPrefix string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("profile_pics"))
	if err != nil {
		return nil, err
	}
	return &GridFSStore{bucket: bucket, URLPrefix: urlPrefix}, nil
}

func (s *GridFSStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := checkType(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(deadline); err != nil {
			return "", err
		}
	}

	id, err := s.bucket.UploadFromStream(uniqueName(file.Filename), src)
	if err != nil {
		return "", fmt.Errorf("upload to gridfs: %w", err)
	}
	return path.Join(s.URLPrefix, id.Hex()), nil
}

func (s *GridFSStore) Remove(ctx context.Context, url string) error {
	fileID, err := primitive.ObjectIDFromHex(path.Base(url))
	if err != nil {
		return ErrImageNotFound
	}
	err = s.bucket.DeleteContext(ctx, fileID)
	if err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("delete from gridfs: %w", err)
	}
	return nil
}

// Open returns the stored image and its content type.
func (s *GridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	fileID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, "", ErrImageNotFound
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetReadDeadline(deadline); err != nil {
			return nil, "", err
		}
	}

	stream, err := s.bucket.OpenDownloadStream(fileID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(stream.GetFile().Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return stream, contentType, nil
}
