package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"

	gcs "cloud.google.com/go/storage"
)

// GCSStore keeps files in a Cloud Storage bucket using the same bucketed
// layout as LocalStore, below the "images/" prefix.
type GCSStore struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCSStore uses application default credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, prefix: "images"}, nil
}

func (s *GCSStore) object(storedName string) (*gcs.ObjectHandle, error) {
	rel, err := BucketPath(storedName)
	if err != nil {
		return nil, err
	}
	return s.client.Bucket(s.bucket).Object(path.Join(s.prefix, rel)), nil
}

func (s *GCSStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	name := NewStoredName(originalName)
	obj, err := s.object(name)
	if err != nil {
		return "", err
	}

	w := obj.If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(path.Ext(name))
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("storage: gcs write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: gcs close: %w", err)
	}
	return name, nil
}

func (s *GCSStore) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	obj, err := s.object(storedName)
	if err != nil {
		return nil, err
	}
	rc, err := obj.NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotExist
	}
	return rc, err
}

func (s *GCSStore) Delete(ctx context.Context, storedName string) error {
	if storedName == "" {
		return nil
	}
	obj, err := s.object(storedName)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: gcs delete: %w", err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
