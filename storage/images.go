package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/disintegration/imaging"
)

var ErrInvalidImage = errors.New("storage: file is not a supported image")

// ImageUploader validates uploads by decoding them, re-encodes them (which
// drops EXIF metadata) and caps their size before handing them to a Store.
type ImageUploader struct {
	store  Store
	maxDim int
}

func NewImageUploader(store Store, maxDim int) *ImageUploader {
	return &ImageUploader{store: store, maxDim: maxDim}
}

func (u *ImageUploader) SaveImage(ctx context.Context, originalName string, r io.Reader) (string, error) {
	format, err := imaging.FormatFromFilename(originalName)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidImage, originalName)
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if u.maxDim > 0 && (b.Dx() > u.maxDim || b.Dy() > u.maxDim) {
		img = imaging.Fit(img, u.maxDim, u.maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("storage: encode image: %w", err)
	}
	return u.store.Save(ctx, originalName, &buf)
}

func (u *ImageUploader) SaveUpload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer f.Close()
	return u.SaveImage(ctx, fh.Filename, f)
}

// SaveUploads stores every file or none of them: on failure the files
// already written are deleted again.
func (u *ImageUploader) SaveUploads(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := u.SaveUpload(ctx, fh)
		if err != nil {
			for _, n := range names {
				_ = u.store.Delete(ctx, n)
			}
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (u *ImageUploader) Delete(ctx context.Context, storedName string) error {
	return u.store.Delete(ctx, storedName)
}
