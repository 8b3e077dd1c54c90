package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL prefix stored images are served under.
const PublicPrefix = "/uploads/images"

var (
	ErrNotExist    = errors.New("storage: file does not exist")
	ErrInvalidName = errors.New("storage: invalid stored name")
)

// Store persists uploaded files under generated names. Writes are not
// coordinated with the database: a crash between Save and the row commit
// leaves an orphaned file behind.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)
	Delete(ctx context.Context, storedName string) error
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// NewStoredName returns "<uuid><ext>" keeping a sane extension of the
// original file name.
func NewStoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// BucketPath spreads files over two directory levels taken from the first
// two characters of the stored name: "ab12.jpg" -> "a/b/ab12.jpg".
func BucketPath(storedName string) (string, error) {
	if len(storedName) < 2 ||
		strings.ContainsAny(storedName, `/\`) ||
		strings.Contains(storedName, "..") ||
		strings.HasPrefix(storedName, ".") {
		return "", ErrInvalidName
	}
	return path.Join(storedName[0:1], storedName[1:2], storedName), nil
}

// PublicURL returns the URL an image is served from, or "" for a name
// that could never have been stored.
func PublicURL(storedName string) string {
	p, err := BucketPath(storedName)
	if err != nil {
		return ""
	}
	return PublicPrefix + "/" + p
}
