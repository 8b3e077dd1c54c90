package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBucketPath(t *testing.T) {
	cases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "ab1234.jpg", want: "a/b/ab1234.jpg"},
		{name: "3f2c.png", want: "3/f/3f2c.png"},
		{name: "a", wantErr: true},
		{name: "", wantErr: true},
		{name: "../etc/passwd", wantErr: true},
		{name: "ab/cd.jpg", wantErr: true},
		{name: `ab\cd.jpg`, wantErr: true},
		{name: ".hidden", wantErr: true},
	}
	for _, tc := range cases {
		got, err := BucketPath(tc.name)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidName) {
				t.Errorf("BucketPath(%q): expected ErrInvalidName, got %q, %v", tc.name, got, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("BucketPath(%q) = %q, %v; want %q", tc.name, got, err, tc.want)
		}
	}
}

func TestPublicURL(t *testing.T) {
	if got := PublicURL("ab1234.jpg"); got != "/uploads/images/a/b/ab1234.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := PublicURL("x"); got != "" {
		t.Fatalf("expected empty url for invalid name, got %q", got)
	}
}

func TestNewStoredNameKeepsOnlySaneExtensions(t *testing.T) {
	if got := NewStoredName("Photo.JPG"); !strings.HasSuffix(got, ".jpg") || len(got) != 36+4 {
		t.Fatalf("unexpected stored name %q", got)
	}
	if got := NewStoredName("weird.p/hp"); strings.Contains(got, "/") {
		t.Fatalf("stored name must not contain a slash: %q", got)
	}
	if got := NewStoredName("noext"); len(got) != 36 {
		t.Fatalf("expected bare uuid, got %q", got)
	}
}

func TestLocalStoreSaveOpenDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)
	ctx := context.Background()

	name, err := store.Save(ctx, "cat.txt", strings.NewReader("meow"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	rel, _ := BucketPath(name)
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("file not written at bucketed path: %v", err)
	}

	rc, err := store.Open(ctx, name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "meow" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Open(ctx, name); !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageUploaderFitsLargeImages(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	uploader := NewImageUploader(store, 64)
	ctx := context.Background()

	name, err := uploader.SaveImage(ctx, "big.png", bytes.NewReader(pngBytes(t, 256, 128)))
	if err != nil {
		t.Fatalf("save image: %v", err)
	}
	rc, err := store.Open(ctx, name)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		t.Fatalf("stored file is not an image: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 32 {
		t.Fatalf("expected 64x32, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestImageUploaderRejectsNonImages(t *testing.T) {
	uploader := NewImageUploader(NewLocalStore(t.TempDir()), 0)
	ctx := context.Background()

	if _, err := uploader.SaveImage(ctx, "notes.txt", strings.NewReader("hello")); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for extension, got %v", err)
	}
	if _, err := uploader.SaveImage(ctx, "fake.png", strings.NewReader("hello")); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for content, got %v", err)
	}
}

func TestBackupRunOnceCopiesAndPrunes(t *testing.T) {
	src := t.TempDir()
	backups := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a", "b", "ab.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	stale := filepath.Join(backups, "old")
	if err := os.Mkdir(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-10 * 24 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	b := NewBackupScheduler(src, backups, 4*24*time.Hour, 2, 0)
	dest, err := b.RunOnce()
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "a", "b", "ab.jpg")); err != nil {
		t.Fatalf("file not copied: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale backup should be pruned, stat err = %v", err)
	}
}

func TestBackupNextRun(t *testing.T) {
	b := NewBackupScheduler("", "", time.Hour, 2, 0)
	before := time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)
	if got := b.nextRun(before); !got.Equal(time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next run %v", got)
	}
	after := time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC)
	if got := b.nextRun(after); !got.Equal(time.Date(2026, 1, 2, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next run %v", got)
	}
}
