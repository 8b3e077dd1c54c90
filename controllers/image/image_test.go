package imageControllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/storage"
)

func setup(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := storage.NewLocalStore(t.TempDir())
	name, err := store.Save(context.Background(), "photo.png", bytes.NewReader([]byte("png-bytes")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	r := gin.New()
	r.GET("/uploads/images/:a/:b/:name", ServeImage(store))
	return r, name
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestServeImage(t *testing.T) {
	r, name := setup(t)

	w := get(r, storage.PublicURL(name))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "png-bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
}

func TestServeImageRejectsWrongBucket(t *testing.T) {
	r, name := setup(t)

	w := get(r, "/uploads/images/z/z/"+name)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestServeImageMissingFile(t *testing.T) {
	r, _ := setup(t)

	w := get(r, "/uploads/images/a/b/ab000000.png")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
