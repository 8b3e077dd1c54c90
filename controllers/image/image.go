package imageControllers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/storage"
)

// ServeImage streams a stored file. URL: /uploads/images/:a/:b/:name, where
// :a and :b must be the bucket folders of :name.
func ServeImage(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		want, err := storage.BucketPath(name)
		if err != nil || want != path.Join(c.Param("a"), c.Param("b"), name) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}

		rc, err := store.Open(c.Request.Context(), name)
		if errors.Is(err, storage.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		if err != nil {
			logger.Error("failed to open image", map[string]any{"file": name, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
			return
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Header("Content-Type", contentType)
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, rc); err != nil {
			logger.Error("image stream interrupted", map[string]any{"file": name, "error": err})
		}
	}
}
