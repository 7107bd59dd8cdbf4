package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat/internal/service"
)

type UploadHandler struct {
	ingest    *service.IngestService
	registry  *service.Registry
	uploadDir string
	maxSize   int64
}

func NewUploadHandler(ingest *service.IngestService, registry *service.Registry, uploadDir string, maxSize int64) *UploadHandler {
	return &UploadHandler{ingest: ingest, registry: registry, uploadDir: uploadDir, maxSize: maxSize}
}

// Upload saves the PDF and kicks off embedding in the background. The
// response returns before ingestion completes; progress is polled via Status.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pdf file is required"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are accepted."})
		return
	}
	if h.maxSize > 0 && header.Size > h.maxSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is too large."})
		return
	}

	filename := filepath.Base(header.Filename)
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	path := filepath.Join(h.uploadDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	dst.Close()

	// Detached from the request lifecycle on purpose.
	go h.ingest.Ingest(context.Background(), path)

	c.JSON(http.StatusOK, gin.H{
		"message":  "File uploaded. Embedding is in progress.",
		"filename": filename,
	})
}

// Status polls the embedding status for a previously uploaded PDF.
func (h *UploadHandler) Status(c *gin.Context) {
	filename := strings.TrimSpace(c.Query("filename"))
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename": filename,
		"status":   h.registry.Status(filename),
	})
}
