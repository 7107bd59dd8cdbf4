package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat/internal/service"
)

type DocumentHandler struct {
	docs      *service.DocumentService
	chat      *service.ChatService
	ingest    *service.IngestService
	uploadDir string
}

func NewDocumentHandler(docs *service.DocumentService, chat *service.ChatService, ingest *service.IngestService, uploadDir string) *DocumentHandler {
	return &DocumentHandler{docs: docs, chat: chat, ingest: ingest, uploadDir: uploadDir}
}

// List returns all successfully embedded PDFs.
func (h *DocumentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pdfs": h.docs.List()})
}

// Delete removes a PDF's vectors and its file. Idempotent.
func (h *DocumentHandler) Delete(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if err := h.docs.Delete(c.Request.Context(), filename); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Download serves a PDF from the uploads directory.
func (h *DocumentHandler) Download(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	path := filepath.Join(h.uploadDir, filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found."})
		return
	}
	c.FileAttachment(path, filename)
}

type MergeRequest struct {
	Filenames  []string `json:"filenames"`
	OutputName string   `json:"output_name"`
}

// Merge concatenates two or more PDFs by page order and embeds the result.
func (h *DocumentHandler) Merge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Filenames) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least 2 filenames required."})
		return
	}

	outputPath, err := service.MergePDFs(h.uploadDir, req.Filenames, req.OutputName)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go h.ingest.Ingest(context.Background(), outputPath)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Merge complete. Embedding in progress.",
		"filename": filepath.Base(outputPath),
	})
}

type TranslateRequest struct {
	Filename string `json:"filename"`
	Language string `json:"language"`
}

// Translate streams a translation of a PDF to the requested language.
func (h *DocumentHandler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Filename) == "" || strings.TrimSpace(req.Language) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and language are required."})
		return
	}

	setStreamHeaders(c)

	events := h.chat.StreamTranslate(c.Request.Context(), filepath.Base(req.Filename), req.Language)
	for event := range events {
		writeEvent(c, event)
	}
	writeDone(c)
}
