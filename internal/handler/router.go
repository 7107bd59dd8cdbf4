package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"docchat/internal/config"
	"docchat/internal/repository"
	"docchat/internal/service"
)

func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Health check endpoints
	r.GET("/health", healthCheck)
	r.GET("/ready", readinessCheck)
	r.GET("/live", livenessCheck)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "All Good!"})
	})

	// Repositories
	chunkRepo := repository.NewChunkRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Services
	registry := service.NewRegistry()
	embeddingSvc := service.NewEmbeddingService(
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingModel,
		cfg.EmbeddingDimensions,
	)
	ingestSvc := service.NewIngestService(chunkRepo, embeddingSvc, registry)
	chatSvc := service.NewChatService(chunkRepo, embeddingSvc, registry, cfg)
	docSvc := service.NewDocumentService(chunkRepo, registry, cfg.UploadDir)

	// Handlers
	uploadHandler := NewUploadHandler(ingestSvc, registry, cfg.UploadDir, cfg.MaxUploadSize)
	chatHandler := NewChatHandler(chatSvc)
	docHandler := NewDocumentHandler(docSvc, chatSvc, ingestSvc, cfg.UploadDir)
	historyHandler := NewHistoryHandler(sessionRepo)

	// Upload + status polling
	r.POST("/upload/pdf", uploadHandler.Upload)
	r.GET("/upload/status", uploadHandler.Status)

	// Chat
	r.POST("/chat/stream", chatHandler.Stream)
	r.GET("/suggestions", chatHandler.Suggestions)

	// Documents
	r.GET("/pdfs", docHandler.List)
	r.DELETE("/pdfs/:filename", docHandler.Delete)
	r.GET("/pdf/download/:filename", docHandler.Download)
	r.POST("/pdf/merge", docHandler.Merge)
	r.POST("/pdf/translate/stream", docHandler.Translate)

	// Chat history
	r.GET("/history", historyHandler.List)
	r.POST("/history/session", historyHandler.Save)
	r.DELETE("/history/session/:id", historyHandler.Delete)

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "docchat",
	})
}

func readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
