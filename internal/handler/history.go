package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docchat/internal/model"
	"docchat/internal/repository"
)

type HistoryHandler struct {
	repo *repository.SessionRepository
}

func NewHistoryHandler(repo *repository.SessionRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// List returns all saved chat sessions for a user, newest first.
func (h *HistoryHandler) List(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required."})
		return
	}

	sessions, err := h.repo.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

type SessionPayload struct {
	UserID    string              `json:"user_id"`
	SessionID string              `json:"session_id"`
	Title     string              `json:"title"`
	Messages  []model.ChatMessage `json:"messages"`
	CreatedAt int64               `json:"created_at"`
}

// Save creates or updates a chat session (upsert by session_id).
func (h *HistoryHandler) Save(c *gin.Context) {
	var payload SessionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(payload.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required."})
		return
	}
	if strings.TrimSpace(payload.SessionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required."})
		return
	}

	session := &model.ChatSession{
		ID:        payload.SessionID,
		UserID:    payload.UserID,
		Title:     payload.Title,
		Messages:  payload.Messages,
		CreatedAt: payload.CreatedAt,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if err := h.repo.Upsert(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete permanently removes one session, only if it belongs to user_id.
func (h *HistoryHandler) Delete(c *gin.Context) {
	sessionID := c.Param("id")
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required."})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
