package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat/internal/model"
	"docchat/internal/service"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Message    string              `json:"message"`
	History    []model.ChatMessage `json:"history"`
	ActivePDFs []string            `json:"active_pdfs"`
}

// Stream answers the message as a token stream with a trailing sources event.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required."})
		return
	}

	setStreamHeaders(c)

	events := h.svc.StreamChat(c.Request.Context(), req.Message, req.History, req.ActivePDFs)
	for event := range events {
		writeEvent(c, event)
	}
	writeDone(c)
}

// Suggestions returns up to 3 follow-up questions for the last exchange.
func (h *ChatHandler) Suggestions(c *gin.Context) {
	message := strings.TrimSpace(c.Query("message"))
	answer := strings.TrimSpace(c.Query("answer"))
	if message == "" || answer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message and answer params are required."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": h.svc.Suggestions(c.Request.Context(), message, answer),
	})
}
