package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"skybook/models"
	"skybook/services/agent"
)

// WebhookHandler receives inbound channel messages and runs them through the
// conversation agent.
type WebhookHandler struct {
	Agent *agent.Agent
}

func NewWebhookHandler(a *agent.Agent) *WebhookHandler {
	return &WebhookHandler{Agent: a}
}

type inboundPayload struct {
	UserID    string   `json:"userId" binding:"required"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"`
	MediaRefs []string `json:"mediaRefs"`
}

// HandleInbound processes one webhook delivery and returns the ordered
// replies. The gateway is responsible for actually sending them.
func (h *WebhookHandler) HandleInbound(c *gin.Context) {
	var payload inboundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	ts := time.Now()
	if payload.Timestamp > 0 {
		ts = time.Unix(payload.Timestamp, 0)
	}

	msg := models.InboundMessage{
		UserID:    payload.UserID,
		Text:      payload.Text,
		Timestamp: ts,
		MediaRefs: payload.MediaRefs,
	}

	replies, err := h.Agent.ProcessMessage(c.Request.Context(), msg)
	if err != nil {
		zap.L().Error("failed to process inbound message",
			zap.String("userId", payload.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}
