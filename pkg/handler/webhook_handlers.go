// Webhook HTTP handlers for the Z-API messaging provider
package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/konekta/ouvidoria/pkg/models"
	"github.com/konekta/ouvidoria/pkg/service"
)

// MessageQueue is where accepted inbound messages go; the dispatcher
// implements it with per-conversation FIFO workers.
type MessageQueue interface {
	Enqueue(key, from, text string)
}

// WebhookHandler handles inbound webhook requests
type WebhookHandler struct {
	queue  MessageQueue
	logger *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(queue MessageQueue, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		queue:  queue,
		logger: logger,
	}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
	r.GET("/test", h.Test)
	r.POST("/zapi", h.HandleZApiWebhook)
}

// Health reports service liveness
// GET /webhook/health
func (h *WebhookHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "UP",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "Ouvidoria Chatbot",
	})
}

// Test is a plain-text connectivity probe
// GET /webhook/test
func (h *WebhookHandler) Test(c *gin.Context) {
	c.String(http.StatusOK, "✅ Teste OK - %s", time.Now().Format(time.RFC3339))
}

// HandleZApiWebhook accepts a Z-API message event. Echoes of our own sends,
// delivery status callbacks and empty texts are acknowledged and dropped;
// everything else is queued for the conversation engine and the request
// returns immediately.
// POST /webhook/zapi
func (h *WebhookHandler) HandleZApiWebhook(c *gin.Context) {
	var payload models.ZApiWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Error("Failed to parse webhook payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.FromMe || payload.Type == models.TypeMessageStatusCallback {
		c.String(http.StatusOK, "Mensagem ignorada")
		return
	}

	text := strings.TrimSpace(payload.MessageText())
	if payload.Phone == "" || text == "" {
		h.logger.Warn("Webhook without processable message", "phone", payload.Phone, "type", payload.Type)
		c.String(http.StatusOK, "Tipo de mensagem não suportado")
		return
	}

	key := service.NormalizePhone(payload.Phone)
	h.logger.Info("Queueing inbound message", "key", key)
	h.queue.Enqueue(key, payload.Phone, text)

	c.String(http.StatusOK, "Mensagem recebida e sendo processada")
}
