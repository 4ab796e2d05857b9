package auth

import (
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	signatureHeader = "X-Webhook-Signature"
	maxWebhookBody  = 1 << 20
)

type WebhookService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type UserService interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type AuthHandler struct {
	log      logger.Log
	webhooks WebhookService
	users    UserService
}

func NewAuthHandler(l logger.Log, webhooks WebhookService, users UserService) *AuthHandler {
	return &AuthHandler{
		log:      l,
		webhooks: webhooks,
		users:    users,
	}
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID.IsZero() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	user, err := h.users.UserByID(c.Request.Context(), userID)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Webhook applies identity provider events. The signature is checked over
// the raw body, so it must be read before any binding.
func (h *AuthHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}
	if err := h.webhooks.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
