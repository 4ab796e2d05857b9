package middleware

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ClientIDCtx   = "client_id"
	ClientUserCtx = "client_user"
)

type AuthService interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type AuthMiddlewareProvider struct {
	log           logger.Log
	service       AuthService
	sessionCookie string
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService, sessionCookie string) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:           log,
		service:       s,
		sessionCookie: sessionCookie,
	}
}

// token reads the bearer token, falling back to the session cookie.
func (h *AuthMiddlewareProvider) token(c *gin.Context) string {
	if parts := strings.SplitN(c.GetHeader("Authorization"), "Bearer ", 2); len(parts) == 2 {
		if t := strings.TrimSpace(parts[1]); t != "" {
			return t
		}
	}
	if h.sessionCookie != "" {
		if t, err := c.Cookie(h.sessionCookie); err == nil {
			return t
		}
	}
	return ""
}

func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token := h.token(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrUnauthorized.Error()})
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.log.Info("failed to authenticate request", logger.Err(err))
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		if errors.Is(err, app_errors.ErrUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "cant parse token"})
			return
		}
		h.log.ErrorErr("authentication failed", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Set(ClientIDCtx, user.ID)
	c.Set(ClientUserCtx, user)
	c.Next()
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (h *AuthMiddlewareProvider) OptionalAuth(c *gin.Context) {
	token := h.token(c)
	if token == "" {
		c.Next()
		return
	}
	user, err := h.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.log.Debug("ignoring invalid token on public route", logger.Err(err))
		c.Next()
		return
	}
	c.Set(ClientIDCtx, user.ID)
	c.Set(ClientUserCtx, user)
	c.Next()
}

// CurrentUser returns the authenticated caller, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ClientUserCtx)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// CurrentUserID is the caller id, zero for anonymous requests.
func CurrentUserID(c *gin.Context) primitive.ObjectID {
	v, ok := c.Get(ClientIDCtx)
	if !ok {
		return primitive.NilObjectID
	}
	id, _ := v.(primitive.ObjectID)
	return id
}
