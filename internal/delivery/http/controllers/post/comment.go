package post

import (
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService interface {
	AddComment(ctx context.Context, userID, postID primitive.ObjectID, parentID *primitive.ObjectID, text string) (*models.CommentNode, error)
	DeleteComment(ctx context.Context, user *models.User, id primitive.ObjectID) (int, error)
	Tree(ctx context.Context, postID primitive.ObjectID) ([]*models.CommentNode, error)
}

type CommentHandler struct {
	log     logger.Log
	service CommentService
}

func NewCommentHandler(log logger.Log, s CommentService) *CommentHandler {
	return &CommentHandler{log: log, service: s}
}

type commentRequest struct {
	Text     string `json:"text" binding:"required,notblank,max=1000"`
	ParentID string `json:"parent_id" binding:"omitempty,objectid"`
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	postID, ok := middleware.ObjectIDParam(c, "post_id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err)
		return
	}
	var parentID *primitive.ObjectID
	if req.ParentID != "" {
		id, _ := primitive.ObjectIDFromHex(req.ParentID)
		parentID = &id
	}
	comment, err := h.service.AddComment(c.Request.Context(), middleware.CurrentUserID(c), postID, parentID, req.Text)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Comments(c *gin.Context) {
	postID, ok := middleware.ObjectIDParam(c, "post_id")
	if !ok {
		return
	}
	tree, err := h.service.Tree(c.Request.Context(), postID)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": tree})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := middleware.ObjectIDParam(c, "comment_id")
	if !ok {
		return
	}
	n, err := h.service.DeleteComment(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		middleware.Fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
