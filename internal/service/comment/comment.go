package comment

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentRepo interface {
	NewComment(ctx context.Context, c *models.Comment) (primitive.ObjectID, error)
	CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int, error)
}

type postRepo interface {
	PostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	IncrementComments(ctx context.Context, postID primitive.ObjectID, delta int) error
}

type userDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) map[primitive.ObjectID]models.UserSummary
}

type CommentService struct {
	log         logger.Log
	commentRepo commentRepo
	postRepo    postRepo
	users       userDirectory
}

func NewCommentService(log logger.Log, commentRepo commentRepo, postRepo postRepo, users userDirectory) *CommentService {
	return &CommentService{
		log:         log,
		commentRepo: commentRepo,
		postRepo:    postRepo,
		users:       users,
	}
}

// AddComment posts text under postID, optionally as a reply to parentID,
// which must belong to the same post.
func (s *CommentService) AddComment(ctx context.Context, userID, postID primitive.ObjectID, parentID *primitive.ObjectID, text string) (*models.CommentNode, error) {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > models.MaxCommentLength {
		return nil, app_errors.Invalid("comment must be 1 to %d characters", models.MaxCommentLength)
	}
	if _, err := s.postRepo.PostByID(ctx, postID); err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.commentRepo.CommentByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, app_errors.Invalid("parent comment belongs to another post")
		}
	}

	c := &models.Comment{PostID: postID, UserID: userID, Text: text, ParentID: parentID}
	if _, err := s.commentRepo.NewComment(ctx, c); err != nil {
		return nil, err
	}
	if err := s.postRepo.IncrementComments(ctx, postID, 1); err != nil {
		s.log.ErrorErr("AddComment: failed to bump comment counter", err, "post_id", postID.Hex())
	}

	authors := s.users.Summaries(ctx, []primitive.ObjectID{userID})
	return &models.CommentNode{Comment: *c, Author: author(authors, userID), Replies: []*models.CommentNode{}}, nil
}

// DeleteComment removes the comment and every reply below it. The comment
// author, the post author and admins may delete.
func (s *CommentService) DeleteComment(ctx context.Context, user *models.User, id primitive.ObjectID) (int, error) {
	c, err := s.commentRepo.CommentByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if c.UserID != user.ID && !user.IsAdmin() {
		p, err := s.postRepo.PostByID(ctx, c.PostID)
		if err != nil {
			return 0, err
		}
		if p.AuthorID != user.ID {
			return 0, app_errors.ErrForbidden
		}
	}

	all, err := s.commentRepo.CommentsByPost(ctx, c.PostID)
	if err != nil {
		return 0, err
	}
	ids := Subtree(all, id)
	n, err := s.commentRepo.DeleteComments(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := s.postRepo.IncrementComments(ctx, c.PostID, -n); err != nil {
			s.log.ErrorErr("DeleteComment: failed to update comment counter", err, "post_id", c.PostID.Hex())
		}
	}
	s.log.Info("comment deleted", "comment_id", id.Hex(), "removed", n)
	return n, nil
}

// Tree returns the comments of postID as a forest of threads, oldest first
// on every level. Replies to a missing parent are lifted to the top level.
func (s *CommentService) Tree(ctx context.Context, postID primitive.ObjectID) ([]*models.CommentNode, error) {
	if _, err := s.postRepo.PostByID(ctx, postID); err != nil {
		return nil, err
	}
	list, err := s.commentRepo.CommentsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.UserID)
	}
	return BuildTree(list, s.users.Summaries(ctx, ids)), nil
}

// BuildTree folds a flat, creation-ordered list into threads.
func BuildTree(list []models.Comment, authors map[primitive.ObjectID]models.UserSummary) []*models.CommentNode {
	nodes := make(map[primitive.ObjectID]*models.CommentNode, len(list))
	for _, c := range list {
		nodes[c.ID] = &models.CommentNode{Comment: c, Author: author(authors, c.UserID), Replies: []*models.CommentNode{}}
	}

	roots := []*models.CommentNode{}
	for _, c := range list {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && *c.ParentID != c.ID {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// Subtree returns id followed by the ids of all its descendants.
func Subtree(list []models.Comment, id primitive.ObjectID) []primitive.ObjectID {
	children := map[primitive.ObjectID][]primitive.ObjectID{}
	for _, c := range list {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	out := []primitive.ObjectID{}
	seen := map[primitive.ObjectID]struct{}{}
	queue := []primitive.ObjectID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
		queue = append(queue, children[cur]...)
	}
	return out
}

func author(authors map[primitive.ObjectID]models.UserSummary, id primitive.ObjectID) models.UserSummary {
	if a, ok := authors[id]; ok {
		return a
	}
	return models.UserSummary{ID: id}
}
