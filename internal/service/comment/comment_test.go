package comment

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memComments struct {
	list  []models.Comment
	clock time.Time
}

func (m *memComments) NewComment(_ context.Context, c *models.Comment) (primitive.ObjectID, error) {
	c.ID = primitive.NewObjectID()
	m.clock = m.clock.Add(time.Second)
	c.CreatedAt = m.clock
	m.list = append(m.list, *c)
	return c.ID, nil
}

func (m *memComments) CommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	for _, c := range m.list {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, app_errors.ErrCommentNotFound
}

func (m *memComments) CommentsByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range m.list {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memComments) DeleteComments(_ context.Context, ids []primitive.ObjectID) (int, error) {
	kept := []models.Comment{}
	for _, c := range m.list {
		if !models.ContainsID(ids, c.ID) {
			kept = append(kept, c)
		}
	}
	n := len(m.list) - len(kept)
	m.list = kept
	return n, nil
}

type postsStub struct {
	posts  map[primitive.ObjectID]*models.Post
	counts map[primitive.ObjectID]int
}

func (p *postsStub) PostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, ok := p.posts[id]
	if !ok {
		return nil, app_errors.ErrPostNotFound
	}
	return post, nil
}

func (p *postsStub) IncrementComments(_ context.Context, postID primitive.ObjectID, delta int) error {
	p.counts[postID] += delta
	return nil
}

type usersStub struct{}

func (usersStub) Summaries(_ context.Context, ids []primitive.ObjectID) map[primitive.ObjectID]models.UserSummary {
	out := map[primitive.ObjectID]models.UserSummary{}
	for _, id := range ids {
		out[id] = models.UserSummary{ID: id, Name: "user-" + id.Hex()[20:]}
	}
	return out
}

type fixture struct {
	svc      *CommentService
	comments *memComments
	posts    *postsStub
	post     *models.Post
	author   *models.User
	reader   *models.User
}

func newFixture() *fixture {
	author := &models.User{ID: primitive.NewObjectID(), Role: models.UserRole}
	post := &models.Post{ID: primitive.NewObjectID(), AuthorID: author.ID}
	f := &fixture{
		comments: &memComments{clock: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		posts:    &postsStub{posts: map[primitive.ObjectID]*models.Post{post.ID: post}, counts: map[primitive.ObjectID]int{}},
		post:     post,
		author:   author,
		reader:   &models.User{ID: primitive.NewObjectID(), Role: models.UserRole},
	}
	f.svc = NewCommentService(logger.NewNop(), f.comments, f.posts, usersStub{})
	return f
}

func TestAddComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.svc.AddComment(ctx, f.reader.ID, f.post.ID, nil, "  nice post  ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", c.Text)
	assert.Equal(t, f.reader.ID, c.Author.ID)
	assert.Equal(t, 1, f.posts.counts[f.post.ID])

	_, err = f.svc.AddComment(ctx, f.reader.ID, f.post.ID, nil, "   ")
	assert.ErrorIs(t, err, app_errors.ErrValidation)

	_, err = f.svc.AddComment(ctx, f.reader.ID, f.post.ID, nil, strings.Repeat("x", models.MaxCommentLength+1))
	assert.ErrorIs(t, err, app_errors.ErrValidation)

	_, err = f.svc.AddComment(ctx, f.reader.ID, primitive.NewObjectID(), nil, "hi")
	assert.ErrorIs(t, err, app_errors.ErrPostNotFound)

	missing := primitive.NewObjectID()
	_, err = f.svc.AddComment(ctx, f.reader.ID, f.post.ID, &missing, "hi")
	assert.ErrorIs(t, err, app_errors.ErrCommentNotFound)
}

func TestAddComment_ParentOnOtherPost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	other := &models.Post{ID: primitive.NewObjectID(), AuthorID: f.author.ID}
	f.posts.posts[other.ID] = other

	parent, err := f.svc.AddComment(ctx, f.reader.ID, other.ID, nil, "elsewhere")
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, f.reader.ID, f.post.ID, &parent.ID, "reply")
	assert.ErrorIs(t, err, app_errors.ErrValidation)
}

func TestTreeAndCascadeDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	add := func(parent *primitive.ObjectID, text string) primitive.ObjectID {
		c, err := f.svc.AddComment(ctx, f.reader.ID, f.post.ID, parent, text)
		require.NoError(t, err)
		return c.ID
	}
	root := add(nil, "root")
	reply := add(&root, "reply")
	add(&reply, "nested")
	second := add(nil, "second")

	tree, err := f.svc.Tree(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "root", tree[0].Text)
	require.Len(t, tree[0].Replies, 1)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, "nested", tree[0].Replies[0].Replies[0].Text)
	assert.Equal(t, second, tree[1].ID)
	assert.Empty(t, tree[1].Replies)

	stranger := &models.User{ID: primitive.NewObjectID(), Role: models.UserRole}
	_, err = f.svc.DeleteComment(ctx, stranger, root)
	assert.ErrorIs(t, err, app_errors.ErrForbidden)

	// the post author moderates comments under their post
	n, err := f.svc.DeleteComment(ctx, f.author, root)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, f.posts.counts[f.post.ID])

	tree, err = f.svc.Tree(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "second", tree[0].Text)
}

func TestBuildTree_OrphansBecomeRoots(t *testing.T) {
	gone := primitive.NewObjectID()
	list := []models.Comment{
		{ID: primitive.NewObjectID(), Text: "a"},
		{ID: primitive.NewObjectID(), Text: "orphan", ParentID: &gone},
	}
	tree := BuildTree(list, nil)
	require.Len(t, tree, 2)
	assert.Equal(t, "orphan", tree[1].Text)
}
