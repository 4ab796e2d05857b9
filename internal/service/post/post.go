package post

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/events"
	"Learnify/internal/models"
	"Learnify/internal/service/upload"
	"Learnify/pkg/logger"
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type postRepo interface {
	NewPost(ctx context.Context, post *models.Post) (primitive.ObjectID, error)
	PostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	UpdateContent(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	ListPosts(ctx context.Context, f models.FeedFilter) ([]models.Post, error)
	SetMembership(ctx context.Context, postID primitive.ObjectID, field string, userID primitive.ObjectID, member bool) (models.ToggleResult, error)
}

type commentRepo interface {
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
}

// userDirectory resolves authors and the viewer's follow list.
type userDirectory interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Summaries(ctx context.Context, ids []primitive.ObjectID) map[primitive.ObjectID]models.UserSummary
}

type mediaRepo interface {
	ObjectURL(ctx context.Context, objectKey string) (string, error)
	RemoveObject(ctx context.Context, objectKey string) error
}

type feedCache interface {
	GlobalFeed(ctx context.Context, limit int) ([]models.Post, bool, error)
	SetGlobalFeed(ctx context.Context, limit int, posts []models.Post) error
	Invalidate(ctx context.Context) error
}

type PostService struct {
	log         logger.Log
	postRepo    postRepo
	commentRepo commentRepo
	users       userDirectory
	mediaRepo   mediaRepo
	cache       feedCache
	publisher   events.Publisher
}

func NewPostService(log logger.Log, postRepo postRepo, commentRepo commentRepo, users userDirectory,
	mediaRepo mediaRepo, cache feedCache, publisher events.Publisher,
) *PostService {
	return &PostService{
		log:         log,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		users:       users,
		mediaRepo:   mediaRepo,
		cache:       cache,
		publisher:   publisher,
	}
}

func (s *PostService) CreatePost(ctx context.Context, authorID primitive.ObjectID, in models.PostInput) (*models.PostView, error) {
	p := &models.Post{AuthorID: authorID}
	if err := applyInput(p, in); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.NewPost(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	events.Emit(ctx, s.publisher, s.log, events.SubjectPostCreated, events.PostCreated{
		ID:        p.ID.Hex(),
		AuthorID:  authorID.Hex(),
		Caption:   p.Caption,
		Hashtags:  p.Hashtags,
		Type:      postType(p),
		CreatedAt: p.CreatedAt,
	})
	s.log.Info("post created", "post_id", p.ID.Hex(), "author_id", authorID.Hex())
	return s.view(ctx, authorID, p), nil
}

func (s *PostService) PostByID(ctx context.Context, viewerID, id primitive.ObjectID) (*models.PostView, error) {
	p, err := s.postRepo.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, viewerID, p), nil
}

// UpdatePost applies a partial edit. Media is swapped only when upd.Media is
// set. Only the author may edit.
func (s *PostService) UpdatePost(ctx context.Context, userID, id primitive.ObjectID, upd models.PostUpdate) (*models.PostView, error) {
	p, err := s.postRepo.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, app_errors.ErrForbidden
	}
	before := mediaKeys(p.Media)
	in := upd.Merge(p)
	if upd.Caption != nil && upd.Hashtags == nil {
		in.Hashtags = explicitTags(p)
	}
	if err := applyInput(p, in); err != nil {
		return nil, err
	}
	if err := s.postRepo.UpdateContent(ctx, p); err != nil {
		return nil, err
	}

	after := map[string]struct{}{}
	for _, k := range mediaKeys(p.Media) {
		after[k] = struct{}{}
	}
	for _, k := range before {
		if _, ok := after[k]; !ok {
			s.removeObject(ctx, k)
		}
	}
	s.invalidate(ctx)
	return s.view(ctx, userID, p), nil
}

// DeletePost removes the post with its comments and media. The author and
// admins may delete.
func (s *PostService) DeletePost(ctx context.Context, user *models.User, id primitive.ObjectID) error {
	p, err := s.postRepo.PostByID(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != user.ID && !user.IsAdmin() {
		return app_errors.ErrForbidden
	}
	if err := s.postRepo.DeletePost(ctx, id); err != nil {
		return err
	}
	if err := s.commentRepo.DeleteByPost(ctx, id); err != nil {
		s.log.ErrorErr("DeletePost: failed to delete comments", err, "post_id", id.Hex())
	}
	for _, k := range mediaKeys(p.Media) {
		s.removeObject(ctx, k)
	}
	s.invalidate(ctx)

	events.Emit(ctx, s.publisher, s.log, events.SubjectPostDeleted, events.PostDeleted{
		ID:       id.Hex(),
		AuthorID: p.AuthorID.Hex(),
	})
	s.log.Info("post deleted", "post_id", id.Hex(), "by", user.ID.Hex())
	return nil
}

// Feed lists posts newest first. The first page of the global feed is served
// from the cache when possible.
func (s *PostService) Feed(ctx context.Context, viewerID primitive.ObjectID, q models.FeedQuery) ([]models.PostView, error) {
	f := models.FeedFilter{}
	f.Limit, f.Offset = normalizePage(q.Limit, q.Offset)

	switch {
	case !q.AuthorID.IsZero():
		f.AuthorIDs = []primitive.ObjectID{q.AuthorID}
	case q.Following:
		if viewerID.IsZero() {
			return nil, app_errors.ErrUnauthorized
		}
		u, err := s.users.UserByID(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		f.AuthorIDs = append([]primitive.ObjectID{viewerID}, u.Following...)
	case q.Hashtag != "":
		f.Hashtag = NormalizeHashtag(q.Hashtag)
		if f.Hashtag == "" {
			return nil, app_errors.Invalid("invalid hashtag %q", q.Hashtag)
		}
	default:
		return s.globalFeed(ctx, viewerID, f)
	}

	posts, err := s.postRepo.ListPosts(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, viewerID, posts), nil
}

func (s *PostService) globalFeed(ctx context.Context, viewerID primitive.ObjectID, f models.FeedFilter) ([]models.PostView, error) {
	if f.Offset == 0 {
		posts, ok, err := s.cache.GlobalFeed(ctx, f.Limit)
		if err != nil {
			s.log.ErrorErr("globalFeed: cache read failed", err)
		}
		if ok {
			return s.views(ctx, viewerID, posts), nil
		}
	}

	posts, err := s.postRepo.ListPosts(ctx, f)
	if err != nil {
		return nil, err
	}
	if f.Offset == 0 {
		if err := s.cache.SetGlobalFeed(ctx, f.Limit, posts); err != nil {
			s.log.ErrorErr("globalFeed: cache write failed", err)
		}
	}
	return s.views(ctx, viewerID, posts), nil
}

func (s *PostService) SavedPosts(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]models.PostView, error) {
	f := models.FeedFilter{SavedBy: userID}
	f.Limit, f.Offset = normalizePage(limit, offset)
	posts, err := s.postRepo.ListPosts(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, userID, posts), nil
}

// SetLike likes or unlikes the post. Repeating a call is a no-op.
func (s *PostService) SetLike(ctx context.Context, userID, postID primitive.ObjectID, liked bool) (models.ToggleResult, error) {
	return s.postRepo.SetMembership(ctx, postID, models.LikesField, userID, liked)
}

func (s *PostService) SetSave(ctx context.Context, userID, postID primitive.ObjectID, saved bool) (models.ToggleResult, error) {
	return s.postRepo.SetMembership(ctx, postID, models.SavesField, userID, saved)
}

func (s *PostService) views(ctx context.Context, viewerID primitive.ObjectID, posts []models.Post) []models.PostView {
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	authors := s.users.Summaries(ctx, ids)

	out := make([]models.PostView, 0, len(posts))
	for i := range posts {
		out = append(out, s.render(ctx, viewerID, &posts[i], authors))
	}
	return out
}

func (s *PostService) view(ctx context.Context, viewerID primitive.ObjectID, p *models.Post) *models.PostView {
	v := s.render(ctx, viewerID, p, s.users.Summaries(ctx, []primitive.ObjectID{p.AuthorID}))
	return &v
}

func (s *PostService) render(ctx context.Context, viewerID primitive.ObjectID, p *models.Post, authors map[primitive.ObjectID]models.UserSummary) models.PostView {
	for i := range p.Media {
		u, err := s.mediaRepo.ObjectURL(ctx, p.Media[i].ObjectKey)
		if err != nil {
			s.log.ErrorErr("failed to presign post media", err, "object_key", p.Media[i].ObjectKey)
			continue
		}
		p.Media[i].URL = u
	}
	author, ok := authors[p.AuthorID]
	if !ok {
		author = models.UserSummary{ID: p.AuthorID}
	}
	return models.PostView{
		Post:       *p,
		Author:     author,
		LikesCount: len(p.Likes),
		SavesCount: len(p.Saves),
		Liked:      !viewerID.IsZero() && models.ContainsID(p.Likes, viewerID),
		Saved:      !viewerID.IsZero() && models.ContainsID(p.Saves, viewerID),
	}
}

func (s *PostService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.ErrorErr("failed to invalidate feed cache", err)
	}
}

func (s *PostService) removeObject(ctx context.Context, key string) {
	if err := s.mediaRepo.RemoveObject(ctx, key); err != nil {
		s.log.ErrorErr("failed to remove post media", err, "object_key", key)
	}
}

// applyInput validates in and copies it onto p.
func applyInput(p *models.Post, in models.PostInput) error {
	caption := strings.TrimSpace(in.Caption)
	if len([]rune(caption)) > models.MaxCaptionLength {
		return app_errors.Invalid("caption must be at most %d characters", models.MaxCaptionLength)
	}
	if len(in.Media) > models.MaxPostMedia {
		return app_errors.Invalid("a post holds at most %d media", models.MaxPostMedia)
	}
	if caption == "" && len(in.Media) == 0 {
		return app_errors.Invalid("a post needs a caption or media")
	}

	media := make([]models.Media, 0, len(in.Media))
	for _, m := range in.Media {
		kind, owner, err := upload.ParseKey(m.ObjectKey)
		if err != nil {
			return err
		}
		if kind != models.KindPostMedia || owner != p.AuthorID.Hex() {
			return app_errors.Invalid("media %q is not a post upload of the author", m.ObjectKey)
		}
		if m.Type != models.MediaTypeImage && m.Type != models.MediaTypeVideo {
			return app_errors.Invalid("media type must be %q or %q", models.MediaTypeImage, models.MediaTypeVideo)
		}
		media = append(media, models.Media{ObjectKey: m.ObjectKey, Type: m.Type})
	}

	tags := Hashtags(caption, in.Hashtags)
	if len(tags) > maxHashtags {
		return app_errors.Invalid("a post holds at most %d hashtags", maxHashtags)
	}

	p.Caption = caption
	p.Media = media
	p.Hashtags = tags
	return nil
}

// postType is the type of the first media item, or "text" for caption-only
// posts.
func postType(p *models.Post) string {
	if len(p.Media) == 0 {
		return "text"
	}
	return p.Media[0].Type
}

// explicitTags are the stored hashtags that the caption does not produce.
func explicitTags(p *models.Post) []string {
	fromCaption := map[string]struct{}{}
	for _, t := range Hashtags(p.Caption, nil) {
		fromCaption[t] = struct{}{}
	}
	var tags []string
	for _, t := range p.Hashtags {
		if _, ok := fromCaption[t]; !ok {
			tags = append(tags, t)
		}
	}
	return tags
}

func mediaKeys(media []models.Media) []string {
	keys := make([]string, 0, len(media))
	for _, m := range media {
		keys = append(keys, m.ObjectKey)
	}
	return keys
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
