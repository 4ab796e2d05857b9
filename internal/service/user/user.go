package user

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
	maxNameLength = 100
	maxBioLength  = 500
)

type userRepo interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error)
	Follow(ctx context.Context, followerID, followeeID primitive.ObjectID) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID primitive.ObjectID) error
}

type postCounter interface {
	CountByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error)
}

type mediaRepo interface {
	ObjectURL(ctx context.Context, objectKey string) (string, error)
	RemoveObject(ctx context.Context, objectKey string) error
}

type UserService struct {
	log       logger.Log
	userRepo  userRepo
	postRepo  postCounter
	mediaRepo mediaRepo
	publisher events.Publisher
}

func NewUserService(log logger.Log, userRepo userRepo, postRepo postCounter, mediaRepo mediaRepo, publisher events.Publisher) *UserService {
	return &UserService{
		log:       log,
		userRepo:  userRepo,
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
		publisher: publisher,
	}
}

// UserByID returns the user with its avatar URL resolved.
func (s *UserService) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.userRepo.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.AvatarURL = s.avatarURL(ctx, u)
	return u, nil
}

// Profile describes userID as seen by viewerID, which is zero for anonymous
// callers.
func (s *UserService) Profile(ctx context.Context, viewerID, userID primitive.ObjectID) (*models.Profile, error) {
	u, err := s.userRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		ID:             u.ID,
		Name:           u.Name,
		Bio:            u.Bio,
		AvatarURL:      s.avatarURL(ctx, u),
		FollowersCount: len(u.Followers),
		FollowingCount: len(u.Following),
		PostsCount:     posts,
		IsFollowing:    !viewerID.IsZero() && models.ContainsID(u.Followers, viewerID),
		IsSelf:         viewerID == userID,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" || len([]rune(name)) > maxNameLength {
			return nil, app_errors.Invalid("name must be 1 to %d characters", maxNameLength)
		}
		upd.Name = &name
	}
	if upd.Bio != nil {
		bio := strings.TrimSpace(*upd.Bio)
		if len([]rune(bio)) > maxBioLength {
			return nil, app_errors.Invalid("bio must be at most %d characters", maxBioLength)
		}
		upd.Bio = &bio
	}

	var previousAvatar string
	if upd.AvatarKey != nil {
		if *upd.AvatarKey != "" {
			kind, owner, err := upload.ParseKey(*upd.AvatarKey)
			if err != nil {
				return nil, err
			}
			if kind != models.KindAvatar || owner != userID.Hex() {
				return nil, app_errors.Invalid("avatar must be an avatar upload of the user")
			}
		}
		current, err := s.userRepo.UserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		previousAvatar = current.AvatarKey
	}

	u, err := s.userRepo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	if previousAvatar != "" && previousAvatar != u.AvatarKey {
		if err := s.mediaRepo.RemoveObject(ctx, previousAvatar); err != nil {
			s.log.ErrorErr("UpdateProfile: failed to remove previous avatar", err, "object_key", previousAvatar)
		}
	}
	u.AvatarURL = s.avatarURL(ctx, u)
	return u, nil
}

func (s *UserService) Follow(ctx context.Context, followerID, followeeID primitive.ObjectID) error {
	if followerID == followeeID {
		return app_errors.ErrSelfFollow
	}
	changed, err := s.userRepo.Follow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	events.Emit(ctx, s.publisher, s.log, events.SubjectUserFollowed, events.UserFollowed{
		FollowerID: followerID.Hex(),
		FolloweeID: followeeID.Hex(),
	})
	return nil
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followeeID primitive.ObjectID) error {
	if followerID == followeeID {
		return app_errors.ErrSelfFollow
	}
	return s.userRepo.Unfollow(ctx, followerID, followeeID)
}

func (s *UserService) Followers(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error) {
	u, err := s.userRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, u.Followers)
}

func (s *UserService) Following(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error) {
	u, err := s.userRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, u.Following)
}

func (s *UserService) list(ctx context.Context, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	users, err := s.userRepo.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, s.summary(ctx, &u))
		}
	}
	return out, nil
}

// Summaries resolves the cards of ids. Unknown ids are left out of the map.
func (s *UserService) Summaries(ctx context.Context, ids []primitive.ObjectID) map[primitive.ObjectID]models.UserSummary {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out
	}
	users, err := s.userRepo.UsersByIDs(ctx, dedupe(ids))
	if err != nil {
		s.log.ErrorErr("Summaries: failed to load users", err)
		return out
	}
	for i := range users {
		out[users[i].ID] = s.summary(ctx, &users[i])
	}
	return out
}

func (s *UserService) summary(ctx context.Context, u *models.User) models.UserSummary {
	return models.UserSummary{ID: u.ID, Name: u.Name, AvatarURL: s.avatarURL(ctx, u)}
}

// avatarURL prefers an uploaded avatar over the identity provider picture.
func (s *UserService) avatarURL(ctx context.Context, u *models.User) string {
	if u.AvatarKey == "" {
		return u.AvatarURL
	}
	url, err := s.mediaRepo.ObjectURL(ctx, u.AvatarKey)
	if err != nil {
		s.log.ErrorErr("failed to presign avatar", err, "user_id", u.ID.Hex())
		return u.AvatarURL
	}
	return url
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
