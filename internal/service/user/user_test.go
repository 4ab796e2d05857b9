package user

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/events"
	"Learnify/internal/models"
	"Learnify/pkg/logger"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUsers applies follow edges to both documents like the store does.
type memUsers struct {
	users map[primitive.ObjectID]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	out := []models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.AvatarKey != nil {
		u.AvatarKey = *upd.AvatarKey
	}
	cp := *u
	return &cp, nil
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (m *memUsers) Follow(_ context.Context, followerID, followeeID primitive.ObjectID) (bool, error) {
	a, b := m.users[followerID], m.users[followeeID]
	if a == nil || b == nil {
		return false, app_errors.ErrUserNotFound
	}
	changed := false
	if !models.ContainsID(a.Following, followeeID) {
		a.Following = append(a.Following, followeeID)
		changed = true
	}
	if !models.ContainsID(b.Followers, followerID) {
		b.Followers = append(b.Followers, followerID)
		changed = true
	}
	return changed, nil
}

func (m *memUsers) Unfollow(_ context.Context, followerID, followeeID primitive.ObjectID) error {
	a, b := m.users[followerID], m.users[followeeID]
	if a == nil || b == nil {
		return app_errors.ErrUserNotFound
	}
	a.Following = without(a.Following, followeeID)
	b.Followers = without(b.Followers, followerID)
	return nil
}

type postCounterStub struct{ n int64 }

func (p postCounterStub) CountByAuthor(context.Context, primitive.ObjectID) (int64, error) {
	return p.n, nil
}

type mediaStub struct{ removed []string }

func (m *mediaStub) ObjectURL(_ context.Context, key string) (string, error) {
	return "https://media.test/" + key, nil
}

func (m *mediaStub) RemoveObject(_ context.Context, key string) error {
	m.removed = append(m.removed, key)
	return nil
}

type recordingPublisher struct{ subjects []string }

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func newUser(name string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: name, Role: models.UserRole}
}

func TestFollowFlow(t *testing.T) {
	alice, bob := newUser("alice"), newUser("bob")
	pub := &recordingPublisher{}
	svc := NewUserService(logger.NewNop(), newMemUsers(alice, bob), postCounterStub{n: 3}, &mediaStub{}, pub)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, alice.ID), app_errors.ErrSelfFollow)
	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, primitive.NewObjectID()), app_errors.ErrUserNotFound)

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	assert.Equal(t, []string{events.SubjectUserFollowed}, pub.subjects)

	p, err := svc.Profile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.FollowersCount)
	assert.True(t, p.IsFollowing)
	assert.False(t, p.IsSelf)
	assert.Equal(t, int64(3), p.PostsCount)

	followers, err := svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Name)

	following, err := svc.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	p, err = svc.Profile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, p.FollowersCount)
	assert.False(t, p.IsFollowing)
}

func TestProfile_Anonymous(t *testing.T) {
	bob := newUser("bob")
	bob.AvatarURL = "https://idp.test/bob.png"
	svc := NewUserService(logger.NewNop(), newMemUsers(bob), postCounterStub{}, &mediaStub{}, events.NopPublisher{})

	p, err := svc.Profile(context.Background(), primitive.NilObjectID, bob.ID)
	require.NoError(t, err)
	assert.False(t, p.IsFollowing)
	assert.False(t, p.IsSelf)
	assert.Equal(t, "https://idp.test/bob.png", p.AvatarURL)
}

func TestUpdateProfile(t *testing.T) {
	alice := newUser("alice")
	alice.AvatarKey = "avatar/" + alice.ID.Hex() + "/old.png"
	media := &mediaStub{}
	svc := NewUserService(logger.NewNop(), newMemUsers(alice), postCounterStub{}, media, events.NopPublisher{})
	ctx := context.Background()

	blank := "   "
	_, err := svc.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Name: &blank})
	assert.ErrorIs(t, err, app_errors.ErrValidation)

	foreign := "avatar/" + primitive.NewObjectID().Hex() + "/x.png"
	_, err = svc.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{AvatarKey: &foreign})
	assert.ErrorIs(t, err, app_errors.ErrValidation)

	wrongKind := "post-media/" + alice.ID.Hex() + "/x.png"
	_, err = svc.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{AvatarKey: &wrongKind})
	assert.ErrorIs(t, err, app_errors.ErrValidation)

	name, bio := " Alice L. ", "gopher"
	key := "avatar/" + alice.ID.Hex() + "/new.png"
	u, err := svc.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Name: &name, Bio: &bio, AvatarKey: &key})
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", u.Name)
	assert.Equal(t, "gopher", u.Bio)
	assert.Equal(t, "https://media.test/"+key, u.AvatarURL)
	assert.Equal(t, []string{"avatar/" + alice.ID.Hex() + "/old.png"}, media.removed)
}

func TestSummaries(t *testing.T) {
	alice, bob := newUser("alice"), newUser("bob")
	bob.AvatarKey = "avatar/" + bob.ID.Hex() + "/b.png"
	svc := NewUserService(logger.NewNop(), newMemUsers(alice, bob), postCounterStub{}, &mediaStub{}, events.NopPublisher{})

	got := svc.Summaries(context.Background(), []primitive.ObjectID{alice.ID, bob.ID, alice.ID, primitive.NewObjectID()})
	assert.Len(t, got, 2)
	assert.Equal(t, "alice", got[alice.ID].Name)
	assert.Equal(t, "https://media.test/"+bob.AvatarKey, got[bob.ID].AvatarURL)
}
