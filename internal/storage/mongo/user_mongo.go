package mongo

import (
	"Learnify/internal/app_errors"
	"Learnify/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserMongo struct {
	coll *mongo.Collection
}

func NewUserMongo(s *Storage) *UserMongo {
	return &UserMongo{coll: s.DB.Collection(usersCollection)}
}

func (r *UserMongo) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserMongo) UserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"external_id": externalID})
}

func (r *UserMongo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *UserMongo) UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// UpsertIdentity creates or refreshes the user owned by claims.ExternalID.
// role is applied only when the document is first inserted.
func (r *UserMongo) UpsertIdentity(ctx context.Context, claims models.IdentityClaims, role string) (*models.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":      claims.Email,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"external_id": claims.ExternalID,
			"role":        role,
			"bio":         "",
			"followers":   []primitive.ObjectID{},
			"following":   []primitive.ObjectID{},
			"created_at":  now,
		},
	}
	set := update["$set"].(bson.M)
	if claims.Name != "" {
		set["name"] = claims.Name
	} else {
		update["$setOnInsert"].(bson.M)["name"] = ""
	}
	if claims.Picture != "" {
		set["avatar_url"] = claims.Picture
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var u models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"external_id": claims.ExternalID}, update, opts).Decode(&u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost an insert race with a concurrent request for the same identity.
			return r.UserByExternalID(ctx, claims.ExternalID)
		}
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}

func (r *UserMongo) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if res.MatchedCount == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}

func (r *UserMongo) DeleteByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"external_id": externalID}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	// Drop dangling edges from the social graph.
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"$or": bson.A{bson.M{"followers": u.ID}, bson.M{"following": u.ID}}},
		bson.M{"$pull": bson.M{"followers": u.ID, "following": u.ID}},
	)
	if err != nil {
		return &u, fmt.Errorf("unlink deleted user: %w", err)
	}
	return &u, nil
}

func (r *UserMongo) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.AvatarKey != nil {
		set["avatar_key"] = *upd.AvatarKey
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &u, nil
}

// Follow records the edge on both documents and reports whether it was new.
// Repeating it is a no-op.
func (r *UserMongo) Follow(ctx context.Context, followerID, followeeID primitive.ObjectID) (bool, error) {
	return r.link(ctx, followerID, followeeID, "$addToSet")
}

func (r *UserMongo) Unfollow(ctx context.Context, followerID, followeeID primitive.ObjectID) error {
	_, err := r.link(ctx, followerID, followeeID, "$pull")
	return err
}

// link applies op to both sides of the edge. changed is true when either
// document was modified.
func (r *UserMongo) link(ctx context.Context, followerID, followeeID primitive.ObjectID, op string) (bool, error) {
	res, err := r.coll.UpdateByID(ctx, followeeID, bson.M{op: bson.M{"followers": followerID}})
	if err != nil {
		return false, fmt.Errorf("update followee: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, app_errors.ErrUserNotFound
	}
	changed := res.ModifiedCount > 0
	res, err = r.coll.UpdateByID(ctx, followerID, bson.M{op: bson.M{"following": followeeID}})
	if err != nil {
		return false, fmt.Errorf("update follower: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, app_errors.ErrUserNotFound
	}
	return changed || res.ModifiedCount > 0, nil
}
