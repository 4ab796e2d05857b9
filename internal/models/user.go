package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserRole  = "user"
	AdminRole = "admin"
)

// User mirrors an identity provider account. ExternalID is the provider's
// subject and is unique.
type User struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	ExternalID string               `json:"-" bson:"external_id"`
	Email      string               `json:"email" bson:"email"`
	Name       string               `json:"name" bson:"name"`
	AvatarKey  string               `json:"avatar_key,omitempty" bson:"avatar_key,omitempty"`
	AvatarURL  string               `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Bio        string               `json:"bio" bson:"bio"`
	Role       string               `json:"role" bson:"role"`
	Followers  []primitive.ObjectID `json:"-" bson:"followers"`
	Following  []primitive.ObjectID `json:"-" bson:"following"`
	CreatedAt  time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == AdminRole
}

// Profile is the public view of a user, relative to the caller.
type Profile struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Bio            string             `json:"bio"`
	AvatarURL      string             `json:"avatar_url,omitempty"`
	FollowersCount int                `json:"followers_count"`
	FollowingCount int                `json:"following_count"`
	PostsCount     int64              `json:"posts_count"`
	IsFollowing    bool               `json:"is_following"`
	IsSelf         bool               `json:"is_self"`
}

// UserSummary is embedded in posts, comments and follower lists.
type UserSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	AvatarURL string             `json:"avatar_url,omitempty"`
}

type ProfileUpdate struct {
	Name      *string
	Bio       *string
	AvatarKey *string
}

// IdentityClaims are the attributes the identity provider asserts about a user.
type IdentityClaims struct {
	ExternalID string
	Email      string
	Name       string
	Picture    string
}
