package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxCaptionLength = 2200
	MaxPostMedia     = 10
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Membership sets of a post.
const (
	LikesField = "likes"
	SavesField = "saves"
)

type Media struct {
	ObjectKey string `json:"object_key" bson:"object_key"`
	Type      string `json:"type" bson:"type"`
	URL       string `json:"url,omitempty" bson:"-"`
}

type Post struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	AuthorID      primitive.ObjectID   `json:"author_id" bson:"author_id"`
	Media         []Media              `json:"media" bson:"media"`
	Caption       string               `json:"caption" bson:"caption"`
	Hashtags      []string             `json:"hashtags" bson:"hashtags"`
	Likes         []primitive.ObjectID `json:"-" bson:"likes"`
	Saves         []primitive.ObjectID `json:"-" bson:"saves"`
	CommentsCount int                  `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

// PostView is a post resolved for a viewer.
type PostView struct {
	Post
	Author     UserSummary `json:"author"`
	LikesCount int         `json:"likes_count"`
	SavesCount int         `json:"saves_count"`
	Liked      bool        `json:"liked"`
	Saved      bool        `json:"saved"`
}

// FeedFilter selects a feed. At most one of the narrowing fields is used,
// with AuthorIDs taking precedence over Hashtag.
type FeedFilter struct {
	AuthorIDs []primitive.ObjectID
	Hashtag   string
	SavedBy   primitive.ObjectID
	Limit     int
	Offset    int
}

// PostInput carries the editable part of a post. Hashtags are merged with
// the ones found in Caption.
type PostInput struct {
	Caption  string
	Media    []Media
	Hashtags []string
}

// PostUpdate is a partial edit. Nil fields keep the stored value; a non-nil
// Media replaces the attachments, even when it points at an empty slice.
type PostUpdate struct {
	Caption  *string
	Media    *[]Media
	Hashtags *[]string
}

// Merge overlays the set fields of u on the stored post.
func (u PostUpdate) Merge(p *Post) PostInput {
	in := PostInput{Caption: p.Caption, Media: p.Media, Hashtags: p.Hashtags}
	if u.Caption != nil {
		in.Caption = *u.Caption
	}
	if u.Media != nil {
		in.Media = *u.Media
	}
	if u.Hashtags != nil {
		in.Hashtags = *u.Hashtags
	}
	return in
}

// FeedQuery selects the posts a viewer asked for. AuthorID wins over
// Following, which wins over Hashtag; none of them means the global feed.
type FeedQuery struct {
	AuthorID  primitive.ObjectID
	Following bool
	Hashtag   string
	Limit     int
	Offset    int
}

// ToggleResult is the state of a like or save after an idempotent toggle.
type ToggleResult struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
