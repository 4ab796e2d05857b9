package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxCommentLength = 1000

type Comment struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	PostID    primitive.ObjectID  `json:"post_id" bson:"post_id"`
	UserID    primitive.ObjectID  `json:"user_id" bson:"user_id"`
	Text      string              `json:"text" bson:"text"`
	ParentID  *primitive.ObjectID `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at"`
}

type CommentNode struct {
	Comment
	Author  UserSummary    `json:"author"`
	Replies []*CommentNode `json:"replies"`
}
