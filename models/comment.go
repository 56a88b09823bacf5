package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Comment is a top-level entry on the board. ProfilePic is the author's
// picture at the time the comment was written and is never refreshed.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username   string             `bson:"username" json:"username"`
	Content    string             `bson:"content" json:"content"`
	Likes      int64              `bson:"likes" json:"likes"`
	Replies    []Reply            `bson:"replies" json:"replies"`
	ProfilePic string             `bson:"profile_pic" json:"profile_pic"`
}

// Reply lives only inside its parent's Replies and has no id of its own.
type Reply struct {
	Username   string `bson:"username" json:"username"`
	Content    string `bson:"content" json:"content"`
	Likes      int64  `bson:"likes" json:"likes"`
	ProfilePic string `bson:"profile_pic" json:"profile_pic"`
}
