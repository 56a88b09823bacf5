package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`
	Username   string             `bson:"username" json:"username"`
	Password   string             `bson:"password" json:"-"` // bcrypt hash
	ProfilePic string             `bson:"profile_pic" json:"profile_pic"`
}
