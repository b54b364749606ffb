package model

import "time"

// User is an account record. Password holds the bcrypt hash and never
// leaves the store layer in API responses.
type User struct {
	ID         string    `bson:"_id" json:"id"`
	FullName   string    `bson:"full_name" json:"fullName"`
	Email      string    `bson:"email" json:"email"`
	Password   string    `bson:"password" json:"-"`
	Bio        string    `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePic string    `bson:"profile_pic,omitempty" json:"profilePic,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
