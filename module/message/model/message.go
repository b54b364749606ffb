package model

import "time"

// Message is one direct message between two users. Immutable after creation
// except for the Seen flag, which flips to true exactly once. Exactly one of
// Text/Image is expected to be set; the store does not enforce it.
type Message struct {
	ID         string    `bson:"_id" json:"id"`
	SenderID   string    `bson:"sender_id" json:"senderId"`
	ReceiverID string    `bson:"receiver_id" json:"receiverId"`
	Text       string    `bson:"text,omitempty" json:"text,omitempty"`
	Image      string    `bson:"image,omitempty" json:"image,omitempty"`
	Seen       bool      `bson:"seen" json:"seen"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
