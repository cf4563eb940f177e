package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a rating left by one user about another. Reviews are created
// by the review-submission flow; the directory only reads them.
type Review struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FromUserID primitive.ObjectID `json:"fromUserId" bson:"fromUserId"`
	Stars      int                `json:"stars" bson:"stars"`
	Comment    string             `json:"comment" bson:"comment"`
	Images     []string           `json:"images" bson:"images"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
