package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review holds a single user's review of a product. A user has at most one
// review per product, enforced by upsert on (user_id, product_id).
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	UserID    string             `bson:"user_id" json:"userId"`
	Rating    int                `bson:"rating" json:"rating"`
	Review    string             `bson:"review" json:"review"`
	UserName  string             `bson:"user_name,omitempty" json:"userName,omitempty"`
	UserImage string             `bson:"user_image,omitempty" json:"userImage,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

type CreateReviewRequest struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Review    string `json:"review"`
	UserName  string `json:"userName"`
	UserImage string `json:"userImage"`
}

type UpdateReviewRequest struct {
	Rating *int   `json:"rating"`
	Review string `json:"review"`
}
