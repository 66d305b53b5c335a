package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Description   string               `bson:"description,omitempty" json:"description,omitempty"`
	Price         float64              `bson:"price" json:"price"`
	CategoryID    primitive.ObjectID   `bson:"category_id,omitempty" json:"categoryId,omitempty"`
	ColorID       primitive.ObjectID   `bson:"color_id,omitempty" json:"colorId,omitempty"`
	Image         string               `bson:"image,omitempty" json:"image,omitempty"`
	Stock         int                  `bson:"stock" json:"stock"`
	Reviews       []primitive.ObjectID `bson:"reviews" json:"reviews"`
	StripePriceID string               `bson:"stripe_price_id,omitempty" json:"-"`
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
}

type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

type Color struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	CategoryID  string  `json:"categoryId"`
	ColorID     string  `json:"colorId"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	CategoryID  *string  `json:"categoryId"`
	ColorID     *string  `json:"colorId"`
	Image       *string  `json:"image"`
	Stock       *int     `json:"stock"`
}

// ProductFilter narrows catalog listings. Sort is "price_asc" or "price_desc";
// empty means insertion order.
type ProductFilter struct {
	CategoryID string
	ColorID    string
	Sort       string
}
