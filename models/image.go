package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type GalleryImage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    Category           `bson:"category" json:"category"`
	Image       AssetRef           `bson:"image" json:"image"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`
}
