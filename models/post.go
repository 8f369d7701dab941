package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Comment struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	Author    string `bson:"author" json:"author"`
	Timestamp string `bson:"timestamp" json:"timestamp"`
}

type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author    string             `bson:"author" json:"author"`
	Caption   string             `bson:"caption" json:"caption"`
	Images    []AssetRef         `bson:"images" json:"images"`
	Timestamp string             `bson:"timeStamp" json:"timestamp"` // display string supplied by the form
	Likes     int                `bson:"likes" json:"likes"`
	Comments  []Comment          `bson:"comments" json:"comments"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
