package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// AssetRef points at a binary held by the asset host. AssetID is the host's
// opaque identifier, URL the delivery address it returned.
type AssetRef struct {
	AssetID string `bson:"assetId" json:"assetId"`
	URL     string `bson:"url" json:"url"`
}

// PendingAsset journals an uploaded binary that no record owns yet. Entries
// are cleared once the owning record is created; stale ones are swept and
// the asset destroyed.
type PendingAsset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetID   string             `bson:"assetId" json:"assetId"`
	Kind      string             `bson:"kind" json:"kind"` // image or video
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
