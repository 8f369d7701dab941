package models

import (
	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushSubscription is a guest browser registered for "new update" pushes.
// Subscriptions are anonymous; the endpoint is the identity.
type PushSubscription struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Sub       webpush.Subscription `bson:"sub" json:"sub"`
	CreatedAt int64                `bson:"createdAt" json:"createdAt"`
}
