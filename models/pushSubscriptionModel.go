package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PushKeys struct {
	P256dh string `bson:"p256dh" json:"p256dh" validate:"required"`
	Auth   string `bson:"auth" json:"auth" validate:"required"`
}

// PushSubscription targets either a tenant (UserID) or a customer (Phone).
// Endpoint is the natural key.
type PushSubscription struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Endpoint  string              `bson:"endpoint" json:"endpoint"`
	Keys      PushKeys            `bson:"keys" json:"keys"`
	UserID    *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Phone     string              `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
