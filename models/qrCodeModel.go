package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	QRTypeGlobal = "global"
	QRTypeTable  = "table"
)

type QRCode struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Name          string             `bson:"name" json:"name"`
	Type          string             `bson:"type" json:"type"`
	TableNumber   string             `bson:"tableNumber,omitempty" json:"tableNumber,omitempty"`
	Token         string             `bson:"token" json:"token"`
	QRCodeData    string             `bson:"qrCodeData" json:"qrCodeData"`
	URL           string             `bson:"url" json:"url"`
	Scans         int64              `bson:"scans" json:"scans"`
	LastScannedAt *time.Time         `bson:"lastScannedAt,omitempty" json:"lastScannedAt,omitempty"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
