package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var InventoryUnits = []string{"kg", "g", "l", "ml", "pcs", "box", "can"}

type InventoryItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name        string             `bson:"name" json:"name"`
	Quantity    float64            `bson:"quantity" json:"quantity"`
	Unit        string             `bson:"unit" json:"unit"`
	MinLevel    float64            `bson:"minLevel" json:"minLevel"`
	CostPerUnit float64            `bson:"costPerUnit" json:"costPerUnit"`
	LastUpdated time.Time          `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinLevel
}
