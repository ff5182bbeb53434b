package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var SpiceLevels = []string{"none", "mild", "medium", "hot", "very-hot"}

type MenuItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"-"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	Price           float64            `bson:"price" json:"price"`
	Currency        string             `bson:"currency" json:"currency"`
	Category        string             `bson:"category" json:"category"`
	Image           string             `bson:"image" json:"image"`
	IsAvailable     bool               `bson:"isAvailable" json:"isAvailable"`
	IsVeg           bool               `bson:"isVeg" json:"isVeg"`
	SpiceLevel      string             `bson:"spiceLevel" json:"spiceLevel"`
	PreparationTime int                `bson:"preparationTime" json:"preparationTime"`
	IsActive        bool               `bson:"isActive" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
