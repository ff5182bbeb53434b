package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var StaffRoles = []string{"admin", "manager", "waiter", "kitchen", "cashier"}

// User is both the tenant (owner) record and a staff identity. Staff carry
// OwnerID pointing at the owner they act for.
type User struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name                  string              `bson:"name" json:"name"`
	Email                 string              `bson:"email,omitempty" json:"email,omitempty"`
	Password              string              `bson:"password" json:"-"`
	Phone                 string              `bson:"phone,omitempty" json:"phone,omitempty"`
	RestaurantName        string              `bson:"restaurantName,omitempty" json:"restaurantName,omitempty"`
	RestaurantAddress     string              `bson:"restaurantAddress,omitempty" json:"restaurantAddress,omitempty"`
	RestaurantDescription string              `bson:"restaurantDescription,omitempty" json:"restaurantDescription,omitempty"`
	RestaurantLogo        string              `bson:"restaurantLogo,omitempty" json:"restaurantLogo,omitempty"`
	UpiID                 string              `bson:"upiId,omitempty" json:"upiId,omitempty"`
	Role                  string              `bson:"role" json:"role"`
	StaffRole             string              `bson:"staffRole,omitempty" json:"staffRole,omitempty"`
	OwnerID               *primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	IsActive              bool                `bson:"isActive" json:"isActive"`
	Permissions           []string            `bson:"permissions" json:"permissions"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}
