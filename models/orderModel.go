package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

// Persisted status values; the strings are part of the wire format.
const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

const (
	PaymentCash = "cash"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// OrderItem is a snapshot taken when the order is placed. It is never
// re-read from the menu, so later price edits do not touch history.
type OrderItem struct {
	ItemID   *primitive.ObjectID `bson:"itemId,omitempty" json:"itemId,omitempty"`
	Name     string              `bson:"name" json:"name" validate:"required"`
	Price    float64             `bson:"price" json:"price" validate:"gte=0"`
	Quantity int                 `bson:"quantity" json:"quantity" validate:"min=1"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	QRToken       string             `bson:"qrToken" json:"qrToken"`
	TableNumber   string             `bson:"tableNumber,omitempty" json:"tableNumber"`
	CustomerName  string             `bson:"customerName" json:"customerName"`
	CustomerPhone string             `bson:"customerPhone" json:"customerPhone"`
	Items         []OrderItem        `bson:"items" json:"items"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	Status        OrderStatus        `bson:"status" json:"status"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	Notes         string             `bson:"notes" json:"notes"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderNumber is the short customer-facing reference: the last 8 hex
// characters of the id, upper-cased.
func (o *Order) OrderNumber() string {
	hex := o.ID.Hex()
	return strings.ToUpper(hex[len(hex)-8:])
}

func (o *Order) ItemCount() int {
	return len(o.Items)
}
