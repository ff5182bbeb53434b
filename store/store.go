// Package store declares the document-store operations the services need.
// mongostore backs them with MongoDB; memstore keeps everything in process
// memory for tests and local runs.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Users interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	// FindByRestaurantName matches case-insensitively on the whole name.
	FindByRestaurantName(ctx context.Context, name string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListStaff(ctx context.Context, ownerID primitive.ObjectID) ([]models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type QRCodes interface {
	Create(ctx context.Context, qr *models.QRCode) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.QRCode, error)
	FindActiveByToken(ctx context.Context, token string) (*models.QRCode, error)
	ExistsActiveTable(ctx context.Context, userID primitive.ObjectID, tableNumber string) (bool, error)
	// IncrementScan bumps the scan counter of an active token in a single
	// atomic update and returns the updated document.
	IncrementScan(ctx context.Context, token string, at time.Time) (*models.QRCode, error)
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]models.QRCode, error)
	// RecentlyScanned returns up to limit codes ordered by lastScannedAt desc.
	RecentlyScanned(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.QRCode, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderFilter zero values mean "no constraint". CreatedTo is exclusive.
// Results are always newest first.
type OrderFilter struct {
	UserID        primitive.ObjectID
	Status        models.OrderStatus
	ExcludeStatus models.OrderStatus
	CustomerPhone string
	CreatedFrom   time.Time
	CreatedTo     time.Time
	Skip          int64
	Limit         int64
}

type Orders interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Find(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
}

type MenuFilter struct {
	UserID        primitive.ObjectID
	ActiveOnly    bool
	AvailableOnly bool
}

type MenuItems interface {
	Create(ctx context.Context, item *models.MenuItem) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// List is sorted by category then name.
	List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error)
}

type PushSubscriptions interface {
	// Upsert inserts or replaces the subscription keyed by endpoint.
	Upsert(ctx context.Context, sub *models.PushSubscription) (*models.PushSubscription, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error)
	FindByPhone(ctx context.Context, phone string) ([]models.PushSubscription, error)
	Latest(ctx context.Context) (*models.PushSubscription, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Inventory interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.InventoryItem, error)
	// FindByName matches case-insensitively within one owner.
	FindByName(ctx context.Context, ownerID primitive.ObjectID, name string) (*models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	// List is sorted by name.
	List(ctx context.Context, ownerID primitive.ObjectID) ([]models.InventoryItem, error)
}

// Stores groups every repository so wiring code can pass one value around.
type Stores struct {
	Users     Users
	QRCodes   QRCodes
	Orders    Orders
	MenuItems MenuItems
	Push      PushSubscriptions
	Inventory Inventory
}
