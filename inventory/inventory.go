// Package inventory tracks per-tenant stock levels.
package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
	"github.com/02priyeshraj/QR_Menu_Backend/tenant"
)

const errDuplicateName = "Item with this name already exists"

type AddInput struct {
	Name        string  `json:"name" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	Unit        string  `json:"unit" validate:"required,oneof=kg g l ml pcs box can"`
	MinLevel    float64 `json:"minLevel" validate:"gte=0"`
	CostPerUnit float64 `json:"costPerUnit" validate:"gte=0"`
}

type UpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Quantity    *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit        *string  `json:"unit" validate:"omitempty,oneof=kg g l ml pcs box can"`
	MinLevel    *float64 `json:"minLevel" validate:"omitempty,gte=0"`
	CostPerUnit *float64 `json:"costPerUnit" validate:"omitempty,gte=0"`
}

// Entry is an item as shown to the owner.
type Entry struct {
	models.InventoryItem
	LowStock bool `json:"lowStock"`
}

func entry(item models.InventoryItem) Entry {
	return Entry{InventoryItem: item, LowStock: item.LowStock()}
}

// DuplicateError is the cause of the Conflict returned when a name is
// already taken; it carries the item that holds the name.
type DuplicateError struct {
	Existing models.InventoryItem
}

func (e *DuplicateError) Error() string {
	return "inventory item " + e.Existing.Name + " already exists"
}

type Service struct {
	items store.Inventory
	log   *logger.Logger
	now   func() time.Time
}

func NewService(items store.Inventory, log *logger.Logger) *Service {
	return &Service{items: items, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, principal *models.User) ([]Entry, error) {
	ownerID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("Error loading inventory", err)
	}
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		out = append(out, entry(it))
	}
	return out, nil
}

func (s *Service) Add(ctx context.Context, principal *models.User, in AddInput) (*Entry, error) {
	ownerID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, ownerID, in.Name, nil); err != nil {
		return nil, err
	}

	now := s.now()
	item := &models.InventoryItem{
		OwnerID:     ownerID,
		Name:        in.Name,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		MinLevel:    in.MinLevel,
		CostPerUnit: in.CostPerUnit,
		LastUpdated: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.Internal("Error saving inventory item", err)
	}
	s.log.Info(logger.RequestID(ctx), "inventory_added", "inventory item added",
		"tenant_id", ownerID.Hex(), "item_id", item.ID.Hex())
	e := entry(*item)
	return &e, nil
}

// checkName fails with a Conflict when another item of the tenant already
// uses name, ignoring case. self is the item being renamed, if any.
func (s *Service) checkName(ctx context.Context, ownerID primitive.ObjectID, name string, self *models.InventoryItem) error {
	existing, err := s.items.FindByName(ctx, ownerID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal("Error checking inventory", err)
	}
	if self != nil && existing.ID == self.ID {
		return nil
	}
	return apperrors.Wrap(apperrors.KindConflict, errDuplicateName, &DuplicateError{Existing: *existing})
}

func (s *Service) Update(ctx context.Context, principal *models.User, id string, in UpdateInput) (*Entry, error) {
	ownerID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	oid, err := helper.ParseID(id, "Item")
	if err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, oid, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Item not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error loading inventory item", err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if !strings.EqualFold(name, item.Name) {
			if err := s.checkName(ctx, ownerID, name, item); err != nil {
				return nil, err
			}
		}
		item.Name = name
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		item.Unit = *in.Unit
	}
	if in.MinLevel != nil {
		item.MinLevel = *in.MinLevel
	}
	if in.CostPerUnit != nil {
		item.CostPerUnit = *in.CostPerUnit
	}
	now := s.now()
	item.LastUpdated = now
	item.UpdatedAt = now

	if err := s.items.Update(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Item not found")
		}
		return nil, apperrors.Internal("Error updating inventory item", err)
	}
	e := entry(*item)
	return &e, nil
}

func (s *Service) Delete(ctx context.Context, principal *models.User, id string) error {
	ownerID, err := tenant.EffectiveID(principal)
	if err != nil {
		return err
	}
	oid, err := helper.ParseID(id, "Item")
	if err != nil {
		return err
	}
	err = s.items.Delete(ctx, oid, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("Item not found")
	}
	if err != nil {
		return apperrors.Internal("Error deleting inventory item", err)
	}
	return nil
}
