// Package menu is the per-tenant catalog of sellable items and the upload
// path that turns a photographed menu into draft items.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/qr"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
	"github.com/02priyeshraj/QR_Menu_Backend/tenant"
)

const (
	DefaultCurrency        = "INR"
	DefaultCategory        = "uncategorized"
	DefaultSpiceLevel      = "none"
	DefaultPreparationTime = 15
)

type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*qr.Resolution, error)
}

// ItemInput creates an item. Pointer fields distinguish "not sent" from a
// zero value so defaults apply only to missing fields.
type ItemInput struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description"`
	Price           *float64 `json:"price" validate:"required,gte=0"`
	Currency        string   `json:"currency"`
	Category        string   `json:"category"`
	Image           string   `json:"image"`
	IsVeg           *bool    `json:"isVeg"`
	SpiceLevel      string   `json:"spiceLevel" validate:"omitempty,oneof=none mild medium hot very-hot"`
	PreparationTime *int     `json:"preparationTime" validate:"omitempty,gte=0"`
}

// ItemPatch is a partial update; nil fields are left alone.
type ItemPatch struct {
	Name            *string  `json:"name" validate:"omitempty,min=1"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`
	Currency        *string  `json:"currency"`
	Category        *string  `json:"category"`
	Image           *string  `json:"image"`
	IsAvailable     *bool    `json:"isAvailable"`
	IsVeg           *bool    `json:"isVeg"`
	SpiceLevel      *string  `json:"spiceLevel" validate:"omitempty,oneof=none mild medium hot very-hot"`
	PreparationTime *int     `json:"preparationTime" validate:"omitempty,gte=0"`
}

// BulkItem updates the item named by ID, or creates one when ID is empty.
type BulkItem struct {
	ID string `json:"id"`
	ItemPatch
}

type Restaurant struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Logo        string `json:"restaurantLogo"`
}

type PublicMenu struct {
	Restaurant Restaurant `json:"restaurant"`
	// TableNumber is set only when the menu was opened through a table token.
	TableNumber *string           `json:"tableNumber"`
	Items       []models.MenuItem `json:"items"`
}

type Catalog struct {
	items  store.MenuItems
	users  store.Users
	tokens TokenResolver
	log    *logger.Logger
	now    func() time.Time
}

func NewCatalog(items store.MenuItems, users store.Users, tokens TokenResolver, log *logger.Logger) *Catalog {
	return &Catalog{items: items, users: users, tokens: tokens, log: log, now: time.Now}
}

// OwnerMenu lists the tenant's active items by category then name, including
// unavailable ones.
func (c *Catalog) OwnerMenu(ctx context.Context, principal *models.User) ([]models.MenuItem, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	items, err := c.items.List(ctx, store.MenuFilter{UserID: tenantID, ActiveOnly: true})
	if err != nil {
		return nil, apperrors.Internal("Error loading menu", err)
	}
	return nonNil(items), nil
}

// PublicMenu finds the restaurant by QR token when one is given, otherwise
// by the slug of its name. Only items a customer can order are returned.
func (c *Catalog) PublicMenu(ctx context.Context, slug, token string) (*PublicMenu, error) {
	var owner *models.User
	menu := &PublicMenu{}
	if token != "" {
		res, err := c.tokens.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		if owner, err = c.users.FindByID(ctx, res.TenantID); err != nil {
			return nil, notFoundOr(err, "Restaurant not found", "Error loading restaurant")
		}
		table := res.TableNumber
		menu.TableNumber = &table
	} else {
		var err error
		if owner, err = c.users.FindByRestaurantName(ctx, qr.Unslug(slug)); err != nil {
			return nil, notFoundOr(err, "Restaurant not found", "Error loading restaurant")
		}
	}

	items, err := c.items.List(ctx, store.MenuFilter{UserID: owner.ID, ActiveOnly: true, AvailableOnly: true})
	if err != nil {
		return nil, apperrors.Internal("Error loading menu", err)
	}
	menu.Restaurant = Restaurant{
		Name:        owner.RestaurantName,
		Description: owner.RestaurantDescription,
		Address:     owner.RestaurantAddress,
		Logo:        owner.RestaurantLogo,
	}
	menu.Items = nonNil(items)
	return menu, nil
}

func (c *Catalog) Add(ctx context.Context, principal *models.User, in ItemInput) (*models.MenuItem, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	item := c.newItem(tenantID, in)
	if err := c.items.Create(ctx, item); err != nil {
		return nil, apperrors.Internal("Error saving menu item", err)
	}
	c.log.Info(logger.RequestID(ctx), "menu_item_added", "menu item added",
		"tenant_id", tenantID.Hex(), "item_id", item.ID.Hex())
	return item, nil
}

func (c *Catalog) newItem(tenantID primitive.ObjectID, in ItemInput) *models.MenuItem {
	now := c.now()
	item := &models.MenuItem{
		UserID:          tenantID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           *in.Price,
		Currency:        normalizeCurrency(in.Currency),
		Category:        normalizeCategory(in.Category),
		Image:           in.Image,
		IsAvailable:     true,
		IsVeg:           true,
		SpiceLevel:      DefaultSpiceLevel,
		PreparationTime: DefaultPreparationTime,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.IsVeg != nil {
		item.IsVeg = *in.IsVeg
	}
	if in.SpiceLevel != "" {
		item.SpiceLevel = in.SpiceLevel
	}
	if in.PreparationTime != nil && *in.PreparationTime > 0 {
		item.PreparationTime = *in.PreparationTime
	}
	return item
}

func normalizeCurrency(s string) string {
	if s = strings.ToUpper(strings.TrimSpace(s)); s == "" {
		return DefaultCurrency
	}
	return s
}

func normalizeCategory(s string) string {
	if s = strings.ToLower(strings.TrimSpace(s)); s == "" {
		return DefaultCategory
	}
	return s
}

// owned loads an item and checks it belongs to the principal's tenant.
func (c *Catalog) owned(ctx context.Context, principal *models.User, id string) (*models.MenuItem, error) {
	oid, err := helper.ParseID(id, "Menu item")
	if err != nil {
		return nil, err
	}
	item, err := c.items.FindByID(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, "Menu item not found", "Error loading menu item")
	}
	if err := tenant.Owns(principal, item.UserID); err != nil {
		return nil, err
	}
	return item, nil
}

func (c *Catalog) Update(ctx context.Context, principal *models.User, id string, patch ItemPatch) (*models.MenuItem, error) {
	if err := helper.Validate(patch); err != nil {
		return nil, err
	}
	item, err := c.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	apply(item, patch)
	item.UpdatedAt = c.now()
	if err := c.items.Update(ctx, item); err != nil {
		return nil, notFoundOr(err, "Menu item not found", "Error updating menu item")
	}
	return item, nil
}

func apply(item *models.MenuItem, p ItemPatch) {
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Currency != nil {
		item.Currency = normalizeCurrency(*p.Currency)
	}
	if p.Category != nil {
		item.Category = normalizeCategory(*p.Category)
	}
	if p.Image != nil {
		item.Image = *p.Image
	}
	if p.IsAvailable != nil {
		item.IsAvailable = *p.IsAvailable
	}
	if p.IsVeg != nil {
		item.IsVeg = *p.IsVeg
	}
	if p.SpiceLevel != nil {
		item.SpiceLevel = *p.SpiceLevel
	}
	if p.PreparationTime != nil {
		item.PreparationTime = *p.PreparationTime
	}
}

func (c *Catalog) SetAvailability(ctx context.Context, principal *models.User, id string, available bool) (*models.MenuItem, error) {
	return c.Update(ctx, principal, id, ItemPatch{IsAvailable: &available})
}

// Delete removes the item permanently.
func (c *Catalog) Delete(ctx context.Context, principal *models.User, id string) error {
	item, err := c.owned(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := c.items.Delete(ctx, item.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperrors.Internal("Error deleting menu item", err)
	}
	return nil
}

// DeleteAll removes every item of the tenant and reports how many went.
func (c *Catalog) DeleteAll(ctx context.Context, principal *models.User) (int64, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return 0, err
	}
	n, err := c.items.DeleteByUser(ctx, tenantID)
	if err != nil {
		return 0, apperrors.Internal("Error deleting menu items", err)
	}
	c.log.Info(logger.RequestID(ctx), "menu_cleared", "menu items deleted",
		"tenant_id", tenantID.Hex(), "count", n)
	return n, nil
}

// BulkUpsert saves a reviewed batch. Entries with an id update the tenant's
// item of that id and are skipped when it is missing or foreign; entries
// without one are created. The whole batch is validated before any write.
func (c *Catalog) BulkUpsert(ctx context.Context, principal *models.User, batch []BulkItem) ([]models.MenuItem, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, apperrors.Validation("Please provide items array")
	}
	for i, b := range batch {
		if err := helper.Validate(b.ItemPatch); err != nil {
			return nil, apperrors.Wrap(apperrors.KindValidation, fmt.Sprintf("items[%d]: %s", i, apperrors.Message(err)), err)
		}
		if b.ID == "" && (b.Name == nil || strings.TrimSpace(*b.Name) == "" || b.Price == nil) {
			return nil, apperrors.Validation(fmt.Sprintf("items[%d]: name and price are required", i))
		}
	}

	saved := make([]models.MenuItem, 0, len(batch))
	for _, b := range batch {
		if b.ID == "" {
			item := c.newItem(tenantID, createInput(b.ItemPatch))
			if b.IsAvailable != nil {
				item.IsAvailable = *b.IsAvailable
			}
			if err := c.items.Create(ctx, item); err != nil {
				return nil, apperrors.Internal("Error saving menu item", err)
			}
			saved = append(saved, *item)
			continue
		}

		oid, err := primitive.ObjectIDFromHex(b.ID)
		if err != nil {
			continue
		}
		item, err := c.items.FindByID(ctx, oid)
		if errors.Is(err, store.ErrNotFound) || (err == nil && item.UserID != tenantID) {
			continue
		}
		if err != nil {
			return nil, apperrors.Internal("Error loading menu item", err)
		}
		apply(item, b.ItemPatch)
		item.UpdatedAt = c.now()
		if err := c.items.Update(ctx, item); err != nil {
			return nil, apperrors.Internal("Error updating menu item", err)
		}
		saved = append(saved, *item)
	}
	c.log.Info(logger.RequestID(ctx), "menu_bulk_saved", "menu updated",
		"tenant_id", tenantID.Hex(), "count", len(saved))
	return saved, nil
}

func createInput(p ItemPatch) ItemInput {
	in := ItemInput{Name: *p.Name, Price: p.Price, IsVeg: p.IsVeg, PreparationTime: p.PreparationTime}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Currency != nil {
		in.Currency = *p.Currency
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	if p.Image != nil {
		in.Image = *p.Image
	}
	if p.SpiceLevel != nil {
		in.SpiceLevel = *p.SpiceLevel
	}
	return in
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound(notFound)
	}
	return apperrors.Internal(internal, err)
}

func nonNil(items []models.MenuItem) []models.MenuItem {
	if items == nil {
		return []models.MenuItem{}
	}
	return items
}
