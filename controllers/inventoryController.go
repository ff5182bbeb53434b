package controller

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/inventory"
)

func (c *Controller) ListInventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "list_inventory", err)
		return
	}
	items, err := c.Inventory.List(ctx, user)
	if err != nil {
		c.fail(w, r, "list_inventory", err)
		return
	}
	helper.Success(w, http.StatusOK, "", items)
}

func (c *Controller) AddInventoryItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "add_inventory_item", err)
		return
	}
	var in inventory.AddInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "add_inventory_item", err)
		return
	}
	item, err := c.Inventory.Add(ctx, user, in)
	if err != nil {
		c.inventoryFail(w, r, "add_inventory_item", err)
		return
	}
	helper.Success(w, http.StatusCreated, "Item added", item)
}

func (c *Controller) UpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "update_inventory_item", err)
		return
	}
	var in inventory.UpdateInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "update_inventory_item", err)
		return
	}
	item, err := c.Inventory.Update(ctx, user, mux.Vars(r)["id"], in)
	if err != nil {
		c.inventoryFail(w, r, "update_inventory_item", err)
		return
	}
	helper.Success(w, http.StatusOK, "Item updated", item)
}

func (c *Controller) DeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "delete_inventory_item", err)
		return
	}
	if err := c.Inventory.Delete(ctx, user, mux.Vars(r)["id"]); err != nil {
		c.fail(w, r, "delete_inventory_item", err)
		return
	}
	helper.Success(w, http.StatusOK, "Item deleted", nil)
}

// inventoryFail adds the clashing item to duplicate-name conflicts.
func (c *Controller) inventoryFail(w http.ResponseWriter, r *http.Request, action string, err error) {
	var dup *inventory.DuplicateError
	if !errors.As(err, &dup) {
		c.fail(w, r, action, err)
		return
	}
	body := map[string]any{
		"success":      false,
		"message":      apperrors.Message(err),
		"existingItem": dup.Existing,
	}
	helper.WriteJSON(w, http.StatusConflict, body)
}
