package controller

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/menu"
)

// MaxUploadSize bounds a menu upload.
const MaxUploadSize = 10 << 20

func (c *Controller) OwnerMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "owner_menu", err)
		return
	}
	items, err := c.Menu.OwnerMenu(ctx, user)
	if err != nil {
		c.fail(w, r, "owner_menu", err)
		return
	}
	helper.Success(w, http.StatusOK, "", map[string]any{"count": len(items), "items": items})
}

func (c *Controller) PublicMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	m, err := c.Menu.PublicMenu(ctx, mux.Vars(r)["slug"], r.URL.Query().Get("token"))
	if err != nil {
		c.fail(w, r, "public_menu", err)
		return
	}
	helper.Success(w, http.StatusOK, "", m)
}

func (c *Controller) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "add_menu_item", err)
		return
	}
	var in menu.ItemInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "add_menu_item", err)
		return
	}
	item, err := c.Menu.Add(ctx, user, in)
	if err != nil {
		c.fail(w, r, "add_menu_item", err)
		return
	}
	helper.Success(w, http.StatusCreated, "Menu item added successfully", map[string]any{"item": item})
}

func (c *Controller) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "update_menu_item", err)
		return
	}
	var patch menu.ItemPatch
	if err := decode(r, &patch); err != nil {
		c.fail(w, r, "update_menu_item", err)
		return
	}
	item, err := c.Menu.Update(ctx, user, mux.Vars(r)["id"], patch)
	if err != nil {
		c.fail(w, r, "update_menu_item", err)
		return
	}
	helper.Success(w, http.StatusOK, "Menu item updated successfully", map[string]any{"item": item})
}

func (c *Controller) SetMenuItemAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "menu_item_availability", err)
		return
	}
	var body struct {
		IsAvailable *bool `json:"isAvailable"`
	}
	if err := decode(r, &body); err != nil {
		c.fail(w, r, "menu_item_availability", err)
		return
	}
	if body.IsAvailable == nil {
		c.fail(w, r, "menu_item_availability", apperrors.Validation("isAvailable is required"))
		return
	}
	item, err := c.Menu.SetAvailability(ctx, user, mux.Vars(r)["id"], *body.IsAvailable)
	if err != nil {
		c.fail(w, r, "menu_item_availability", err)
		return
	}
	helper.Success(w, http.StatusOK, "Menu item availability updated", map[string]any{"item": item})
}

func (c *Controller) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "delete_menu_item", err)
		return
	}
	if err := c.Menu.Delete(ctx, user, mux.Vars(r)["id"]); err != nil {
		c.fail(w, r, "delete_menu_item", err)
		return
	}
	helper.Success(w, http.StatusOK, "Menu item deleted successfully", nil)
}

func (c *Controller) DeleteAllMenuItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "delete_all_menu_items", err)
		return
	}
	n, err := c.Menu.DeleteAll(ctx, user)
	if err != nil {
		c.fail(w, r, "delete_all_menu_items", err)
		return
	}
	msg := "No items to delete"
	if n > 0 {
		msg = fmt.Sprintf("Successfully deleted %d menu items", n)
	}
	helper.Success(w, http.StatusOK, msg, map[string]any{"deletedCount": n})
}

func (c *Controller) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "update_menu", err)
		return
	}
	var body struct {
		Items []menu.BulkItem `json:"items"`
	}
	if err := decode(r, &body); err != nil {
		c.fail(w, r, "update_menu", err)
		return
	}
	items, err := c.Menu.BulkUpsert(ctx, user, body.Items)
	if err != nil {
		c.fail(w, r, "update_menu", err)
		return
	}
	helper.Success(w, http.StatusOK, "Menu updated successfully", map[string]any{"count": len(items), "items": items})
}

// UploadMenu accepts a multipart "menuFile" or a plain "text" field and
// returns extracted items for review. Nothing is saved.
func (c *Controller) UploadMenu(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		c.fail(w, r, "upload_menu", err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		c.fail(w, r, "upload_menu", apperrors.Wrap(apperrors.KindValidation, "Please upload a file", err))
		return
	}

	src := menu.Source{Text: strings.TrimSpace(r.FormValue("text"))}
	file, header, err := r.FormFile("menuFile")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.fail(w, r, "upload_menu", apperrors.Wrap(apperrors.KindValidation, "Could not read uploaded file", err))
			return
		}
		src.Filename = header.Filename
		src.MIMEType = header.Header.Get("Content-Type")
		src.Data = data
	case src.Text == "":
		c.fail(w, r, "upload_menu", apperrors.Validation("Please upload a file"))
		return
	}

	ctx, cancel := c.context(r)
	defer cancel()
	result, err := c.Extractor.Extract(ctx, src)
	if err != nil {
		c.fail(w, r, "upload_menu", err)
		return
	}

	msg := fmt.Sprintf("Found %d menu items. Please review and confirm.", len(result.Items))
	if len(result.Items) == 0 {
		msg = "Text extracted but no items found automatically. Please review and add items manually."
	}
	helper.Success(w, http.StatusOK, msg, map[string]any{
		"items":             result.Items,
		"method":            result.Method,
		"provider":          result.Provider,
		"extractedText":     result.ExtractedText,
		"needsManualReview": true,
	})
}
