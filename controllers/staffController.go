package controller

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/02priyeshraj/QR_Menu_Backend/accounts"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
)

func (c *Controller) ListStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "list_staff", err)
		return
	}
	staff, err := c.Accounts.ListStaff(ctx, user)
	if err != nil {
		c.fail(w, r, "list_staff", err)
		return
	}
	helper.Success(w, http.StatusOK, "", staff)
}

func (c *Controller) CreateStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "create_staff", err)
		return
	}
	var in accounts.CreateStaffInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "create_staff", err)
		return
	}
	staff, err := c.Accounts.CreateStaff(ctx, user, in)
	if err != nil {
		c.fail(w, r, "create_staff", err)
		return
	}
	helper.Success(w, http.StatusCreated, "Staff user created", staff)
}

func (c *Controller) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "update_staff", err)
		return
	}
	var in accounts.UpdateStaffInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "update_staff", err)
		return
	}
	staff, err := c.Accounts.UpdateStaff(ctx, user, mux.Vars(r)["id"], in)
	if err != nil {
		c.fail(w, r, "update_staff", err)
		return
	}
	helper.Success(w, http.StatusOK, "Staff user updated", staff)
}

func (c *Controller) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "delete_staff", err)
		return
	}
	if err := c.Accounts.DeleteStaff(ctx, user, mux.Vars(r)["id"]); err != nil {
		c.fail(w, r, "delete_staff", err)
		return
	}
	helper.Success(w, http.StatusOK, "Staff user deleted", nil)
}
