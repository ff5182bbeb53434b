package controller

import (
	"net/http"

	"github.com/02priyeshraj/QR_Menu_Backend/accounts"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
)

func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	var in accounts.RegisterInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "register", err)
		return
	}
	session, err := c.Accounts.Register(ctx, in)
	if err != nil {
		c.fail(w, r, "register", err)
		return
	}
	helper.Success(w, http.StatusCreated, "User registered successfully", session)
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	var in accounts.LoginInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "login", err)
		return
	}
	session, err := c.Accounts.Login(ctx, in)
	if err != nil {
		c.fail(w, r, "login", err)
		return
	}
	helper.Success(w, http.StatusOK, "Login successful", session)
}

func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "me", err)
		return
	}
	me, err := c.Accounts.Me(ctx, user)
	if err != nil {
		c.fail(w, r, "me", err)
		return
	}
	helper.Success(w, http.StatusOK, "", map[string]any{"user": me})
}

func (c *Controller) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "update_profile", err)
		return
	}
	var in accounts.ProfileInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "update_profile", err)
		return
	}
	updated, err := c.Accounts.UpdateProfile(ctx, user, in)
	if err != nil {
		c.fail(w, r, "update_profile", err)
		return
	}
	helper.Success(w, http.StatusOK, "Profile updated successfully", map[string]any{"user": updated})
}
