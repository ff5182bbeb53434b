package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/push"
)

func (c *Controller) PushPublicKey(w http.ResponseWriter, r *http.Request) {
	helper.Success(w, http.StatusOK, "", map[string]any{"publicKey": c.Push.PublicKey()})
}

func (c *Controller) PushSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	var in push.SubscribeInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "push_subscribe", err)
		return
	}
	sub, err := c.Push.Subscribe(ctx, in)
	if err != nil {
		c.fail(w, r, "push_subscribe", err)
		return
	}
	helper.Success(w, http.StatusCreated, "", map[string]any{"id": sub.ID})
}

func (c *Controller) PushTest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	var body struct {
		Message string `json:"message"`
	}
	// An empty body sends the default message.
	if err := decode(r, &body); err != nil && !errors.Is(err, io.EOF) {
		c.fail(w, r, "push_test", err)
		return
	}
	if err := c.Push.Test(ctx, body.Message); err != nil {
		c.fail(w, r, "push_test", err)
		return
	}
	helper.Success(w, http.StatusOK, "Push sent", nil)
}
