package controller

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/qr"
)

func (c *Controller) GenerateQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "generate_qr", err)
		return
	}
	var in qr.IssueInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "generate_qr", err)
		return
	}
	code, err := c.QR.Issue(ctx, user, in)
	if err != nil {
		c.fail(w, r, "generate_qr", err)
		return
	}
	helper.Success(w, http.StatusCreated, "QR Code generated successfully", map[string]any{"qrCode": code})
}

func (c *Controller) ListQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "list_qr", err)
		return
	}
	codes, err := c.QR.List(ctx, user)
	if err != nil {
		c.fail(w, r, "list_qr", err)
		return
	}
	helper.Success(w, http.StatusOK, "", map[string]any{"count": len(codes), "qrCodes": codes})
}

func (c *Controller) GetQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "get_qr", err)
		return
	}
	code, err := c.QR.Get(ctx, user, mux.Vars(r)["id"])
	if err != nil {
		c.fail(w, r, "get_qr", err)
		return
	}
	helper.Success(w, http.StatusOK, "", map[string]any{"qrCode": code})
}

func (c *Controller) DeleteQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "delete_qr", err)
		return
	}
	if err := c.QR.Delete(ctx, user, mux.Vars(r)["id"]); err != nil {
		c.fail(w, r, "delete_qr", err)
		return
	}
	helper.Success(w, http.StatusOK, "QR Code deleted successfully", nil)
}

func (c *Controller) ScanQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	scan, err := c.QR.RecordScan(ctx, mux.Vars(r)["token"])
	if err != nil {
		c.fail(w, r, "scan_qr", err)
		return
	}
	helper.Success(w, http.StatusOK, "Scan tracked successfully", scan)
}
