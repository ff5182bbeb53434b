package controller

import (
	"net/http"

	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/printer"
)

func (c *Controller) PrinterStatus(w http.ResponseWriter, r *http.Request) {
	helper.Success(w, http.StatusOK, "", c.Printer.Status())
}

func (c *Controller) TestPrinter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	var settings printer.Settings
	if err := decode(r, &settings); err != nil {
		c.fail(w, r, "test_printer", err)
		return
	}
	if err := c.Printer.Test(ctx, settings); err != nil {
		c.fail(w, r, "test_printer", err)
		return
	}
	helper.Success(w, http.StatusOK, "Printer connection successful", nil)
}

func (c *Controller) PrintBill(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	user, err := principal(r)
	if err != nil {
		c.fail(w, r, "print_bill", err)
		return
	}
	var body struct {
		OrderID         string           `json:"orderId"`
		PrinterSettings printer.Settings `json:"printerSettings"`
	}
	if err := decode(r, &body); err != nil {
		c.fail(w, r, "print_bill", err)
		return
	}
	if err := c.Printer.PrintBill(ctx, user, body.OrderID, body.PrinterSettings); err != nil {
		c.fail(w, r, "print_bill", err)
		return
	}
	helper.Success(w, http.StatusOK, "Bill printed successfully", nil)
}
