package controller

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/orders"
)

func (c *Controller) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	var in orders.PlaceInput
	if err := decode(r, &in); err != nil {
		c.fail(w, r, "place_order", err)
		return
	}
	order, err := c.Orders.Place(ctx, in)
	if err != nil {
		c.fail(w, r, "place_order", err)
		return
	}
	helper.Success(w, http.StatusCreated, "Order placed successfully", map[string]any{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber(),
		"order":       order,
	})
}

func (c *Controller) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	detail, err := c.Orders.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		c.fail(w, r, "get_order", err)
		return
	}
	helper.Success(w, http.StatusOK, "", detail)
}

func (c *Controller) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	list, err := c.Orders.ListForCustomer(ctx, mux.Vars(r)["phone"])
	if err != nil {
		c.fail(w, r, "customer_orders", err)
		return
	}
	helper.Success(w, http.StatusOK, "", map[string]any{"count": len(list), "orders": list})
}

func (c *Controller) OwnerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, "owner_orders", err)
		return
	}
	q := r.URL.Query()
	list, page, err := c.Orders.ListForTenant(ctx, tenantID, q.Get("status"), helper.PageFromQuery(q, orders.DefaultListLimit))
	if err != nil {
		c.fail(w, r, "owner_orders", err)
		return
	}
	helper.Success(w, http.StatusOK, "", map[string]any{"count": len(list), "orders": list, "pagination": page})
}

// transitionFunc is one of the engine's status-changing operations.
type transitionFunc func(ctx context.Context, orderID string, tenantID primitive.ObjectID) (*models.Order, error)

func (c *Controller) transition(w http.ResponseWriter, r *http.Request, action, message string, fn transitionFunc) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, action, err)
		return
	}
	order, err := fn(ctx, mux.Vars(r)["id"], tenantID)
	if err != nil {
		c.fail(w, r, action, err)
		return
	}
	helper.Success(w, http.StatusOK, message, map[string]any{"order": order})
}

func (c *Controller) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		c.fail(w, r, "update_order_status", err)
		return
	}
	c.transition(w, r, "update_order_status", "Order status updated successfully",
		func(ctx context.Context, orderID string, tenantID primitive.ObjectID) (*models.Order, error) {
			return c.Orders.Transition(ctx, orderID, tenantID, body.Status)
		})
}

func (c *Controller) MarkOrderReady(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "mark_order_ready", "Order marked as ready", c.Orders.MarkReady)
}

func (c *Controller) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "complete_order", "Order marked as completed", c.Orders.MarkCompleted)
}

func (c *Controller) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.context(r)
	defer cancel()

	_, tenantID, err := tenantOf(r)
	if err != nil {
		c.fail(w, r, "delete_order", err)
		return
	}
	if err := c.Orders.Remove(ctx, mux.Vars(r)["id"], tenantID); err != nil {
		c.fail(w, r, "delete_order", err)
		return
	}
	helper.Success(w, http.StatusOK, "Order deleted successfully", nil)
}
