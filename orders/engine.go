// Package orders owns the order state machine. It is the only code that
// writes order status and completion timestamps.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/events"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/qr"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
)

const DefaultListLimit = 100

type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*qr.Resolution, error)
}

// PlaceInput is the public order form. TotalAmount and line prices are taken
// as sent; they are not recomputed from the menu.
type PlaceInput struct {
	Token         string             `json:"token" validate:"required"`
	CustomerName  string             `json:"customerName" validate:"required"`
	CustomerPhone string             `json:"customerPhone" validate:"required"`
	Items         []models.OrderItem `json:"items" validate:"min=1,dive"`
	TotalAmount   float64            `json:"totalAmount" validate:"gt=0"`
	PaymentMethod string             `json:"paymentMethod" validate:"omitempty,oneof=cash"`
	Notes         string             `json:"notes"`
}

type Restaurant struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Detail is an order with the restaurant it was placed at.
type Detail struct {
	models.Order
	OrderNumber string     `json:"orderNumber"`
	Restaurant  Restaurant `json:"restaurant"`
}

type CustomerOrder struct {
	models.Order
	RestaurantName string `json:"restaurantName"`
}

type Engine struct {
	orders store.Orders
	users  store.Users
	tokens TokenResolver
	sink   events.Sink
	log    *logger.Logger
	now    func() time.Time
}

func NewEngine(orders store.Orders, users store.Users, tokens TokenResolver, sink events.Sink, log *logger.Logger) *Engine {
	return &Engine{
		orders: orders,
		users:  users,
		tokens: tokens,
		sink:   sink,
		log:    log,
		now:    time.Now,
	}
}

// Place validates the form, attributes it through the QR token and stores a
// pending order. Nothing is written when validation or resolution fails.
// Customer name and phone are trimmed so the phone matches the customer room.
func (e *Engine) Place(ctx context.Context, in PlaceInput) (*models.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	res, err := e.tokens.Resolve(ctx, in.Token)
	if err != nil {
		return nil, err
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCash
	}
	now := e.now()
	order := &models.Order{
		UserID:        res.TenantID,
		QRToken:       res.Token,
		TableNumber:   res.TableNumber,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Items:         append([]models.OrderItem(nil), in.Items...),
		TotalAmount:   in.TotalAmount,
		Status:        models.StatusPending,
		PaymentMethod: paymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.orders.Create(ctx, order); err != nil {
		return nil, apperrors.Internal("Error placing order", err)
	}

	e.log.Info(logger.RequestID(ctx), "order_placed", "order placed",
		"order_id", order.ID.Hex(), "tenant_id", order.UserID.Hex(), "table", order.TableNumber, "total", order.TotalAmount)
	e.publish(ctx, events.NewOrder, *order, "", models.StatusPending)
	return order, nil
}

// Transition moves an order owned by tenantID to target and emits
// StatusChanged.
func (e *Engine) Transition(ctx context.Context, orderID string, tenantID primitive.ObjectID, target models.OrderStatus) (*models.Order, error) {
	return e.transition(ctx, orderID, tenantID, target, events.StatusChanged)
}

// MarkReady is Transition to ready, announced with the customer-facing
// OrderReady event instead of StatusChanged.
func (e *Engine) MarkReady(ctx context.Context, orderID string, tenantID primitive.ObjectID) (*models.Order, error) {
	return e.transition(ctx, orderID, tenantID, models.StatusReady, events.OrderReady)
}

func (e *Engine) MarkCompleted(ctx context.Context, orderID string, tenantID primitive.ObjectID) (*models.Order, error) {
	return e.transition(ctx, orderID, tenantID, models.StatusCompleted, events.StatusChanged)
}

func (e *Engine) transition(ctx context.Context, orderID string, tenantID primitive.ObjectID, target models.OrderStatus, kind events.Kind) (*models.Order, error) {
	order, err := e.owned(ctx, orderID, tenantID, "Not authorized to update this order")
	if err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, apperrors.Validation("Invalid order status")
	}
	if !CanTransition(order.Status, target) {
		return nil, apperrors.Validation(fmt.Sprintf("Cannot change order status from %s to %s", order.Status, target))
	}

	old := order.Status
	now := e.now()
	order.Status = target
	order.UpdatedAt = now
	if target == models.StatusCompleted && order.CompletedAt == nil {
		completedAt := now
		order.CompletedAt = &completedAt
	}
	if err := e.orders.Update(ctx, order); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Internal("Error updating order", err)
	}

	e.log.Info(logger.RequestID(ctx), "order_status_changed", "order status changed",
		"order_id", order.ID.Hex(), "old_status", old, "new_status", target)
	e.publish(ctx, kind, *order, old, target)
	return order, nil
}

// Remove hard-deletes an order. No event is emitted.
func (e *Engine) Remove(ctx context.Context, orderID string, tenantID primitive.ObjectID) error {
	order, err := e.owned(ctx, orderID, tenantID, "Not authorized to delete this order")
	if err != nil {
		return err
	}
	if err := e.orders.Delete(ctx, order.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperrors.Internal("Error deleting order", err)
	}
	e.log.Info(logger.RequestID(ctx), "order_deleted", "order deleted", "order_id", order.ID.Hex())
	return nil
}

// ListForTenant returns the tenant's orders newest first. An empty status or
// "all" disables the status filter.
func (e *Engine) ListForTenant(ctx context.Context, tenantID primitive.ObjectID, status string, page helper.Page) ([]models.Order, helper.Page, error) {
	filter := store.OrderFilter{UserID: tenantID, Skip: page.Skip(), Limit: int64(page.RecordPerPage)}
	if status != "" && status != "all" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			return nil, page, apperrors.Validation("Invalid order status")
		}
		filter.Status = s
	}

	list, err := e.orders.Find(ctx, filter)
	if err != nil {
		return nil, page, apperrors.Internal("Error retrieving orders", err)
	}
	filter.Skip, filter.Limit = 0, 0
	total, err := e.orders.Count(ctx, filter)
	if err != nil {
		return nil, page, apperrors.Internal("Error counting orders", err)
	}
	if list == nil {
		list = []models.Order{}
	}
	return list, page.WithTotal(total), nil
}

// Get is the public, customer-facing order lookup.
func (e *Engine) Get(ctx context.Context, orderID string) (*Detail, error) {
	order, err := e.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	detail := &Detail{Order: *order, OrderNumber: order.OrderNumber()}
	if owner, err := e.users.FindByID(ctx, order.UserID); err == nil {
		detail.Restaurant = Restaurant{Name: owner.RestaurantName, Email: owner.Email}
	}
	return detail, nil
}

// ListForCustomer returns the orders placed today (local time) from phone.
func (e *Engine) ListForCustomer(ctx context.Context, phone string) ([]CustomerOrder, error) {
	if phone == "" {
		return nil, apperrors.Validation("phone is required")
	}
	now := e.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	list, err := e.orders.Find(ctx, store.OrderFilter{
		CustomerPhone: phone,
		CreatedFrom:   start,
		CreatedTo:     start.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, apperrors.Internal("Error retrieving orders", err)
	}

	names := make(map[primitive.ObjectID]string)
	out := make([]CustomerOrder, 0, len(list))
	for _, o := range list {
		name, ok := names[o.UserID]
		if !ok {
			if owner, err := e.users.FindByID(ctx, o.UserID); err == nil {
				name = owner.RestaurantName
			}
			names[o.UserID] = name
		}
		out = append(out, CustomerOrder{Order: o, RestaurantName: name})
	}
	return out, nil
}

func (e *Engine) load(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := helper.ParseID(orderID, "Order")
	if err != nil {
		return nil, err
	}
	order, err := e.orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error retrieving order", err)
	}
	return order, nil
}

func (e *Engine) owned(ctx context.Context, orderID string, tenantID primitive.ObjectID, denied string) (*models.Order, error) {
	order, err := e.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != tenantID {
		return nil, apperrors.Forbidden(denied)
	}
	return order, nil
}

// publish hands the event to the sink after the write. The sink never
// reports failure, so the committed order is returned regardless.
func (e *Engine) publish(ctx context.Context, kind events.Kind, order models.Order, old, updated models.OrderStatus) {
	ev := events.Event{
		Kind:      kind,
		Order:     order,
		OldStatus: old,
		NewStatus: updated,
		At:        e.now(),
		RequestID: logger.RequestID(ctx),
	}
	if owner, err := e.users.FindByID(ctx, order.UserID); err == nil {
		ev.Owner = owner
	} else {
		e.log.Warn(ev.RequestID, "order_event", "tenant not loaded for event", "tenant_id", order.UserID.Hex(), "error", err.Error())
	}
	e.sink.Publish(ctx, ev)
}
