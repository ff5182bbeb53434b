package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/02priyeshraj/QR_Menu_Backend/events"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/push"
	"github.com/02priyeshraj/QR_Menu_Backend/qr"
	"github.com/02priyeshraj/QR_Menu_Backend/realtime"
)

// Amount prints a rupee amount without trailing zeros, as customers see it.
func Amount(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', -1, 64)
}

func statusMessage(status models.OrderStatus, number string) string {
	switch status {
	case models.StatusPreparing:
		return fmt.Sprintf("Your order #%s is being prepared! 👨‍🍳", number)
	case models.StatusReady:
		return fmt.Sprintf("Your order #%s is ready for pickup! 🎉", number)
	case models.StatusCompleted:
		return fmt.Sprintf("Your order #%s has been completed. Thank you! 💚", number)
	case models.StatusCancelled:
		return fmt.Sprintf("Your order #%s has been cancelled. 😔", number)
	}
	return fmt.Sprintf("Order status updated to %s", status)
}

func statusSMS(status models.OrderStatus, name, number string) string {
	switch status {
	case models.StatusPreparing:
		return fmt.Sprintf("👨‍🍳 Hi %s! Your order #%s is being prepared.", name, number)
	case models.StatusReady:
		return fmt.Sprintf("🎉 Hi %s! Your order #%s is ready for pickup!", name, number)
	case models.StatusCompleted:
		return fmt.Sprintf("💚 Thank you %s! Your order #%s has been completed. We hope to see you again!", name, number)
	case models.StatusCancelled:
		return fmt.Sprintf("😔 Hi %s, your order #%s has been cancelled. Please contact us for more details.", name, number)
	}
	return fmt.Sprintf("Order #%s status: %s", number, status)
}

func newOrderData(o *models.Order) map[string]any {
	return map[string]any{
		"orderId":       o.ID.Hex(),
		"orderNumber":   o.OrderNumber(),
		"customerName":  o.CustomerName,
		"customerPhone": o.CustomerPhone,
		"tableNumber":   o.TableNumber,
		"totalAmount":   o.TotalAmount,
		"itemCount":     o.ItemCount(),
		"items":         o.Items,
	}
}

func customerData(o *models.Order, status models.OrderStatus) map[string]any {
	return map[string]any{
		"orderId":      o.ID.Hex(),
		"orderNumber":  o.OrderNumber(),
		"customerName": o.CustomerName,
		"totalAmount":  o.TotalAmount,
		"status":       status,
	}
}

// orderPage is the customer's order tracking path on the menu site.
func orderPage(ev events.Event) string {
	slug := "menu"
	if ev.Owner != nil {
		slug = qr.Slug(ev.Owner.RestaurantName)
	}
	return fmt.Sprintf("/m/%s/q/%s/order/%s", slug, ev.Order.QRToken, ev.Order.ID.Hex())
}

// message is everything one event produces, before any delivery.
type message struct {
	rooms        []string
	notification realtime.Notification

	pushTenant bool
	pushTarget string
	payload    push.Payload

	texts []text
}

type text struct {
	to   string
	body string
}

func compose(ev events.Event) message {
	o := &ev.Order
	number := o.OrderNumber()

	switch ev.Kind {
	case events.NewOrder:
		m := message{
			rooms: []string{realtime.OwnerRoom(o.UserID.Hex())},
			notification: realtime.Notification{
				Type:      string(events.NewOrder),
				Title:     "New Order Received! 🎉",
				Message:   fmt.Sprintf("New order #%s from %s", number, o.CustomerName),
				Data:      newOrderData(o),
				Timestamp: ev.At,
			},
			pushTenant: true,
			pushTarget: o.UserID.Hex(),
			payload: push.Payload{
				Title: "New Order Received",
				Body:  fmt.Sprintf("%d item(s) • %s • %s", o.ItemCount(), o.CustomerName, Amount(o.TotalAmount)),
				Data:  map[string]any{"url": "/owner/orders"},
			},
			texts: []text{{
				to: o.CustomerPhone,
				body: fmt.Sprintf("✅ Thank you %s! Your order #%s (%s) has been received. We'll notify you when it's ready!",
					o.CustomerName, number, Amount(o.TotalAmount)),
			}},
		}
		if ev.Owner != nil && ev.Owner.Phone != "" {
			m.texts = append(m.texts, text{
				to: ev.Owner.Phone,
				body: fmt.Sprintf("🔔 New Order #%s! Customer: %s, Amount: %s. Check your dashboard now!",
					number, o.CustomerName, Amount(o.TotalAmount)),
			})
		}
		return m

	case events.OrderReady:
		return message{
			rooms: []string{realtime.OrderRoom(o.ID.Hex()), realtime.CustomerRoom(o.CustomerPhone)},
			notification: realtime.Notification{
				Type:      string(events.OrderReady),
				Title:     "🎉 Your Order is Ready!",
				Message:   fmt.Sprintf("Great news! Your order #%s is ready for pickup. Thank you for your patience! 😊", number),
				Data:      customerData(o, ev.NewStatus),
				Timestamp: ev.At,
			},
			pushTarget: o.CustomerPhone,
			payload: push.Payload{
				Title: "Order Ready 🎉",
				Body:  fmt.Sprintf("Order #%s is ready for pickup", number),
				Data:  map[string]any{"url": orderPage(ev)},
			},
			texts: []text{{
				to:   o.CustomerPhone,
				body: fmt.Sprintf("🎉 Hi %s! Your order #%s is ready for pickup. Thank you for your patience! - QR Menu", o.CustomerName, number),
			}},
		}

	default:
		return message{
			rooms: []string{realtime.OrderRoom(o.ID.Hex()), realtime.CustomerRoom(o.CustomerPhone)},
			notification: realtime.Notification{
				Type:      string(events.StatusChanged),
				Title:     "Order Update",
				Message:   statusMessage(ev.NewStatus, number),
				Data:      customerData(o, ev.NewStatus),
				Timestamp: ev.At,
			},
			pushTarget: o.CustomerPhone,
			payload: push.Payload{
				Title: "Order " + strings.ToUpper(string(ev.NewStatus)),
				Body:  fmt.Sprintf("Order #%s is now %s", number, ev.NewStatus),
				Data:  map[string]any{"url": orderPage(ev)},
			},
			texts: []text{{to: o.CustomerPhone, body: statusSMS(ev.NewStatus, o.CustomerName, number)}},
		}
	}
}
