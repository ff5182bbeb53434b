// Package printer sends bills to network receipt printers speaking ESC/POS
// over raw TCP.
package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
	"github.com/02priyeshraj/QR_Menu_Backend/tenant"
)

const (
	DefaultPort  = 9100
	DefaultWidth = 48
	TypeNetwork  = "network"
	TypeUSB      = "usb"
)

type Connection struct {
	NetworkIP   string `json:"networkIp"`
	NetworkPort int    `json:"networkPort"`
	USBPort     string `json:"usbPort,omitempty"`
}

type Settings struct {
	Type       string     `json:"type" validate:"required,oneof=network usb"`
	Connection Connection `json:"connection"`
	// Width is the paper width in characters.
	Width int `json:"width" validate:"omitempty,min=16"`
}

// normalize validates s and fills in defaults.
func (s Settings) normalize() (Settings, error) {
	if err := helper.Validate(s); err != nil {
		return s, err
	}
	if s.Type == TypeUSB {
		return s, apperrors.Validation("USB printers must be attached to the client; this server prints over the network only")
	}
	if s.Connection.NetworkIP == "" {
		return s, apperrors.Validation("IP address is required for network printer")
	}
	if s.Connection.NetworkPort == 0 {
		s.Connection.NetworkPort = DefaultPort
	}
	if s.Connection.NetworkPort < 1 || s.Connection.NetworkPort > 65535 {
		return s, apperrors.Validation("Printer port must be between 1 and 65535")
	}
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	return s, nil
}

func (s Settings) Addr() string {
	return net.JoinHostPort(s.Connection.NetworkIP, strconv.Itoa(s.Connection.NetworkPort))
}

// Printer delivers a rendered job.
type Printer interface {
	Send(ctx context.Context, s Settings, job []byte) error
}

// NetworkPrinter writes jobs to a raw TCP socket, usually port 9100.
type NetworkPrinter struct {
	Timeout time.Duration
}

func (p NetworkPrinter) Send(ctx context.Context, s Settings, job []byte) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("printer not reachable at %s: %w", s.Addr(), err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}
	if _, err := conn.Write(job); err != nil {
		return fmt.Errorf("write to printer %s: %w", s.Addr(), err)
	}
	return nil
}

type Status struct {
	Status         string    `json:"status"`
	SupportedTypes []string  `json:"supportedTypes"`
	Timestamp      time.Time `json:"timestamp"`
}

type Service struct {
	orders  store.Orders
	users   store.Users
	printer Printer
	log     *logger.Logger
	now     func() time.Time
}

func NewService(orders store.Orders, users store.Users, printer Printer, log *logger.Logger) *Service {
	return &Service{orders: orders, users: users, printer: printer, log: log, now: time.Now}
}

func (s *Service) Status() Status {
	return Status{Status: "ready", SupportedTypes: []string{TypeNetwork}, Timestamp: s.now()}
}

// PrintBill prints the receipt of one of the principal's orders.
func (s *Service) PrintBill(ctx context.Context, principal *models.User, orderID string, settings Settings) error {
	settings, err := settings.normalize()
	if err != nil {
		return err
	}
	oid, err := helper.ParseID(orderID, "Order")
	if err != nil {
		return err
	}
	order, err := s.orders.FindByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("Order not found")
	}
	if err != nil {
		return apperrors.Internal("Error loading order", err)
	}
	if err := tenant.Owns(principal, order.UserID); err != nil {
		return err
	}
	owner, err := s.users.FindByID(ctx, order.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperrors.Internal("Error loading restaurant", err)
	}

	bill := billFor(order, owner)
	if err := s.printer.Send(ctx, settings, RenderBill(bill, settings.Width)); err != nil {
		s.log.Error(logger.RequestID(ctx), "print_failed", "bill not printed", err,
			"order_id", order.ID.Hex(), "printer", settings.Addr())
		return apperrors.Upstream("Printer not connected or not reachable", err)
	}
	s.log.Info(logger.RequestID(ctx), "bill_printed", "bill printed",
		"order_id", order.ID.Hex(), "printer", settings.Addr())
	return nil
}

func billFor(order *models.Order, owner *models.User) Bill {
	b := Bill{
		OrderNumber:   order.OrderNumber(),
		TableNumber:   order.TableNumber,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Total:         order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Notes:         order.Notes,
		At:            order.CreatedAt,
	}
	if owner != nil {
		b.RestaurantName = owner.RestaurantName
		b.RestaurantAddress = owner.RestaurantAddress
	}
	for _, it := range order.Items {
		b.Items = append(b.Items, Line{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return b
}

// Test prints a short page to check connectivity.
func (s *Service) Test(ctx context.Context, settings Settings) error {
	settings, err := settings.normalize()
	if err != nil {
		return err
	}
	if err := s.printer.Send(ctx, settings, RenderTestPage(settings, s.now(), settings.Width)); err != nil {
		s.log.Warn(logger.RequestID(ctx), "printer_test_failed", "printer test failed",
			"printer", settings.Addr(), "error", err.Error())
		return apperrors.Upstream("Printer test failed. Check connection and try again", err)
	}
	return nil
}
