package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store/memstore"
)

// fakePrinter accepts one connection and hands back everything written to it.
func fakePrinter(t *testing.T) (Settings, <-chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		got <- data
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return Settings{Type: TypeNetwork, Connection: Connection{NetworkIP: "127.0.0.1", NetworkPort: addr.Port}}, got
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

type fixture struct {
	svc   *Service
	owner *models.User
	order *models.Order
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	stores := memstore.New()
	owner := &models.User{Role: models.RoleOwner, RestaurantName: "Spice Hub", RestaurantAddress: "MG Road", IsActive: true}
	if err := stores.Users.Create(ctx, owner); err != nil {
		t.Fatal(err)
	}
	order := &models.Order{
		UserID: owner.ID, TableNumber: "5", CustomerName: "Ravi", CustomerPhone: "9876543210",
		Items: []models.OrderItem{
			{Name: "Pizza", Price: 300, Quantity: 1},
			{Name: "Coke", Price: 40, Quantity: 2},
		},
		TotalAmount: 380, PaymentMethod: models.PaymentCash, Status: models.StatusCompleted,
		CreatedAt: time.Date(2026, 5, 10, 12, 30, 0, 0, time.UTC),
	}
	if err := stores.Orders.Create(ctx, order); err != nil {
		t.Fatal(err)
	}
	svc := NewService(stores.Orders, stores.Users, NetworkPrinter{Timeout: time.Second}, logger.Nop())
	return &fixture{svc: svc, owner: owner, order: order}
}

func TestPrintBillWritesReceipt(t *testing.T) {
	f := newFixture(t)
	settings, got := fakePrinter(t)

	if err := f.svc.PrintBill(context.Background(), f.owner, f.order.ID.Hex(), settings); err != nil {
		t.Fatal(err)
	}
	var data []byte
	select {
	case data = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("printer received nothing")
	}

	if !bytes.HasPrefix(data, []byte(escInit)) || !bytes.HasSuffix(data, []byte(escCut)) {
		t.Errorf("job not framed: %q", data)
	}
	text := string(data)
	for _, want := range []string{"Spice Hub", "MG Road", "Order #" + f.order.OrderNumber(), "Table: 5",
		"1x Pizza", "2x Coke", "Rs.80.00", "Rs.380.00", "Payment: CASH"} {
		if !strings.Contains(text, want) {
			t.Errorf("receipt missing %q", want)
		}
	}
}

func TestPrintBillChecksOwnershipFirst(t *testing.T) {
	f := newFixture(t)
	rival := &models.User{ID: primitive.NewObjectID(), Role: models.RoleOwner}
	settings := Settings{Type: TypeNetwork, Connection: Connection{NetworkIP: "127.0.0.1", NetworkPort: closedPort(t)}}

	err := f.svc.PrintBill(context.Background(), rival, f.order.ID.Hex(), settings)
	if !apperrors.Is(err, apperrors.KindForbidden) {
		t.Errorf("err = %v, want forbidden", err)
	}
	err = f.svc.PrintBill(context.Background(), f.owner, "missing", settings)
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestUnreachablePrinterIsUpstream(t *testing.T) {
	f := newFixture(t)
	settings := Settings{Type: TypeNetwork, Connection: Connection{NetworkIP: "127.0.0.1", NetworkPort: closedPort(t)}}

	if err := f.svc.PrintBill(context.Background(), f.owner, f.order.ID.Hex(), settings); !apperrors.Is(err, apperrors.KindUpstream) {
		t.Errorf("print err = %v, want upstream", err)
	}
	if err := f.svc.Test(context.Background(), settings); !apperrors.Is(err, apperrors.KindUpstream) {
		t.Errorf("test err = %v, want upstream", err)
	}
}

func TestSettingsValidation(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
	}{
		{"missing type", Settings{Connection: Connection{NetworkIP: "10.0.0.2"}}},
		{"usb", Settings{Type: TypeUSB, Connection: Connection{USBPort: "/dev/usb/lp0"}}},
		{"missing ip", Settings{Type: TypeNetwork}},
		{"bad port", Settings{Type: TypeNetwork, Connection: Connection{NetworkIP: "10.0.0.2", NetworkPort: 70000}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.in.normalize(); !apperrors.Is(err, apperrors.KindValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}

	s, err := Settings{Type: TypeNetwork, Connection: Connection{NetworkIP: "10.0.0.2"}}.normalize()
	if err != nil {
		t.Fatal(err)
	}
	if s.Connection.NetworkPort != DefaultPort || s.Width != DefaultWidth || s.Addr() != "10.0.0.2:"+strconv.Itoa(DefaultPort) {
		t.Errorf("defaults = %+v", s)
	}
}

func TestTestPage(t *testing.T) {
	f := newFixture(t)
	settings, got := fakePrinter(t)
	if err := f.svc.Test(context.Background(), settings); err != nil {
		t.Fatal(err)
	}
	select {
	case data := <-got:
		if !strings.Contains(string(data), "PRINTER TEST") {
			t.Errorf("test page = %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("printer received nothing")
	}
}

func TestRowClipsLongNames(t *testing.T) {
	d := &doc{width: 20}
	d.row("A very long dish name indeed", "Rs.10.00")
	line := strings.TrimSuffix(d.buf.String(), "\n")
	if len([]rune(line)) != 20 || !strings.HasSuffix(line, " Rs.10.00") {
		t.Errorf("row = %q", line)
	}
}
