// Package realtime tracks connected clients and the rooms they joined. State
// lives in process memory only; a restart drops every session.
package realtime

import (
	"strings"
	"sync"
	"time"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleCustomer Role = "customer"
)

func OwnerRoom(ownerID string) string  { return "owner:" + ownerID }
func OrderRoom(orderID string) string  { return "order:" + orderID }
func CustomerRoom(phone string) string { return "customer:" + phone }

// Notification is the payload of the server's "notification" event.
type Notification struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Frame is one message on the wire in either direction.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Conn is one connected client. Send must not block.
type Conn interface {
	ID() string
	Send(f Frame) error
}

type Attrs struct {
	OwnerID string `json:"ownerId,omitempty"`
	OrderID string `json:"orderId,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type Session struct {
	ConnID string
	Role   Role
	Attrs  Attrs
}

type Directory struct {
	mu       sync.RWMutex
	conns    map[string]Conn
	sessions map[string]Session
	rooms    map[string]map[string]struct{}
	// joined tracks each connection's rooms so Leave is proportional to them.
	joined map[string]map[string]struct{}
	log    *logger.Logger
}

func NewDirectory(log *logger.Logger) *Directory {
	return &Directory{
		conns:    make(map[string]Conn),
		sessions: make(map[string]Session),
		rooms:    make(map[string]map[string]struct{}),
		joined:   make(map[string]map[string]struct{}),
		log:      log,
	}
}

func (d *Directory) Connect(c Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[c.ID()] = c
}

// Join records the session and subscribes the connection to its rooms:
// owner:{ownerId} for owners, order:{orderId} and customer:{phone} for
// customers. Rooms from earlier joins on the same connection are kept.
func (d *Directory) Join(connID string, role Role, attrs Attrs) ([]string, error) {
	attrs.OwnerID = strings.TrimSpace(attrs.OwnerID)
	attrs.OrderID = strings.TrimSpace(attrs.OrderID)
	attrs.Phone = strings.TrimSpace(attrs.Phone)

	var rooms []string
	switch role {
	case RoleOwner:
		if attrs.OwnerID == "" {
			return nil, apperrors.Validation("ownerId is required")
		}
		rooms = []string{OwnerRoom(attrs.OwnerID)}
	case RoleCustomer:
		if attrs.OrderID == "" || attrs.Phone == "" {
			return nil, apperrors.Validation("orderId and phone are required")
		}
		rooms = []string{OrderRoom(attrs.OrderID), CustomerRoom(attrs.Phone)}
	default:
		return nil, apperrors.Validation("unknown role")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.conns[connID]; !ok {
		return nil, apperrors.NotFound("connection not found")
	}
	d.sessions[connID] = Session{ConnID: connID, Role: role, Attrs: attrs}
	mine := d.joined[connID]
	if mine == nil {
		mine = make(map[string]struct{})
		d.joined[connID] = mine
	}
	for _, room := range rooms {
		members := d.rooms[room]
		if members == nil {
			members = make(map[string]struct{})
			d.rooms[room] = members
		}
		members[connID] = struct{}{}
		mine[room] = struct{}{}
	}
	return rooms, nil
}

// Leave forgets the connection and all its room memberships.
func (d *Directory) Leave(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for room := range d.joined[connID] {
		members := d.rooms[room]
		delete(members, connID)
		if len(members) == 0 {
			delete(d.rooms, room)
		}
	}
	delete(d.joined, connID)
	delete(d.sessions, connID)
	delete(d.conns, connID)
}

// Broadcast sends a notification frame to every member of room and returns
// how many connections accepted it.
func (d *Directory) Broadcast(room string, n Notification) int {
	d.mu.RLock()
	targets := make([]Conn, 0, len(d.rooms[room]))
	for id := range d.rooms[room] {
		if c, ok := d.conns[id]; ok {
			targets = append(targets, c)
		}
	}
	d.mu.RUnlock()

	frame := Frame{Event: "notification", Data: n}
	delivered := 0
	for _, c := range targets {
		if err := c.Send(frame); err != nil {
			d.log.Warn("", "realtime_broadcast", "dropping frame for connection", "conn_id", c.ID(), "room", room, "error", err.Error())
			continue
		}
		delivered++
	}
	return delivered
}

func (d *Directory) Session(connID string) (Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[connID]
	return s, ok
}

func (d *Directory) RoomSize(room string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms[room])
}

func (d *Directory) Connections() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}
