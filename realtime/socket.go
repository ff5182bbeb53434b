package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
	maxMessage = 4096
)

var (
	errSlowConsumer = errors.New("send buffer full")
	errClosed       = errors.New("connection closed")
)

// Server upgrades HTTP requests to websocket sessions registered in a
// Directory. Each connection gets a reader and a writer goroutine.
type Server struct {
	dir      *Directory
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewServer(dir *Directory, allowedOrigins []string, log *logger.Logger) *Server {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Server{
		dir: dir,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

type client struct {
	id   string
	ws   *websocket.Conn
	send chan Frame

	mu     sync.Mutex
	closed bool
}

func (c *client) ID() string { return c.id }

func (c *client) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return errSlowConsumer
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(logger.RequestID(r.Context()), "socket_upgrade", "websocket upgrade failed", "error", err.Error())
		return
	}
	c := &client{id: uuid.NewString(), ws: ws, send: make(chan Frame, sendBuffer)}
	s.dir.Connect(c)
	s.log.Debug("", "socket_connected", "client connected", "conn_id", c.id)

	go s.writeLoop(c)
	s.readLoop(c)
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.dir.Leave(c.id)
		c.close()
		s.log.Debug("", "socket_disconnected", "client disconnected", "conn_id", c.id)
	}()

	c.ws.SetReadLimit(maxMessage)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("", "socket_read", "unexpected close", "conn_id", c.id, "error", err.Error())
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		s.handle(c, msg)
	}
}

func (s *Server) handle(c *client, msg inbound) {
	switch msg.Event {
	case "ping":
		_ = c.Send(Frame{Event: "pong"})
		return
	case "owner:join":
		s.join(c, RoleOwner, ownerAttrs(msg.Data))
	case "customer:join":
		var attrs Attrs
		_ = json.Unmarshal(msg.Data, &attrs)
		s.join(c, RoleCustomer, attrs)
	default:
		_ = c.Send(Frame{Event: "error", Data: "unknown event " + msg.Event})
	}
}

func (s *Server) join(c *client, role Role, attrs Attrs) {
	rooms, err := s.dir.Join(c.id, role, attrs)
	if err != nil {
		_ = c.Send(Frame{Event: "error", Data: apperrors.Message(err)})
		return
	}
	s.log.Debug("", "socket_joined", "client joined rooms", "conn_id", c.id, "role", role, "rooms", rooms)
	_ = c.Send(Frame{Event: "joined", Data: map[string]any{"rooms": rooms}})
}

// ownerAttrs accepts either a bare id string or {"ownerId": "..."}.
func ownerAttrs(raw json.RawMessage) Attrs {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return Attrs{OwnerID: id}
	}
	var attrs Attrs
	_ = json.Unmarshal(raw, &attrs)
	return Attrs{OwnerID: attrs.OwnerID}
}

func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
