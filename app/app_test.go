package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/store/memstore"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *App
	srv *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		Env:         "test",
		SecretKey:   "test-secret",
		TokenTTL:    time.Hour,
		BcryptCost:  bcrypt.MinCost,
		FrontendURL: "http://menu.test",
		CORSOrigins: []string{"http://menu.test"},
		AI:          config.AIConfig{Timeout: time.Second},
		Printer:     config.PrinterConfig{DialTimeout: time.Second},
		SMS:         config.SMSConfig{DefaultCountryCode: "+91"},
	}
	a := New(cfg, memstore.New(), logger.Nop())
	srv := httptest.NewServer(a.Handler)
	t.Cleanup(func() {
		srv.Close()
		a.Wait()
	})
	return &harness{t: t, app: a, srv: srv}
}

func (h *harness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, h.srv.URL+path, &buf)
	if err != nil {
		h.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		h.t.Fatal(err)
	}
	defer res.Body.Close()
	var env envelope
	_ = json.NewDecoder(res.Body).Decode(&env)
	return res.StatusCode, env
}

func (h *harness) must(status int, method, path, token string, body, into any) {
	h.t.Helper()
	got, env := h.do(method, path, token, body)
	if got != status {
		h.t.Fatalf("%s %s = %d (%s), want %d", method, path, got, env.Message, status)
	}
	if into != nil {
		if err := json.Unmarshal(env.Data, into); err != nil {
			h.t.Fatalf("%s %s: decoding data: %v", method, path, err)
		}
	}
}

func (h *harness) register(email, restaurant string) (token, id string) {
	h.t.Helper()
	var session struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	h.must(http.StatusCreated, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Owner", "email": email, "password": "secret1", "restaurantName": restaurant,
	}, &session)
	return session.Token, session.User.ID
}

func (h *harness) tableCode(token, table string) string {
	h.t.Helper()
	var out struct {
		QRCode struct {
			Token string `json:"token"`
		} `json:"qrCode"`
	}
	h.must(http.StatusCreated, http.MethodPost, "/api/qr/generate", token,
		map[string]any{"name": "Table " + table, "type": "table", "tableNumber": table}, &out)
	return out.QRCode.Token
}

func (h *harness) socket() *websocket.Conn {
	h.t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(h.srv.URL, "http")+"/socket", nil)
	if err != nil {
		h.t.Fatal(err)
	}
	h.t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f map[string]any
	if err := ws.ReadJSON(&f); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestOrderReadyReachesCustomerAndCompletionIsStable(t *testing.T) {
	h := newHarness(t)
	owner, _ := h.register("owner@example.com", "Pizza Palace")
	code := h.tableCode(owner, "5")

	var placed struct {
		OrderID string `json:"orderId"`
		Order   struct {
			TableNumber string `json:"tableNumber"`
			Status      string `json:"status"`
		} `json:"order"`
	}
	h.must(http.StatusCreated, http.MethodPost, "/api/orders", "", map[string]any{
		"token":         code,
		"customerName":  "Asha",
		"customerPhone": "9876543210",
		"items":         []map[string]any{{"name": "Pizza", "price": 300, "quantity": 1}},
		"totalAmount":   300,
	}, &placed)
	if placed.Order.TableNumber != "5" || placed.Order.Status != "pending" {
		t.Fatalf("placed = %+v", placed.Order)
	}

	ws := h.socket()
	if err := ws.WriteJSON(map[string]any{
		"event": "customer:join",
		"data":  map[string]string{"orderId": placed.OrderID, "phone": "9876543210"},
	}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, ws); f["event"] != "joined" {
		t.Fatalf("frame = %v", f)
	}

	h.must(http.StatusOK, http.MethodPut, "/api/orders/"+placed.OrderID+"/ready", owner, nil, nil)
	f := readFrame(t, ws)
	data, _ := f["data"].(map[string]any)
	if f["event"] != "notification" || data["type"] != "order_ready" {
		t.Fatalf("frame = %v", f)
	}

	type completed struct {
		Order struct {
			Status      string     `json:"status"`
			CompletedAt *time.Time `json:"completedAt"`
		} `json:"order"`
	}
	var first, second completed
	h.must(http.StatusOK, http.MethodPut, "/api/orders/"+placed.OrderID+"/complete", owner, nil, &first)
	h.must(http.StatusOK, http.MethodPut, "/api/orders/"+placed.OrderID+"/complete", owner, nil, &second)
	if first.Order.CompletedAt == nil || second.Order.CompletedAt == nil {
		t.Fatal("completedAt not set")
	}
	if !first.Order.CompletedAt.Equal(*second.Order.CompletedAt) {
		t.Fatalf("completedAt moved: %v then %v", first.Order.CompletedAt, second.Order.CompletedAt)
	}
}

func TestRoutingAndAuth(t *testing.T) {
	h := newHarness(t)
	owner, _ := h.register("owner@example.com", "Pizza Palace")
	rival, _ := h.register("rival@example.com", "Burger Barn")
	code := h.tableCode(owner, "1")

	if status, _ := h.do(http.MethodGet, "/api/orders/owner/list", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("no token = %d", status)
	}
	if status, _ := h.do(http.MethodGet, "/api/orders/owner/list", "garbage", nil); status != http.StatusUnauthorized {
		t.Fatalf("bad token = %d", status)
	}

	var placed struct {
		OrderID string `json:"orderId"`
	}
	h.must(http.StatusCreated, http.MethodPost, "/api/orders", "", map[string]any{
		"token": code, "customerName": "A", "customerPhone": "1",
		"items": []map[string]any{{"name": "Tea", "price": 20, "quantity": 2}}, "totalAmount": 40,
	}, &placed)

	// The public lookup and the owner list share the /orders prefix.
	h.must(http.StatusOK, http.MethodGet, "/api/orders/"+placed.OrderID, "", nil, nil)
	var list struct {
		Count int `json:"count"`
	}
	h.must(http.StatusOK, http.MethodGet, "/api/orders/owner/list", owner, nil, &list)
	if list.Count != 1 {
		t.Fatalf("owner sees %d orders", list.Count)
	}
	h.must(http.StatusOK, http.MethodGet, "/api/orders/owner/list", rival, nil, &list)
	if list.Count != 0 {
		t.Fatalf("rival sees %d orders", list.Count)
	}
	if status, _ := h.do(http.MethodPut, "/api/orders/"+placed.OrderID+"/ready", rival, nil); status != http.StatusForbidden {
		t.Fatalf("rival transition = %d", status)
	}

	var scan struct {
		URL string `json:"url"`
	}
	h.must(http.StatusOK, http.MethodPost, "/api/qr/scan/"+code, "", nil, &scan)
	if !strings.HasPrefix(scan.URL, "http://menu.test/m/") {
		t.Fatalf("scan url = %q", scan.URL)
	}
	if status, _ := h.do(http.MethodPost, "/api/qr/scan/unknown", "", nil); status != http.StatusNotFound {
		t.Fatalf("unknown token = %d", status)
	}

	h.must(http.StatusOK, http.MethodGet, "/health", "", nil, nil)
}

func TestStaffRoutesAreOwnerOnly(t *testing.T) {
	h := newHarness(t)
	owner, _ := h.register("owner@example.com", "Pizza Palace")

	h.must(http.StatusCreated, http.MethodPost, "/api/staff", owner, map[string]any{
		"name": "Waiter", "phone": "5550001", "pin": "123456",
	}, nil)

	var session struct {
		Token string `json:"token"`
	}
	h.must(http.StatusOK, http.MethodPost, "/api/auth/login", "", map[string]any{
		"phone": "5550001", "password": "123456",
	}, &session)

	if status, _ := h.do(http.MethodGet, "/api/staff", session.Token, nil); status != http.StatusForbidden {
		t.Fatalf("staff listing staff = %d", status)
	}
	// Staff act for the owner elsewhere.
	h.must(http.StatusOK, http.MethodGet, "/api/orders/owner/list", session.Token, nil, nil)
}

func TestInventoryRoutesAreOwnerOnly(t *testing.T) {
	h := newHarness(t)
	owner, _ := h.register("owner@example.com", "Pizza Palace")
	h.must(http.StatusCreated, http.MethodPost, "/api/staff", owner, map[string]any{
		"name": "Waiter", "phone": "5550001", "pin": "123456",
	}, nil)
	var session struct {
		Token string `json:"token"`
	}
	h.must(http.StatusOK, http.MethodPost, "/api/auth/login", "", map[string]any{
		"phone": "5550001", "password": "123456",
	}, &session)

	item := map[string]any{"name": "Rice", "quantity": 10, "unit": "kg", "minLevel": 2}
	if status, env := h.do(http.MethodPost, "/api/inventory", session.Token, item); status != http.StatusForbidden {
		t.Fatalf("staff add = %d %q", status, env.Message)
	}
	if status, _ := h.do(http.MethodGet, "/api/inventory", session.Token, nil); status != http.StatusForbidden {
		t.Fatalf("staff list = %d", status)
	}
	if status, _ := h.do(http.MethodDelete, "/api/inventory/"+"0123456789abcdef01234567", session.Token, nil); status != http.StatusForbidden {
		t.Fatalf("staff delete = %d", status)
	}

	h.must(http.StatusCreated, http.MethodPost, "/api/inventory", owner, item, nil)
	var entries []map[string]any
	h.must(http.StatusOK, http.MethodGet, "/api/inventory", owner, nil, &entries)
	if len(entries) != 1 {
		t.Fatalf("owner sees %d items", len(entries))
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	req, _ := http.NewRequest(http.MethodOptions, h.srv.URL+"/api/orders", nil)
	req.Header.Set("Origin", "http://menu.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight = %d", res.StatusCode)
	}
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "http://menu.test" {
		t.Fatalf("allow origin = %q", got)
	}
}
