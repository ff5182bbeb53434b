package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/inventory"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	middleware "github.com/02priyeshraj/QR_Menu_Backend/middlewares"
	"github.com/02priyeshraj/QR_Menu_Backend/menu"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/push"
	"github.com/02priyeshraj/QR_Menu_Backend/store/memstore"
)

type response struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Error        string          `json:"error"`
	Data         json.RawMessage `json:"data"`
	ExistingItem json.RawMessage `json:"existingItem"`
}

func newController() *Controller {
	stores := memstore.New()
	return &Controller{
		Menu:      menu.NewCatalog(stores.MenuItems, stores.Users, nil, logger.Nop()),
		Extractor: menu.NewChain(time.Second, logger.Nop()),
		Inventory: inventory.NewService(stores.Inventory, logger.Nop()),
		Push:      push.NewRegistry(stores.Push, nil, "", logger.Nop()),
		Log:       logger.Nop(),
	}
}

func ownerUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Role: models.RoleOwner, RestaurantName: "Spice Route", IsActive: true}
}

func serve(h http.HandlerFunc, req *http.Request, user *models.User, vars map[string]string) (int, response) {
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	var res response
	_ = json.NewDecoder(rec.Body).Decode(&res)
	return rec.Code, res
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestUploadMenuParsesTextField(t *testing.T) {
	c := newController()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("text", "Masala Chai Rs 40\nSamosa 15/-")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/menu/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	code, res := serve(c.UploadMenu, req, ownerUser(), nil)
	if code != http.StatusOK || !res.Success {
		t.Fatalf("upload = %d %q", code, res.Message)
	}
	var data struct {
		Items             []menu.ExtractedItem `json:"items"`
		Method            string               `json:"method"`
		NeedsManualReview bool                 `json:"needsManualReview"`
	}
	if err := json.Unmarshal(res.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Items) != 2 || data.Method != menu.MethodText || !data.NeedsManualReview {
		t.Fatalf("data = %+v", data)
	}
}

func TestUploadMenuRejects(t *testing.T) {
	c := newController()

	var empty bytes.Buffer
	mw := multipart.NewWriter(&empty)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/menu/upload", &empty)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if code, res := serve(c.UploadMenu, req, ownerUser(), nil); code != http.StatusBadRequest || res.Message != "Please upload a file" {
		t.Fatalf("empty upload = %d %q", code, res.Message)
	}

	var pdf bytes.Buffer
	mw = multipart.NewWriter(&pdf)
	part, _ := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="menuFile"; filename="menu.pdf"`},
		"Content-Type":        {"application/pdf"},
	})
	_, _ = part.Write([]byte("%PDF-1.4"))
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/api/menu/upload", &pdf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if code, res := serve(c.UploadMenu, req, ownerUser(), nil); code != http.StatusBadRequest {
		t.Fatalf("pdf upload = %d %q", code, res.Message)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/menu/upload", nil)
	if code, _ := serve(c.UploadMenu, req, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous upload = %d", code)
	}
}

func TestInventoryConflictCarriesExistingItem(t *testing.T) {
	c := newController()
	owner := ownerUser()
	body := `{"name":"Rice","quantity":10,"unit":"kg","minLevel":2}`

	if code, res := serve(c.AddInventoryItem, jsonRequest(http.MethodPost, "/api/inventory", body), owner, nil); code != http.StatusCreated {
		t.Fatalf("first add = %d %q", code, res.Message)
	}
	code, res := serve(c.AddInventoryItem, jsonRequest(http.MethodPost, "/api/inventory", `{"name":"rice","quantity":1,"unit":"kg"}`), owner, nil)
	if code != http.StatusConflict || res.Success || res.Message != "Item with this name already exists" {
		t.Fatalf("duplicate add = %d %q", code, res.Message)
	}
	var existing models.InventoryItem
	if err := json.Unmarshal(res.ExistingItem, &existing); err != nil || existing.Name != "Rice" {
		t.Fatalf("existingItem = %s (%v)", res.ExistingItem, err)
	}
}

func TestAvailabilityRequiresFlag(t *testing.T) {
	c := newController()
	owner := ownerUser()
	code, res := serve(c.AddMenuItem, jsonRequest(http.MethodPost, "/api/menu/items", `{"name":"Dosa","price":80}`), owner, nil)
	if code != http.StatusCreated {
		t.Fatalf("add = %d %q", code, res.Message)
	}
	var added struct {
		Item models.MenuItem `json:"item"`
	}
	_ = json.Unmarshal(res.Data, &added)
	vars := map[string]string{"id": added.Item.ID.Hex()}

	if code, _ := serve(c.SetMenuItemAvailability, jsonRequest(http.MethodPatch, "/", `{}`), owner, vars); code != http.StatusBadRequest {
		t.Fatalf("missing flag = %d", code)
	}
	code, res = serve(c.SetMenuItemAvailability, jsonRequest(http.MethodPatch, "/", `{"isAvailable":false}`), owner, vars)
	var updated struct {
		Item models.MenuItem `json:"item"`
	}
	_ = json.Unmarshal(res.Data, &updated)
	if code != http.StatusOK || updated.Item.IsAvailable {
		t.Fatalf("toggle = %d %+v", code, updated.Item)
	}
}

func TestErrorDetailOnlyOutsideProduction(t *testing.T) {
	c := newController()
	bad := func() *http.Request { return jsonRequest(http.MethodPost, "/api/inventory", `{"name":`) }

	c.Detail = true
	if code, res := serve(c.AddInventoryItem, bad(), ownerUser(), nil); code != http.StatusBadRequest || res.Error == "" {
		t.Fatalf("development response = %d, error %q", code, res.Error)
	}
	c.Detail = false
	if _, res := serve(c.AddInventoryItem, bad(), ownerUser(), nil); res.Error != "" {
		t.Fatalf("production response leaks detail: %q", res.Error)
	}
}

func TestPushTestWithoutKeys(t *testing.T) {
	c := newController()
	code, res := serve(c.PushTest, httptest.NewRequest(http.MethodPost, "/api/push/test", nil), nil, nil)
	if code < 500 || res.Message != "Push notifications are not configured" {
		t.Fatalf("push test = %d %q", code, res.Message)
	}
	if code, res := serve(c.PushPublicKey, httptest.NewRequest(http.MethodGet, "/api/push/public-key", nil), nil, nil); code != http.StatusOK || !res.Success {
		t.Fatalf("public key = %d", code)
	}
}
