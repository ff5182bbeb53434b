package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
)

type authFunc func(ctx context.Context, bearer string) (*models.User, error)

func (f authFunc) Authenticate(ctx context.Context, bearer string) (*models.User, error) {
	return f(ctx, bearer)
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Success {
		t.Fatal("error response marked success")
	}
	return body.Message
}

func TestAuthentication(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Role: models.RoleOwner}
	auth := authFunc(func(_ context.Context, bearer string) (*models.User, error) {
		if bearer == "good" {
			return owner, nil
		}
		return nil, apperrors.Unauthorized("Not authorized, token failed")
	})
	var seen *models.User
	h := Authentication(auth, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	}))

	tests := []struct {
		header string
		status int
		msg    string
	}{
		{"", http.StatusUnauthorized, "Not authorized, no token"},
		{"good", http.StatusUnauthorized, "Invalid Authorization format"},
		{"Basic good", http.StatusUnauthorized, "Invalid Authorization format"},
		{"Bearer bad", http.StatusUnauthorized, "Not authorized, token failed"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Fatalf("%q: status = %d", tt.header, rec.Code)
		}
		if got := message(t, rec); got != tt.msg {
			t.Fatalf("%q: message = %q", tt.header, got)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != owner {
		t.Fatalf("status = %d, principal = %v", rec.Code, seen)
	}
}

func TestRequireOwner(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireOwner(false)(ok)

	for role, want := range map[string]int{
		models.RoleOwner: http.StatusNoContent,
		models.RoleAdmin: http.StatusNoContent,
		models.RoleStaff: http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/staff", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: status = %d, want %d", role, rec.Code, want)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/staff", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d", rec.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logger.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("id = %q, header = %q", got, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got == "" || got == "abc-123" || rec.Header().Get(RequestIDHeader) != got {
		t.Fatalf("generated id = %q", got)
	}
}

func TestRecoverWritesServerError(t *testing.T) {
	h := Recover(logger.Nop(), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := message(t, rec); got != "Server Error" {
		t.Fatalf("message = %q", got)
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	h := Logging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := CORS([]string{"https://app.example.com"})(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("preflight = %d %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin = %d %v", rec.Code, rec.Header())
	}
}
