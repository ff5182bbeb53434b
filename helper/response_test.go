package helper

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
)

func TestFailUsesKindStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, apperrors.Wrap(apperrors.KindNotFound, "Order not found", errors.New("no documents")), false)

	var body Envelope
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if rec.Code != http.StatusNotFound || body.Success || body.Message != "Order not found" || body.Error != "" {
		t.Fatalf("%d %+v", rec.Code, body)
	}

	rec = httptest.NewRecorder()
	Fail(rec, errors.New("socket closed"), true)
	body = Envelope{}
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if rec.Code != http.StatusInternalServerError || body.Message != "Server Error" || body.Error != "socket closed" {
		t.Fatalf("%d %+v", rec.Code, body)
	}
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "Created", map[string]int{"n": 1})
	if rec.Code != http.StatusCreated || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("%d %v", rec.Code, rec.Header())
	}
	if got := rec.Body.String(); got != `{"success":true,"message":"Created","data":{"n":1}}`+"\n" {
		t.Fatalf("body = %s", got)
	}
}
