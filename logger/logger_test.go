package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestErrorLineShape(t *testing.T) {
	var buf bytes.Buffer
	log := New("qrmenu", &buf, false)

	log.Error("req-1", "sms_failed", "SMS delivery failed", errors.New("gateway down"), "phone", "+919999999999")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["service"] != "qrmenu" || entry["action"] != "sms_failed" || entry["request_id"] != "req-1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	errEntry, ok := entry["error"].(map[string]any)
	if !ok || errEntry["msg"] != "gateway down" {
		t.Fatalf("missing error group: %v", entry)
	}
	if entry["phone"] != "+919999999999" {
		t.Fatalf("missing extra attribute: %v", entry)
	}
}

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := New("qrmenu", &buf, false)
	log.Debug("", "noise", "should not appear")
	if buf.Len() != 0 {
		t.Fatalf("debug line written: %s", buf.String())
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("RequestID = %q", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("RequestID on empty ctx = %q", got)
	}
}
