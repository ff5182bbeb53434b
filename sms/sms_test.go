package sms

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct{ in, code, want string }{
		{"9876543210", "+91", "+919876543210"},
		{"+14155550100", "+91", "+14155550100"},
		{" 9876543210 ", "", "+919876543210"},
		{"5550100", "+1", "+15550100"},
		{"", "+91", ""},
	}
	for _, tt := range tests {
		if got := FormatPhone(tt.in, tt.code); got != tt.want {
			t.Errorf("FormatPhone(%q, %q) = %q, want %q", tt.in, tt.code, got, tt.want)
		}
	}
}

func TestNewPicksSimulatorWithoutAccount(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("test", &buf, false)

	gw := New(config.SMSConfig{AccountSID: "SK123", AuthToken: "t"}, log)
	if _, ok := gw.(*Simulator); !ok {
		t.Fatalf("gateway = %T, want *Simulator", gw)
	}
	receipt, err := gw.Send(context.Background(), "999", "hello")
	if err != nil || !receipt.Simulated {
		t.Fatalf("receipt = %+v, %v", receipt, err)
	}
	if !strings.Contains(buf.String(), `"action":"sms_simulated"`) {
		t.Fatalf("log = %s", buf.String())
	}

	if gw := New(config.SMSConfig{AccountSID: "AC123", AuthToken: "t", FromNumber: "+1"}, log); gw == nil {
		t.Fatal("nil gateway")
	} else if _, ok := gw.(*Twilio); !ok {
		t.Fatalf("gateway = %T, want *Twilio", gw)
	}
}

func TestTwilioHonoursCancelledContext(t *testing.T) {
	gw := NewTwilio(config.SMSConfig{AccountSID: "AC123", AuthToken: "t"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gw.Send(ctx, "999", "x"); err == nil {
		t.Fatal("expected context error")
	}
}
