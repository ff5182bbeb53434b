package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store/memstore"
)

type MockTransport struct {
	SendFunc func(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error)

	mu   sync.Mutex
	sent []string
}

func (m *MockTransport) Send(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error) {
	m.mu.Lock()
	m.sent = append(m.sent, sub.Endpoint)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, sub, payload)
	}
	return http.StatusCreated, nil
}

func keys() models.PushKeys { return models.PushKeys{P256dh: "p", Auth: "a"} }

func TestSubscribeValidation(t *testing.T) {
	r := NewRegistry(memstore.NewPushSubscriptions(), &MockTransport{}, "pub", logger.Nop())
	ctx := context.Background()
	for _, in := range []SubscribeInput{
		{Keys: keys()},
		{Endpoint: "https://push/1"},
		{Endpoint: "https://push/1", Keys: models.PushKeys{P256dh: "p"}},
		{Endpoint: "https://push/1", Keys: keys(), UserID: "not-hex"},
	} {
		if _, err := r.Subscribe(ctx, in); !apperrors.Is(err, apperrors.KindValidation) {
			t.Errorf("Subscribe(%+v) err = %v", in, err)
		}
	}
	tenantID := primitive.NewObjectID()
	sub, err := r.Subscribe(ctx, SubscribeInput{Endpoint: "https://push/1", Keys: keys(), UserID: tenantID.Hex()})
	if err != nil {
		t.Fatal(err)
	}
	if sub.UserID == nil || *sub.UserID != tenantID {
		t.Fatalf("sub = %+v", sub)
	}
}

func TestSendToPhoneOneFailureDoesNotStopOthers(t *testing.T) {
	subs := memstore.NewPushSubscriptions()
	ctx := context.Background()
	for _, ep := range []string{"https://push/bad", "https://push/good"} {
		_, _ = subs.Upsert(ctx, &models.PushSubscription{Endpoint: ep, Keys: keys(), Phone: "999"})
	}
	transport := &MockTransport{SendFunc: func(_ context.Context, sub models.PushSubscription, _ []byte) (int, error) {
		if sub.Endpoint == "https://push/bad" {
			return 0, errors.New("connection reset")
		}
		return http.StatusCreated, nil
	}}
	r := NewRegistry(subs, transport, "pub", logger.Nop())

	out, err := r.SendToPhone(ctx, "999", Payload{Title: "Order Update"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Attempted != 2 || out.Delivered != 1 || len(out.Failures) != 1 {
		t.Fatalf("outcome = %+v", out)
	}
	if got, _ := subs.FindByPhone(ctx, "999"); len(got) != 2 {
		t.Fatal("transient failure must not delete the subscription")
	}
}

func TestGoneSubscriptionIsDeleted(t *testing.T) {
	subs := memstore.NewPushSubscriptions()
	ctx := context.Background()
	tenantID := primitive.NewObjectID()
	_, _ = subs.Upsert(ctx, &models.PushSubscription{Endpoint: "https://push/gone", Keys: keys(), UserID: &tenantID})
	_, _ = subs.Upsert(ctx, &models.PushSubscription{Endpoint: "https://push/missing", Keys: keys(), UserID: &tenantID})
	_, _ = subs.Upsert(ctx, &models.PushSubscription{Endpoint: "https://push/broken", Keys: keys(), UserID: &tenantID})
	status := map[string]int{"https://push/gone": 410, "https://push/missing": 404, "https://push/broken": 500}
	transport := &MockTransport{SendFunc: func(_ context.Context, sub models.PushSubscription, _ []byte) (int, error) {
		return status[sub.Endpoint], nil
	}}
	r := NewRegistry(subs, transport, "pub", logger.Nop())

	out, err := r.SendToTenant(ctx, tenantID, Payload{Title: "New Order Received"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Removed != 2 || len(out.Failures) != 3 {
		t.Fatalf("outcome = %+v", out)
	}
	left, _ := subs.FindByUser(ctx, tenantID)
	if len(left) != 1 || left[0].Endpoint != "https://push/broken" {
		t.Fatalf("left = %+v", left)
	}
}

func TestDeliveryRunsConcurrently(t *testing.T) {
	subs := memstore.NewPushSubscriptions()
	ctx := context.Background()
	for _, ep := range []string{"https://push/1", "https://push/2"} {
		_, _ = subs.Upsert(ctx, &models.PushSubscription{Endpoint: ep, Keys: keys(), Phone: "999"})
	}
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	transport := &MockTransport{SendFunc: func(context.Context, models.PushSubscription, []byte) (int, error) {
		arrived <- struct{}{}
		<-release
		return http.StatusCreated, nil
	}}
	r := NewRegistry(subs, transport, "pub", logger.Nop())

	done := make(chan Outcome)
	go func() {
		out, _ := r.SendToPhone(ctx, "999", Payload{})
		done <- out
	}()
	for i := 0; i < 2; i++ {
		select {
		case <-arrived:
		case <-time.After(5 * time.Second):
			t.Fatal("deliveries are sequential")
		}
	}
	close(release)
	if out := <-done; out.Delivered != 2 {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestTest(t *testing.T) {
	ctx := context.Background()
	subs := memstore.NewPushSubscriptions()
	var payload Payload
	transport := &MockTransport{SendFunc: func(_ context.Context, _ models.PushSubscription, body []byte) (int, error) {
		_ = json.Unmarshal(body, &payload)
		return http.StatusCreated, nil
	}}
	r := NewRegistry(subs, transport, "pub", logger.Nop())

	if err := r.Test(ctx, ""); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("no subscription err = %v", err)
	}
	_, _ = subs.Upsert(ctx, &models.PushSubscription{Endpoint: "https://push/1", Keys: keys(), CreatedAt: time.Now()})
	if err := r.Test(ctx, "hello"); err != nil {
		t.Fatal(err)
	}
	if payload.Title != "QR Menu Test" || payload.Body != "hello" {
		t.Fatalf("payload = %+v", payload)
	}

	disabled := NewRegistry(subs, nil, "", logger.Nop())
	if err := disabled.Test(ctx, ""); !apperrors.Is(err, apperrors.KindConfiguration) {
		t.Fatalf("disabled err = %v", err)
	}
	if out, err := disabled.SendToPhone(ctx, "999", Payload{}); err != nil || out.Attempted != 0 {
		t.Fatalf("disabled send = %+v, %v", out, err)
	}
}

func TestWebPushReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			t.Error("missing VAPID authorization")
		}
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	private, public, err := GenerateKeys()
	if err != nil {
		t.Fatal(err)
	}
	wp := NewWebPush(config.PushConfig{VAPIDPublicKey: public, VAPIDPrivateKey: private, VAPIDSubject: "mailto:admin@example.com"}, srv.Client())

	// User agent keys from the RFC 8291 worked example.
	sub := models.PushSubscription{
		Endpoint: srv.URL + "/push",
		Keys: models.PushKeys{
			P256dh: "BCVxsr7N_eNgVRqvHtD0zTZsEc6-VV-JvLexhqUzORcxaOzi6-AYWXvTBHm4bjyPjs7Vd8pZGH6SRpkNtoIAiw4",
			Auth:   "BTBZMqHH6r4Tts7J_aSIgg",
		},
	}
	status, err := wp.Send(context.Background(), sub, []byte(`{"title":"t"}`))
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusGone {
		t.Fatalf("status = %d", status)
	}
}
