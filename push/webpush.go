package push

import (
	"context"
	"io"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
)

// Transport delivers one encrypted payload and reports the push service's
// HTTP status.
type Transport interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error)
}

type WebPush struct {
	cfg    config.PushConfig
	client *http.Client
	ttl    int
}

func NewWebPush(cfg config.PushConfig, client *http.Client) *WebPush {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebPush{cfg: cfg, client: client, ttl: 60 * 60 * 24}
}

func (w *WebPush) Send(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Keys.Auth,
			P256dh: sub.Keys.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      w.client,
		Subscriber:      strings.TrimPrefix(w.cfg.VAPIDSubject, "mailto:"),
		VAPIDPublicKey:  w.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: w.cfg.VAPIDPrivateKey,
		TTL:             w.ttl,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// GenerateKeys returns a fresh VAPID key pair (private, public).
func GenerateKeys() (string, string, error) {
	return webpush.GenerateVAPIDKeys()
}
