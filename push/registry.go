// Package push stores web push subscriptions and delivers notifications to
// every subscription of a tenant or a customer phone.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
)

type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon,omitempty"`
	Badge string         `json:"badge,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

type SubscribeInput struct {
	Endpoint string          `json:"endpoint" validate:"required"`
	Keys     models.PushKeys `json:"keys"`
	UserID   string          `json:"userId"`
	Phone    string          `json:"phone"`
}

// Outcome summarises one fan-out. Failures holds one error per subscription
// that did not accept the payload.
type Outcome struct {
	Attempted int
	Delivered int
	Removed   int
	Failures  []error
}

// ErrGone marks a subscription the push service reported as expired.
var ErrGone = errors.New("subscription gone")

type Registry struct {
	subs      store.PushSubscriptions
	transport Transport
	publicKey string
	log       *logger.Logger
	now       func() time.Time
}

// NewRegistry builds a registry. A nil transport disables delivery while
// still accepting subscriptions.
func NewRegistry(subs store.PushSubscriptions, transport Transport, publicKey string, log *logger.Logger) *Registry {
	return &Registry{subs: subs, transport: transport, publicKey: publicKey, log: log, now: time.Now}
}

func (r *Registry) PublicKey() string { return r.publicKey }

func (r *Registry) Enabled() bool { return r.transport != nil }

func (r *Registry) Subscribe(ctx context.Context, in SubscribeInput) (*models.PushSubscription, error) {
	if err := helper.Validate(in); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "Invalid subscription", err)
	}
	now := r.now()
	sub := &models.PushSubscription{
		Endpoint:  in.Endpoint,
		Keys:      in.Keys,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.UserID != "" {
		id, err := primitive.ObjectIDFromHex(in.UserID)
		if err != nil {
			return nil, apperrors.Validation("Invalid subscription")
		}
		sub.UserID = &id
	}
	saved, err := r.subs.Upsert(ctx, sub)
	if err != nil {
		return nil, apperrors.Internal("Error saving subscription", err)
	}
	return saved, nil
}

func (r *Registry) SendToTenant(ctx context.Context, tenantID primitive.ObjectID, p Payload) (Outcome, error) {
	if !r.Enabled() || tenantID.IsZero() {
		return Outcome{}, nil
	}
	subs, err := r.subs.FindByUser(ctx, tenantID)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading tenant subscriptions: %w", err)
	}
	return r.deliverAll(ctx, subs, p)
}

func (r *Registry) SendToPhone(ctx context.Context, phone string, p Payload) (Outcome, error) {
	if !r.Enabled() || phone == "" {
		return Outcome{}, nil
	}
	subs, err := r.subs.FindByPhone(ctx, phone)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading phone subscriptions: %w", err)
	}
	return r.deliverAll(ctx, subs, p)
}

// Test sends a test notification to the most recent subscription.
func (r *Registry) Test(ctx context.Context, message string) error {
	if !r.Enabled() {
		return apperrors.Configuration("Push notifications are not configured")
	}
	sub, err := r.subs.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("No subscription saved")
	}
	if err != nil {
		return apperrors.Internal("Error loading subscription", err)
	}
	if message == "" {
		message = "This is a test push notification"
	}
	p := Payload{Title: "QR Menu Test", Body: message, Icon: "/favicon.ico", Badge: "/favicon.ico", Data: map[string]any{"url": "/"}}
	body, _ := json.Marshal(p)
	if err := r.deliver(ctx, *sub, body); err != nil {
		return apperrors.Upstream("Push delivery failed", err)
	}
	return nil
}

// deliverAll attempts every subscription concurrently and waits for all of
// them to settle. One failure never cancels the others.
func (r *Registry) deliverAll(ctx context.Context, subs []models.PushSubscription, p Payload) (Outcome, error) {
	out := Outcome{Attempted: len(subs)}
	if len(subs) == 0 {
		return out, nil
	}
	body, err := json.Marshal(p)
	if err != nil {
		return out, fmt.Errorf("encoding payload: %w", err)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			err := r.deliver(ctx, sub, body)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out.Delivered++
			case errors.Is(err, ErrGone):
				out.Removed++
				out.Failures = append(out.Failures, err)
			default:
				out.Failures = append(out.Failures, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// deliver sends to one subscription, deleting it when the push service says
// it no longer exists.
func (r *Registry) deliver(ctx context.Context, sub models.PushSubscription, body []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("push transport panic: %v", rec)
		}
	}()

	status, err := r.transport.Send(ctx, sub, body)
	if err != nil {
		return fmt.Errorf("sending to %s: %w", sub.Endpoint, err)
	}
	switch {
	case status == http.StatusGone || status == http.StatusNotFound:
		if delErr := r.subs.Delete(ctx, sub.ID); delErr != nil && !errors.Is(delErr, store.ErrNotFound) {
			r.log.Warn(logger.RequestID(ctx), "push_cleanup", "failed to delete gone subscription", "endpoint", sub.Endpoint, "error", delErr.Error())
		}
		return fmt.Errorf("%w: %s returned %d", ErrGone, sub.Endpoint, status)
	case status >= 400:
		return fmt.Errorf("push service %s returned %d", sub.Endpoint, status)
	}
	return nil
}
