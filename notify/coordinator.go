// Package notify fans lifecycle events out to the realtime rooms, web push
// and SMS. Every channel is best effort: failures are logged here and never
// reach the code that changed the order.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/02priyeshraj/QR_Menu_Backend/events"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/push"
	"github.com/02priyeshraj/QR_Menu_Backend/realtime"
	"github.com/02priyeshraj/QR_Menu_Backend/sms"
)

type Channel string

const (
	ChannelRealtime Channel = "realtime"
	ChannelPush     Channel = "push"
	ChannelSMS      Channel = "sms"
)

// Result is the outcome of one delivery attempt on one channel.
type Result struct {
	Channel   Channel
	Target    string
	Delivered int
	Err       error
}

type Broadcaster interface {
	Broadcast(room string, n realtime.Notification) int
}

type PushSender interface {
	SendToTenant(ctx context.Context, tenantID primitive.ObjectID, p push.Payload) (push.Outcome, error)
	SendToPhone(ctx context.Context, phone string, p push.Payload) (push.Outcome, error)
}

type Coordinator struct {
	rooms Broadcaster
	push  PushSender
	sms   sms.Gateway
	log   *logger.Logger

	wg sync.WaitGroup
}

func NewCoordinator(rooms Broadcaster, pusher PushSender, gateway sms.Gateway, log *logger.Logger) *Coordinator {
	return &Coordinator{rooms: rooms, push: pusher, sms: gateway, log: log}
}

// Publish dispatches the event in the background and returns immediately.
// The request context's cancellation is dropped so a finished HTTP response
// does not abort delivery.
func (c *Coordinator) Publish(ctx context.Context, ev events.Event) {
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Handle(ctx, ev)
	}()
}

// Wait blocks until every published event has been handled.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Handle runs the three channels concurrently, waits for all of them and
// logs each result. It never fails.
func (c *Coordinator) Handle(ctx context.Context, ev events.Event) []Result {
	msg := compose(ev)

	var (
		mu      sync.Mutex
		results []Result
		g       errgroup.Group
	)
	run := func(ch Channel, fn func() []Result) {
		g.Go(func() error {
			rs := guard(ch, fn)
			mu.Lock()
			results = append(results, rs...)
			mu.Unlock()
			return nil
		})
	}
	run(ChannelRealtime, func() []Result { return c.broadcast(msg) })
	run(ChannelPush, func() []Result { return c.sendPush(ctx, msg) })
	run(ChannelSMS, func() []Result { return c.sendSMS(ctx, msg) })
	_ = g.Wait()

	c.report(ev, results)
	return results
}

// guard turns a panicking channel into a failed result.
func guard(ch Channel, fn func() []Result) (rs []Result) {
	defer func() {
		if rec := recover(); rec != nil {
			rs = append(rs, Result{Channel: ch, Err: fmt.Errorf("panic: %v", rec)})
		}
	}()
	return fn()
}

func (c *Coordinator) broadcast(msg message) []Result {
	if c.rooms == nil {
		return nil
	}
	out := make([]Result, 0, len(msg.rooms))
	for _, room := range msg.rooms {
		out = append(out, Result{Channel: ChannelRealtime, Target: room, Delivered: c.rooms.Broadcast(room, msg.notification)})
	}
	return out
}

func (c *Coordinator) sendPush(ctx context.Context, msg message) []Result {
	if c.push == nil || msg.pushTarget == "" {
		return nil
	}
	var (
		outcome push.Outcome
		err     error
	)
	if msg.pushTenant {
		id, idErr := primitive.ObjectIDFromHex(msg.pushTarget)
		if idErr != nil {
			return []Result{{Channel: ChannelPush, Target: msg.pushTarget, Err: idErr}}
		}
		outcome, err = c.push.SendToTenant(ctx, id, msg.payload)
	} else {
		outcome, err = c.push.SendToPhone(ctx, msg.pushTarget, msg.payload)
	}
	if err == nil && len(outcome.Failures) > 0 {
		err = errors.Join(outcome.Failures...)
	}
	return []Result{{Channel: ChannelPush, Target: msg.pushTarget, Delivered: outcome.Delivered, Err: err}}
}

func (c *Coordinator) sendSMS(ctx context.Context, msg message) []Result {
	if c.sms == nil {
		return nil
	}
	out := make([]Result, 0, len(msg.texts))
	for _, t := range msg.texts {
		if t.to == "" {
			continue
		}
		r := Result{Channel: ChannelSMS, Target: t.to}
		if _, err := c.sms.Send(ctx, t.to, t.body); err != nil {
			r.Err = err
		} else {
			r.Delivered = 1
		}
		out = append(out, r)
	}
	return out
}

func (c *Coordinator) report(ev events.Event, results []Result) {
	started := ev.At
	for _, r := range results {
		kv := []any{
			"event", string(ev.Kind),
			"order_id", ev.Order.ID.Hex(),
			"channel", string(r.Channel),
			"target", r.Target,
			"delivered", r.Delivered,
		}
		if r.Err != nil {
			c.log.Error(ev.RequestID, "notify_"+string(r.Channel), "notification delivery failed", r.Err, kv...)
			continue
		}
		c.log.Debug(ev.RequestID, "notify_"+string(r.Channel), "notification delivered", kv...)
	}
	if !started.IsZero() {
		c.log.Debug(ev.RequestID, "notify_done", "fan-out settled",
			"event", string(ev.Kind), "order_id", ev.Order.ID.Hex(), "duration_ms", time.Since(started).Milliseconds())
	}
}
