// Package sms sends text messages through Twilio, or logs them when no
// account is configured.
package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
)

type Receipt struct {
	ID        string
	To        string
	Simulated bool
}

type Gateway interface {
	Send(ctx context.Context, to, body string) (Receipt, error)
}

// New returns a Twilio gateway when cfg is usable, otherwise a Simulator.
func New(cfg config.SMSConfig, log *logger.Logger) Gateway {
	if cfg.Enabled() {
		return NewTwilio(cfg)
	}
	log.Info("", "sms_init", "Twilio not configured, SMS will be simulated")
	return &Simulator{log: log}
}

// FormatPhone prefixes numbers without a country code.
func FormatPhone(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	if countryCode == "" {
		countryCode = "+91"
	}
	return countryCode + phone
}

type Twilio struct {
	client      *twilio.RestClient
	from        string
	countryCode string
}

func NewTwilio(cfg config.SMSConfig) *Twilio {
	return &Twilio{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from:        cfg.FromNumber,
		countryCode: cfg.DefaultCountryCode,
	}
}

// Send posts one message. The Twilio client has no context support, so ctx
// is only checked before the call.
func (t *Twilio) Send(ctx context.Context, to, body string) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	to = FormatPhone(to, t.countryCode)

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return Receipt{To: to}, fmt.Errorf("twilio: %w", err)
	}
	r := Receipt{To: to}
	if resp.Sid != nil {
		r.ID = *resp.Sid
	}
	return r, nil
}

// Simulator logs messages instead of sending them.
type Simulator struct {
	log *logger.Logger
}

func NewSimulator(log *logger.Logger) *Simulator {
	return &Simulator{log: log}
}

func (s *Simulator) Send(ctx context.Context, to, body string) (Receipt, error) {
	s.log.Info(logger.RequestID(ctx), "sms_simulated", "SMS simulated", "to", to, "body", body)
	return Receipt{To: to, Simulated: true}, nil
}
