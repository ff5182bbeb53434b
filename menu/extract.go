package menu

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
)

const (
	MethodVision = "ai_vision"
	MethodText   = "text_parse"
)

// Source is one uploaded menu. Text is set for plain-text uploads or when
// the caller already has the menu as text.
type Source struct {
	Filename string
	MIMEType string
	Data     []byte
	Text     string
}

func (s Source) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(s.MIMEType), "image/")
}

type ExtractedItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	Category    string  `json:"category"`
}

// Extractor pulls draft items out of a source. A provider that cannot handle
// the source returns no items and no error.
type Extractor interface {
	Name() string
	TryExtract(ctx context.Context, src Source) ([]ExtractedItem, error)
}

// Extraction is returned for review; nothing is persisted.
type Extraction struct {
	Items         []ExtractedItem `json:"items"`
	Method        string          `json:"method,omitempty"`
	Provider      string          `json:"provider,omitempty"`
	ExtractedText string          `json:"extractedText,omitempty"`
}

// Chain tries providers in order, each bounded by timeout, and falls back to
// the line parser when the source carries text.
type Chain struct {
	providers []Extractor
	timeout   time.Duration
	log       *logger.Logger
}

func NewChain(timeout time.Duration, log *logger.Logger, providers ...Extractor) *Chain {
	return &Chain{providers: providers, timeout: timeout, log: log}
}

// Providers builds the configured providers in fallback order. Providers
// without an API key are left out.
func Providers(cfg config.AIConfig, client *http.Client) []Extractor {
	var out []Extractor
	for _, name := range cfg.Providers {
		switch name {
		case "openai":
			if cfg.OpenAIAPIKey != "" {
				out = append(out, NewOpenAI(cfg.OpenAIAPIKey, client))
			}
		case "groq":
			if cfg.GroqAPIKey != "" {
				out = append(out, NewGroq(cfg.GroqAPIKey, client))
			}
		}
	}
	return out
}

func (c *Chain) Extract(ctx context.Context, src Source) (*Extraction, error) {
	requestID := logger.RequestID(ctx)
	mime := strings.ToLower(src.MIMEType)
	switch {
	case src.IsImage():
	case strings.HasPrefix(mime, "text/"):
		if src.Text == "" {
			src.Text = string(src.Data)
		}
	case mime == "application/pdf":
		return nil, apperrors.Validation("Failed to parse PDF file. Please upload the menu as an image or text")
	case src.Text == "":
		return nil, apperrors.Validation("Unsupported file type. Please upload an image or text file")
	}

	for _, p := range c.providers {
		items, err := c.try(ctx, p, src)
		if err != nil {
			c.log.Warn(requestID, "menu_extract_failed", "provider failed, trying next",
				"provider", p.Name(), "error", err.Error())
			continue
		}
		if items = clean(items); len(items) > 0 {
			c.log.Info(requestID, "menu_extracted", "menu items extracted",
				"provider", p.Name(), "count", len(items))
			return &Extraction{Items: items, Method: MethodVision, Provider: p.Name(), ExtractedText: src.Text}, nil
		}
	}

	if src.Text == "" {
		return nil, apperrors.Upstream("Could not extract menu items from the upload", nil)
	}
	return &Extraction{Items: ParseText(src.Text), Method: MethodText, ExtractedText: src.Text}, nil
}

// try races one provider against the timeout so a provider that ignores ctx
// cannot hold the request.
func (c *Chain) try(ctx context.Context, p Extractor, src Source) ([]ExtractedItem, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type result struct {
		items []ExtractedItem
		err   error
	}
	done := make(chan result, 1)
	go func() {
		items, err := p.TryExtract(ctx, src)
		done <- result{items, err}
	}()

	select {
	case r := <-done:
		return r.items, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func clean(items []ExtractedItem) []ExtractedItem {
	out := items[:0]
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			it.Name = "Unnamed Item"
		}
		if it.Price < 0 {
			it.Price = 0
		}
		it.Currency = strings.ToUpper(strings.TrimSpace(it.Currency))
		it.Category = normalizeCategory(it.Category)
		out = append(out, it)
	}
	return out
}
