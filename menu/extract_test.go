package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
)

type MockExtractor struct {
	name        string
	ExtractFunc func(ctx context.Context, src Source) ([]ExtractedItem, error)
	calls       int
}

func (m *MockExtractor) Name() string { return m.name }

func (m *MockExtractor) TryExtract(ctx context.Context, src Source) ([]ExtractedItem, error) {
	m.calls++
	return m.ExtractFunc(ctx, src)
}

var photo = Source{Filename: "menu.png", MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

func returning(items ...ExtractedItem) func(context.Context, Source) ([]ExtractedItem, error) {
	return func(context.Context, Source) ([]ExtractedItem, error) { return items, nil }
}

func TestChainFallsThroughFailingProvider(t *testing.T) {
	failing := &MockExtractor{name: "openai", ExtractFunc: func(context.Context, Source) ([]ExtractedItem, error) {
		return nil, errors.New("rate limited")
	}}
	working := &MockExtractor{name: "groq", ExtractFunc: returning(ExtractedItem{Name: "Dal", Price: 150, Category: "Mains"})}

	got, err := NewChain(time.Second, logger.Nop(), failing, working).Extract(context.Background(), photo)
	if err != nil {
		t.Fatal(err)
	}
	if got.Method != MethodVision || got.Provider != "groq" || len(got.Items) != 1 || got.Items[0].Category != "mains" {
		t.Errorf("extraction = %+v", got)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("calls = %d, %d", failing.calls, working.calls)
	}
}

func TestChainTimesOutHungProvider(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	hung := &MockExtractor{name: "hung", ExtractFunc: func(context.Context, Source) ([]ExtractedItem, error) {
		<-release
		return []ExtractedItem{{Name: "late"}}, nil
	}}
	fast := &MockExtractor{name: "fast", ExtractFunc: returning(ExtractedItem{Name: "Tea", Price: 20})}

	start := time.Now()
	got, err := NewChain(20*time.Millisecond, logger.Nop(), hung, fast).Extract(context.Background(), photo)
	if err != nil {
		t.Fatal(err)
	}
	if got.Provider != "fast" {
		t.Errorf("provider = %q", got.Provider)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("chain waited %v for a hung provider", elapsed)
	}
}

func TestChainFallsBackToTextParser(t *testing.T) {
	empty := &MockExtractor{name: "openai", ExtractFunc: returning()}
	src := Source{MIMEType: "text/plain", Data: []byte("Masala Chai Rs 40\n")}

	got, err := NewChain(time.Second, logger.Nop(), empty).Extract(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if got.Method != MethodText || len(got.Items) != 1 || got.Items[0].Price != 40 || got.ExtractedText == "" {
		t.Errorf("extraction = %+v", got)
	}
}

func TestChainTextWithoutItemsIsReviewable(t *testing.T) {
	got, err := NewChain(time.Second, logger.Nop()).Extract(context.Background(), Source{Text: "Welcome!\nOpen daily"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 0 || got.Items == nil || got.ExtractedText == "" {
		t.Errorf("extraction = %+v", got)
	}
}

func TestChainErrors(t *testing.T) {
	failing := &MockExtractor{name: "openai", ExtractFunc: func(context.Context, Source) ([]ExtractedItem, error) {
		return nil, errors.New("boom")
	}}
	chain := NewChain(time.Second, logger.Nop(), failing)
	ctx := context.Background()

	if _, err := chain.Extract(ctx, photo); !apperrors.Is(err, apperrors.KindUpstream) {
		t.Errorf("image with no result err = %v, want upstream", err)
	}
	if _, err := chain.Extract(ctx, Source{MIMEType: "application/pdf", Data: []byte("%PDF")}); !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("pdf err = %v, want validation", err)
	}
	if _, err := chain.Extract(ctx, Source{MIMEType: "application/zip"}); !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("zip err = %v, want validation", err)
	}
}

func TestCleanNormalizesItems(t *testing.T) {
	got := clean([]ExtractedItem{{Name: "  ", Price: -3, Currency: "inr", Category: "Desserts"}})
	want := ExtractedItem{Name: "Unnamed Item", Price: 0, Currency: "INR", Category: "desserts"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("clean = %+v, want %+v", got, want)
	}
}

func TestProvidersFollowConfiguredOrder(t *testing.T) {
	got := Providers(config.AIConfig{Providers: []string{"groq", "openai", "gemini"}, OpenAIAPIKey: "k"}, nil)
	if len(got) != 1 || got[0].Name() != "openai" {
		t.Fatalf("providers = %v", got)
	}

	got = Providers(config.AIConfig{Providers: []string{"groq", "openai"}, OpenAIAPIKey: "k", GroqAPIKey: "g"}, nil)
	if len(got) != 2 || got[0].Name() != "groq" || got[1].Name() != "openai" {
		t.Errorf("providers = %v", got)
	}
}

func TestParseText(t *testing.T) {
	text := `STARTERS
1. Paneer Tikka ....... ₹250
Smoky cottage cheese cubes
Veg Soup - 120.00

BEVERAGES
Masala Chai Rs 40
ok`

	got := ParseText(text)
	want := []ExtractedItem{
		{Name: "Paneer Tikka", Description: "Smoky cottage cheese cubes", Price: 250, Category: "appetizers"},
		{Name: "Veg Soup", Price: 120, Category: "appetizers"},
		{Name: "Masala Chai", Price: 40, Category: "beverages"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d items: %+v", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseTextPriceFormats(t *testing.T) {
	tests := []struct {
		line  string
		name  string
		price float64
	}{
		{"Burger $5.5", "Burger", 5.5},
		{"Lemonade 3,50", "Lemonade", 3.5},
		{"Thali INR 199", "Thali", 199},
		{"Samosa 15/-", "Samosa", 15},
		{"Combo 99 only", "Combo", 99},
	}
	for _, tt := range tests {
		got := ParseText(tt.line)
		if len(got) != 1 || got[0].Name != tt.name || got[0].Price != tt.price {
			t.Errorf("ParseText(%q) = %+v", tt.line, got)
		}
	}
}
