package menu

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	openaiURL   = "https://api.openai.com/v1/chat/completions"
	openaiModel = "gpt-4o"
	groqURL     = "https://api.groq.com/openai/v1/chat/completions"
	groqModel   = "llama-3.2-90b-vision-preview"

	maxResponseTokens = 3000
)

const extractPrompt = `Extract ALL menu items from this menu. Return ONLY a valid JSON array of objects with this exact structure:
[{"name": "item name", "description": "item description or empty string", "price": 0.00, "currency": "INR", "category": "category name"}]

Rules:
- Price must be a number without currency symbols
- Currency is the 3-letter code implied by the menu ($ USD, ₹ or Rs INR, € EUR, £ GBP); use USD when unclear
- Category is one of: appetizers, mains, desserts, beverages, sides, uncategorized
- Return ONLY the JSON array, no other text`

// ChatCompletion is an Extractor over any OpenAI-compatible chat completion
// endpoint. Images are sent inline as data URLs.
type ChatCompletion struct {
	name   string
	url    string
	model  string
	apiKey string
	client *http.Client
}

func NewOpenAI(apiKey string, client *http.Client) *ChatCompletion {
	return NewChatCompletion("openai", openaiURL, openaiModel, apiKey, client)
}

func NewGroq(apiKey string, client *http.Client) *ChatCompletion {
	return NewChatCompletion("groq", groqURL, groqModel, apiKey, client)
}

func NewChatCompletion(name, url, model, apiKey string, client *http.Client) *ChatCompletion {
	if client == nil {
		client = http.DefaultClient
	}
	return &ChatCompletion{name: name, url: url, model: model, apiKey: apiKey, client: client}
}

func (c *ChatCompletion) Name() string { return c.name }

type chatPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string     `json:"role"`
	Content []chatPart `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ChatCompletion) TryExtract(ctx context.Context, src Source) ([]ExtractedItem, error) {
	parts := []chatPart{{Type: "text", Text: extractPrompt}}
	switch {
	case src.IsImage() && len(src.Data) > 0:
		url := "data:" + src.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(src.Data)
		parts = append(parts, chatPart{Type: "image_url", ImageURL: &chatImageURL{URL: url}})
	case src.Text != "":
		parts[0].Text += "\n\nMenu text:\n" + src.Text
	default:
		return nil, nil
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: parts}},
		Temperature: 0.1,
		MaxTokens:   maxResponseTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", c.name, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%s API error (%d): %s", c.name, resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%s API error (%d): %s", c.name, resp.StatusCode, string(raw))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", c.name, err)
	}
	if len(out.Choices) == 0 {
		return nil, nil
	}
	return parseItemsJSON(out.Choices[0].Message.Content)
}

// flexPrice accepts 120, 120.5 and "120.50".
type flexPrice float64

func (p *flexPrice) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*p = 0
		return nil
	}
	*p = flexPrice(v)
	return nil
}

// parseItemsJSON finds the JSON array in a model reply, tolerating markdown
// fences and prose around it.
func parseItemsJSON(reply string) ([]ExtractedItem, error) {
	reply = strings.ReplaceAll(reply, "```json", "")
	reply = strings.ReplaceAll(reply, "```", "")
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, nil
	}

	var raw []struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Price       flexPrice `json:"price"`
		Currency    string    `json:"currency"`
		Category    string    `json:"category"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	items := make([]ExtractedItem, 0, len(raw))
	for _, r := range raw {
		currency := r.Currency
		if currency == "" {
			currency = "USD"
		}
		items = append(items, ExtractedItem{
			Name:        r.Name,
			Description: r.Description,
			Price:       float64(r.Price),
			Currency:    currency,
			Category:    r.Category,
		})
	}
	return items, nil
}
