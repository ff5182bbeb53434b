package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port        string
	Env         string
	MongoURI    string
	DBName      string
	SecretKey   string
	TokenTTL    time.Duration
	BcryptCost  int
	FrontendURL string
	CORSOrigins []string
	Debug       bool

	Push    PushConfig
	SMS     SMSConfig
	AI      AIConfig
	Printer PrinterConfig
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
}

func (p PushConfig) Enabled() bool {
	return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

type SMSConfig struct {
	AccountSID         string
	AuthToken          string
	FromNumber         string
	DefaultCountryCode string
}

// Enabled mirrors the Twilio check: credentials present and a real account SID.
func (s SMSConfig) Enabled() bool {
	return s.AuthToken != "" && strings.HasPrefix(s.AccountSID, "AC")
}

type AIConfig struct {
	Providers    []string
	OpenAIAPIKey string
	GroqAPIKey   string
	Timeout      time.Duration
}

type PrinterConfig struct {
	DialTimeout time.Duration
}

// Production reports whether error details must be hidden from responses.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// LoadEnv reads a .env file when one exists. A missing file is fine; the
// process environment is then the only source.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the Config from the environment. requireDB is false for
// commands that never touch mongo.
func Load(requireDB bool) (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		Env:         getEnv("APP_ENV", "development"),
		MongoURI:    os.Getenv("DB"),
		DBName:      getEnv("DB_NAME", "qrmenu"),
		SecretKey:   os.Getenv("SECRET_KEY"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_APP_URL", "http://localhost:3000"), "/"),
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		Debug:       os.Getenv("DEBUG") == "true",
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
			VAPIDSubject:    getEnv("VAPID_SUBJECT", "mailto:admin@example.com"),
		},
		SMS: SMSConfig{
			AccountSID:         os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:          os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber:         os.Getenv("TWILIO_PHONE_NUMBER"),
			DefaultCountryCode: getEnv("SMS_DEFAULT_COUNTRY_CODE", "+91"),
		},
		AI: AIConfig{
			Providers:    splitList(getEnv("AI_PROVIDERS", "openai,groq")),
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		},
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AI.Timeout, err = getDuration("AI_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.Printer.DialTimeout, err = getDuration("PRINTER_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}

	if err := cfg.validate(requireDB); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(requireDB bool) error {
	if requireDB && c.MongoURI == "" {
		return fmt.Errorf("DB is not set in the environment variables")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is not set in the environment variables")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
