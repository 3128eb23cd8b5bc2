package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Account is a payment recipient the vision model must find on the screenshot.
type Account struct {
	Label string
	ID    string
}

type Vision struct {
	APIKey      string
	Model       string
	Endpoint    string
	Title       string
	Timeout     time.Duration
	MaxInFlight int
}

type R2 struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	JWTSecret   string

	LogLevel  string
	LogFormat string

	SessionDir    string
	SessionTTL    time.Duration
	SweepInterval time.Duration

	TempUploadDir      string
	PaymentDir         string
	EvidenceBackend    string
	UploadMaxBytes     int64
	UploadSniffContent bool

	Vision   Vision
	R2       R2
	Accounts []Account

	DeliveryFee int64

	KafkaBrokers    string
	KafkaOrderTopic string

	CORSOrigins []string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (outside production) and the process environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	v := viper.New()

	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetString("PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		JWTSecret:   v.GetString("JWT_SECRET"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		SessionDir:    v.GetString("SESSION_DIR"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		SweepInterval: v.GetDuration("SWEEP_INTERVAL"),

		TempUploadDir:      v.GetString("TEMP_UPLOAD_DIR"),
		PaymentDir:         v.GetString("PAYMENT_DIR"),
		EvidenceBackend:    strings.ToLower(v.GetString("EVIDENCE_BACKEND")),
		UploadMaxBytes:     v.GetInt64("UPLOAD_MAX_BYTES"),
		UploadSniffContent: v.GetBool("UPLOAD_SNIFF_CONTENT"),

		Vision: Vision{
			APIKey:      v.GetString("OPENROUTER_API_KEY"),
			Model:       v.GetString("VISION_MODEL"),
			Endpoint:    v.GetString("VISION_ENDPOINT"),
			Title:       v.GetString("VISION_APP_TITLE"),
			Timeout:     v.GetDuration("VISION_TIMEOUT"),
			MaxInFlight: v.GetInt("VISION_MAX_INFLIGHT"),
		},
		R2: R2{
			Endpoint:      v.GetString("R2_ENDPOINT"),
			AccessKey:     v.GetString("R2_ACCESS_KEY"),
			SecretKey:     v.GetString("R2_SECRET_KEY"),
			Bucket:        v.GetString("R2_BUCKET_NAME"),
			PublicBaseURL: v.GetString("R2_PUBLIC_BASE_URL"),
		},

		DeliveryFee: v.GetInt64("DELIVERY_FEE"),

		KafkaBrokers:    v.GetString("KAFKA_BROKERS"),
		KafkaOrderTopic: v.GetString("KAFKA_ORDER_TOPIC"),

		CORSOrigins: splitCSV(v.GetString("CORS_ORIGINS")),
	}

	accounts, err := ParseAccounts(v.GetString("PAYMENT_ACCOUNTS"))
	if err != nil {
		return nil, err
	}
	cfg.Accounts = accounts

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SESSION_DIR", "./data/sessions")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("SWEEP_INTERVAL", 5*time.Minute)

	v.SetDefault("TEMP_UPLOAD_DIR", "./uploads/temp_payments")
	v.SetDefault("PAYMENT_DIR", "./uploads/payments")
	v.SetDefault("EVIDENCE_BACKEND", "local")
	v.SetDefault("UPLOAD_MAX_BYTES", 5_000_000)
	v.SetDefault("UPLOAD_SNIFF_CONTENT", true)

	v.SetDefault("VISION_MODEL", "openai/gpt-4o")
	v.SetDefault("VISION_ENDPOINT", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("VISION_APP_TITLE", "FoodiFusion")
	v.SetDefault("VISION_TIMEOUT", 45*time.Second)
	v.SetDefault("VISION_MAX_INFLIGHT", 8)

	v.SetDefault("PAYMENT_ACCOUNTS", "MTN Money:672777761,Orange Money:69865203")
	v.SetDefault("DELIVERY_FEE", 1000)

	v.SetDefault("KAFKA_ORDER_TOPIC", "orders.placed")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	if c.Vision.Timeout <= 0 {
		return errors.New("VISION_TIMEOUT must be positive")
	}
	if c.Vision.MaxInFlight <= 0 {
		return errors.New("VISION_MAX_INFLIGHT must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if c.DeliveryFee < 0 {
		return errors.New("DELIVERY_FEE must be >= 0")
	}
	if len(c.Accounts) == 0 {
		return errors.New("PAYMENT_ACCOUNTS must name at least one recipient")
	}

	switch c.EvidenceBackend {
	case "local":
	case "r2":
		if c.R2.Endpoint == "" || c.R2.Bucket == "" || c.R2.AccessKey == "" || c.R2.SecretKey == "" {
			return errors.New("EVIDENCE_BACKEND=r2 requires R2_ENDPOINT, R2_BUCKET_NAME, R2_ACCESS_KEY and R2_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown EVIDENCE_BACKEND %q", c.EvidenceBackend)
	}
	return nil
}

// ParseAccounts reads "Label:ID,Label:ID".
func ParseAccounts(raw string) ([]Account, error) {
	var out []Account
	for _, part := range splitCSV(raw) {
		i := strings.LastIndex(part, ":")
		if i <= 0 || i == len(part)-1 {
			return nil, fmt.Errorf("invalid payment account %q, want Label:ID", part)
		}
		out = append(out, Account{
			Label: strings.TrimSpace(part[:i]),
			ID:    strings.TrimSpace(part[i+1:]),
		})
	}
	return out, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
