package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Env           string
	Port          string
	SessionSecret string
	Database      DatabaseConfig
	OIDC          OIDCConfig
	Pricing       PricingConfig
	AfricaTalking AfricaTalkingConfig
	Email         EmailConfig
	Kafka         KafkaConfig
	CheckoutRate  RateConfig
}

type DatabaseConfig struct {
	Host         string
	User         string
	Password     string
	Name         string
	Port         string
	SSLMode      string
	TimeZone     string
	MaxOpenConns int
	MaxIdleConns int
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// PricingConfig holds the flat checkout rates. VerifyTotals rejects orders
// whose submitted total differs from the one computed from these rates.
type PricingConfig struct {
	Shipping     decimal.Decimal
	TaxRate      decimal.Decimal
	VerifyTotals bool
}

type AfricaTalkingConfig struct {
	Username string
	APIKey   string
	SMSURL   string
	SenderID string
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type RateConfig struct {
	PerMinute int
	Burst     int
}

// Load reads the process environment, after loading a .env file when one
// is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shipping, err := decimal.NewFromString(getEnvOrDefault("CHECKOUT_SHIPPING", "5.00"))
	if err != nil {
		return nil, fmt.Errorf("CHECKOUT_SHIPPING: %w", err)
	}
	taxRate, err := decimal.NewFromString(getEnvOrDefault("CHECKOUT_TAX_RATE", "0.08"))
	if err != nil {
		return nil, fmt.Errorf("CHECKOUT_TAX_RATE: %w", err)
	}

	cfg := &Config{
		Env:           getEnvOrDefault("APP_ENV", "development"),
		Port:          getEnvOrDefault("PORT", "8080"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", "change-me"),
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("POSTGRES_HOST", "localhost"),
			User:         getEnvOrDefault("POSTGRES_USER", "test"),
			Password:     getEnvOrDefault("POSTGRES_PASSWORD", "test"),
			Name:         getEnvOrDefault("POSTGRES_DB", "test"),
			Port:         getEnvOrDefault("DB_PORT", "5432"),
			SSLMode:      getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			TimeZone:     getEnvOrDefault("POSTGRES_TIMEZONE", "UTC"),
			MaxOpenConns: getIntOrDefault("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		OIDC: OIDCConfig{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		Pricing: PricingConfig{
			Shipping:     shipping,
			TaxRate:      taxRate,
			VerifyTotals: getEnvOrDefault("CHECKOUT_TOTAL_POLICY", "verify") != "trust",
		},
		AfricaTalking: AfricaTalkingConfig{
			Username: os.Getenv("AT_USERNAME"),
			APIKey:   os.Getenv("AT_API_KEY"),
			SMSURL:   getEnvOrDefault("AT_SMS_URL", "https://api.sandbox.africastalking.com/version1/messaging"), // Sandbox URL
			SenderID: getEnvOrDefault("AT_SENDER_ID", "AFRICASTKNG"),
		},
		Email: EmailConfig{
			AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
			SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			OrderTopic: getEnvOrDefault("ORDER_EVENTS_TOPIC", "orders.placed"),
		},
		CheckoutRate: RateConfig{
			PerMinute: getIntOrDefault("CHECKOUT_RATE_PER_MINUTE", 10),
			Burst:     getIntOrDefault("CHECKOUT_RATE_BURST", 3),
		},
	}

	if cfg.Pricing.Shipping.IsNegative() || cfg.Pricing.TaxRate.IsNegative() {
		return nil, fmt.Errorf("checkout rates must not be negative")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
