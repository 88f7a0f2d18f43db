package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds environment-driven configuration. Every component receives
// its settings from here at construction; nothing reads the environment
// after startup.
type Config struct {
	Addr        string
	Env         string
	DatabaseURL string
	JWTSecret   string

	Currency       string
	PaymentAPIURL  string
	PaymentAPIKey  string
	PaymentTimeout time.Duration

	SenderEmail string
	EmailAPIURL string
	EmailAPIKey string

	RedisAddr     string
	CacheTTL      time.Duration
	AmqpURL       string

	// CartReservationTTL bounds how long an untouched cart item may hold
	// reserved stock. Zero disables the reaper entirely.
	CartReservationTTL time.Duration
	CartReapInterval   time.Duration
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Addr:        envOr("SHOP_ADDR", ":8080"),
		Env:         envOr("SHOP_ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		Currency:       envOr("PAYMENT_CURRENCY", "usd"),
		PaymentAPIURL:  envOr("PAYMENT_API_URL", "https://api.stripe.com"),
		PaymentAPIKey:  os.Getenv("PAYMENT_API_KEY"),
		PaymentTimeout: envDuration("PAYMENT_TIMEOUT", 10*time.Second),

		SenderEmail: os.Getenv("SENDER_EMAIL"),
		EmailAPIURL: envOr("EMAIL_API_URL", "https://api.brevo.com/v3/smtp/email"),
		EmailAPIKey: os.Getenv("EMAIL_API_KEY"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CacheTTL:  envDuration("CACHE_TTL", 30*time.Second),
		AmqpURL:   os.Getenv("AMQP_URL"),

		CartReservationTTL: envDuration("CART_RESERVATION_TTL", 0),
		CartReapInterval:   envDuration("CART_REAP_INTERVAL", time.Minute),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// plain integers are treated as seconds
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
