package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins string
	StaticDir      string
}

type SupabaseConfig struct {
	URL     string
	AnonKey string
}

type StripeConfig struct {
	SecretKey    string
	PriceProID   string
	PriceEliteID string
	SiteURL      string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// Enabled reports whether share uploads can be served.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Supabase SupabaseConfig
	Stripe   StripeConfig
	R2       R2Config

	DatabaseURL  string
	RedisURL     string
	BackendURL   string
	ServiceToken string

	TeamSyncInterval time.Duration
	// SimSeed fixes the random source when non-zero.
	SimSeed int64
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "9000"),
			AllowedOrigins: normalizeOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
			StaticDir:      getEnv("STATIC_DIR", "./public"),
		},
		Supabase: SupabaseConfig{
			URL:     strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			AnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		},
		Stripe: StripeConfig{
			SecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
			PriceProID:   getEnv("STRIPE_PRICE_PRO", "price_1234567890"),
			PriceEliteID: getEnv("STRIPE_PRICE_ELITE", "price_0987654321"),
			SiteURL:      strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		},
		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
		},
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		BackendURL:       strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		ServiceToken:     os.Getenv("INTERNAL_SERVICE_TOKEN"),
		TeamSyncInterval: getDuration("TEAM_SYNC_INTERVAL", 10*time.Minute),
		SimSeed:          getInt64("SIM_SEED", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, ignoring", key, raw)
		return fallback
	}
	return v
}

// normalizeOrigins trims each comma-separated origin for Fiber's CORS config.
func normalizeOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
