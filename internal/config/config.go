package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	LogLevel       string
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string
	ServerAddress  string
	CORSOrigins    []string

	// live map
	MapDebounce   time.Duration
	MapFetchLimit int
	MapCacheTTL   time.Duration

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string
	MQTTClientID  string

	UploadDir       string
	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string

	StripeSecretKey  string
	CheckoutSuccess  string
	CheckoutCancel   string
	CheckoutCurrency string
}

// LoadDotEnv reads .env files into the process environment when present.
// Variables already set win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Environment:    get("APP_ENV", "development"),
		LogLevel:       get("LOG_LEVEL", "info"),
		DatabaseURL:    get("DATABASE_URL", ""),
		MigrationsPath: get("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:      get("JWT_SECRET", ""),
		ServerAddress:  get("SERVER_ADDRESS", ":8080"),

		RedisAddress:  get("REDIS_ADDRESS", ""),
		RedisUsername: get("REDIS_USERNAME", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),

		MQTTBrokerURL: get("MQTT_BROKER_URL", ""),
		MQTTClientID:  get("MQTT_CLIENT_ID", "minaarly-api"),

		UploadDir:       get("UPLOAD_DIR", "./uploads"),
		UseSpaces:       get("USE_SPACES", "") == "true",
		SpacesEndpoint:  get("SPACES_ENDPOINT", ""),
		SpacesRegion:    get("SPACES_REGION", ""),
		SpacesBucket:    get("SPACES_BUCKET", ""),
		SpacesCDNURL:    get("SPACES_CDN_URL", ""),
		SpacesAccessKey: get("SPACES_ACCESS_KEY", ""),
		SpacesSecretKey: get("SPACES_SECRET_KEY", ""),

		StripeSecretKey:  get("STRIPE_SECRET_KEY", ""),
		CheckoutSuccess:  get("CHECKOUT_SUCCESS_URL", ""),
		CheckoutCancel:   get("CHECKOUT_CANCEL_URL", ""),
		CheckoutCurrency: get("CHECKOUT_CURRENCY", "eur"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if origins := get("CORS_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	var err error
	if cfg.MapDebounce, err = millis(get("MAP_DEBOUNCE_MS", "300")); err != nil {
		return nil, fmt.Errorf("MAP_DEBOUNCE_MS: %w", err)
	}
	if cfg.MapCacheTTL, err = time.ParseDuration(get("MAP_CACHE_TTL", "60s")); err != nil {
		return nil, fmt.Errorf("MAP_CACHE_TTL: %w", err)
	}
	if cfg.MapFetchLimit, err = strconv.Atoi(get("MAP_FETCH_LIMIT", "100")); err != nil || cfg.MapFetchLimit <= 0 {
		return nil, fmt.Errorf("MAP_FETCH_LIMIT must be a positive integer")
	}

	if cfg.UseSpaces && (cfg.SpacesBucket == "" || cfg.SpacesEndpoint == "") {
		return nil, fmt.Errorf("USE_SPACES requires SPACES_ENDPOINT and SPACES_BUCKET")
	}
	if cfg.StripeSecretKey != "" && (cfg.CheckoutSuccess == "" || cfg.CheckoutCancel == "") {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY requires CHECKOUT_SUCCESS_URL and CHECKOUT_CANCEL_URL")
	}
	return cfg, nil
}

func millis(raw string) (time.Duration, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("must be a non-negative number of milliseconds")
	}
	return time.Duration(n) * time.Millisecond, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
