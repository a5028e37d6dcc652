package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	PromotionCacheTTL  time.Duration
	QuoteRateLimit     int
	MaxBodyBytes       int64

	StockLocation      string
	DeliveryMode       pricing.DeliveryMode
	DeliveryFixedFee   decimal.Decimal
	DeliveryDefaultFee decimal.Decimal
	DeliveryTiers      []pricing.Tier
	BaseWeight         decimal.Decimal
	MinWeight          decimal.Decimal
	MaxWeight          decimal.Decimal
	MinPurchases       decimal.Decimal
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	return load(true)
}

// LoadOffline is Load for tools that price carts without Postgres or Redis.
func LoadOffline() (*Config, error) {
	return load(false)
}

func load(requireInfra bool) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	defaults := pricing.DefaultRules()
	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		PromotionCacheTTL:  parseDuration(k.String("PROMOTION_CACHE_TTL"), "1m"),
		QuoteRateLimit:     parseInt(k.String("QUOTE_RATE_LIMIT"), 120),
		MaxBodyBytes:       int64(parseInt(k.String("MAX_BODY_BYTES"), 1<<20)),
		StockLocation:      strings.TrimSpace(k.String("STOCK_LOCATION")),
		DeliveryMode:       parseDeliveryMode(k.String("DELIVERY_MODE")),
	}

	var errs []error
	decimals := []struct {
		key      string
		dst      *decimal.Decimal
		fallback decimal.Decimal
	}{
		{"DELIVERY_FIXED_FEE", &cfg.DeliveryFixedFee, defaults.Delivery.FixedFee},
		{"DELIVERY_DEFAULT_FEE", &cfg.DeliveryDefaultFee, defaults.Delivery.DefaultFee},
		{"CART_BASE_WEIGHT", &cfg.BaseWeight, defaults.BaseWeight},
		{"CART_MIN_WEIGHT", &cfg.MinWeight, defaults.MinWeight},
		{"CART_MAX_WEIGHT", &cfg.MaxWeight, defaults.MaxWeight},
		{"CART_MIN_PURCHASES", &cfg.MinPurchases, defaults.MinPurchases},
	}
	for _, d := range decimals {
		v, err := parseDecimal(k.String(d.key), d.fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.key, err))
			continue
		}
		*d.dst = v
	}

	tiers, err := ParseTiers(k.String("DELIVERY_TIERS"))
	if err != nil {
		errs = append(errs, fmt.Errorf("DELIVERY_TIERS: %w", err))
	}
	if len(tiers) == 0 {
		tiers = defaults.Delivery.Tiers
	}
	cfg.DeliveryTiers = tiers

	if requireInfra && cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if requireInfra && cfg.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// PricingRules builds the pricing rule set described by the configuration.
func (c *Config) PricingRules() pricing.Rules {
	tiers := make([]pricing.Tier, len(c.DeliveryTiers))
	copy(tiers, c.DeliveryTiers)
	return pricing.Rules{
		Location:     c.StockLocation,
		BaseWeight:   c.BaseWeight,
		MinWeight:    c.MinWeight,
		MaxWeight:    c.MaxWeight,
		MinPurchases: c.MinPurchases,
		Delivery: pricing.DeliveryRules{
			Mode:       c.DeliveryMode,
			FixedFee:   c.DeliveryFixedFee,
			DefaultFee: c.DeliveryDefaultFee,
			Tiers:      tiers,
		},
		PlaceOrderConditions: []pricing.RangeCondition{pricing.WeightCondition(c.MinWeight, c.MaxWeight)},
	}
}

// ParseTiers parses a comma-separated list of min:max:value weight tiers,
// e.g. "0:1000:160,1000:1500:190". Tier order is preserved.
func ParseTiers(value string) ([]pricing.Tier, error) {
	parts := splitAndTrim(value)
	if len(parts) == 0 {
		return nil, nil
	}
	tiers := make([]pricing.Tier, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("tier %q: expected min:max:value", part)
		}
		nums := make([]decimal.Decimal, 3)
		for i, f := range fields {
			d, err := decimal.NewFromString(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("tier %q: %w", part, err)
			}
			nums[i] = d
		}
		tiers = append(tiers, pricing.Tier{Min: nums[0], Max: nums[1], Value: nums[2]})
	}
	return tiers, nil
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseDecimal(value string, fallback decimal.Decimal) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	return decimal.NewFromString(trimmed)
}

func parseDeliveryMode(value string) pricing.DeliveryMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "static":
		return pricing.DeliveryStatic
	default:
		return pricing.DeliveryDynamic
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
