package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                        "",
		"REDIS_URL":                   "",
		"PRICING_SHIPPING_FEE":        "",
		"PRICING_MIN_SPEND_THRESHOLD": "",
		"PRICING_MIN_SPEND_DISCOUNT":  "",
		"CHECKOUT_LOCK_TTL":           "",
		"SEED_DEMO_DATA":              "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, "20.00", cfg.ShippingFee.StringFixed(2))
	require.Equal(t, "500.00", cfg.MinSpendThreshold.StringFixed(2))
	require.Equal(t, "30.00", cfg.MinSpendDiscount.StringFixed(2))
	require.Equal(t, 10*time.Second, cfg.CheckoutLockTTL)
	require.True(t, cfg.SeedDemoData)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                       ":9090",
		"CORS_ALLOWED_ORIGINS":       "http://a.test, http://b.test",
		"PRICING_SHIPPING_FEE":       "15.5",
		"RATE_LIMIT_CHECKOUT_MAX":    "3",
		"RATE_LIMIT_CHECKOUT_WINDOW": "30s",
		"SEED_DEMO_DATA":             "false",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "15.50", cfg.ShippingFee.StringFixed(2))
	require.Equal(t, 3, cfg.RateLimitCheckoutMax)
	require.Equal(t, 30*time.Second, cfg.RateLimitCheckoutWindow)
	require.False(t, cfg.SeedDemoData)
}

func TestLoadRejectsBadAmounts(t *testing.T) {
	_, err := LoadForTests(map[string]string{"PRICING_SHIPPING_FEE": "twenty"})
	require.Error(t, err)
	_, err = LoadForTests(map[string]string{"PRICING_MIN_SPEND_DISCOUNT": "-1"})
	require.Error(t, err)
}

func TestLoadRejectsUnknownRateLimitStrategy(t *testing.T) {
	_, err := LoadForTests(map[string]string{"RATE_LIMIT_STRATEGY": "leaky"})
	require.Error(t, err)

	cfg, err := LoadForTests(map[string]string{"RATE_LIMIT_STRATEGY": "FIXED"})
	require.NoError(t, err)
	require.Equal(t, "fixed", cfg.RateLimitStrategy)
}
