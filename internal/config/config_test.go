package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_WithValidConfig(t *testing.T) {
	setEnv(t, "PRIVATE_KEY", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	setEnv(t, "PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
	assert.Equal(t, int64(DefaultChainID), cfg.ChainID)
	assert.Equal(t, DefaultPriceFeed, cfg.PriceFeedContract)
	assert.Equal(t, DefaultBaseline, cfg.DefaultBaseline)
	assert.Equal(t, DefaultWeatherBaseURL, cfg.WeatherBaseURL)
}

func TestLoad_MissingPrivateKeyAllowed(t *testing.T) {
	// Without a key the server runs in read-only chain mode.
	setEnv(t, "PRIVATE_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.PrivateKey)
}

func TestLoad_InvalidPrivateKeyLength(t *testing.T) {
	setEnv(t, "PRIVATE_KEY", "tooshort")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "64 hex characters")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "valid config",
			config: Config{
				PrivateKey: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
				RPCURL:     DefaultRPCURL,
			},
			wantErr: "",
		},
		{
			name: "no private key is valid",
			config: Config{
				PrivateKey: "",
				RPCURL:     DefaultRPCURL,
			},
			wantErr: "",
		},
		{
			name: "0x-prefixed private key",
			config: Config{
				PrivateKey: "0x0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
				RPCURL:     DefaultRPCURL,
			},
			wantErr: "",
		},
		{
			name: "invalid private key length",
			config: Config{
				PrivateKey: "abc123",
				RPCURL:     DefaultRPCURL,
			},
			wantErr: "64 hex characters",
		},
		{
			name: "missing RPC URL",
			config: Config{
				PrivateKey: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
				RPCURL:     "",
			},
			wantErr: "RPC_URL is required",
		},
		{
			name: "development allows local RPC node",
			config: Config{
				Env:    "development",
				RPCURL: "http://localhost:8545",
			},
			wantErr: "",
		},
		{
			name: "production blocks private RPC URL",
			config: Config{
				Env:            "production",
				RPCURL:         "http://10.0.0.5:8545",
				WeatherBaseURL: "http://203.0.113.11/v1",
			},
			wantErr: "RPC_URL",
		},
		{
			name: "production blocks loopback weather URL",
			config: Config{
				Env:            "production",
				RPCURL:         "http://203.0.113.10:8545",
				WeatherBaseURL: "http://127.0.0.1:9000/v1",
			},
			wantErr: "WEATHER_BASE_URL",
		},
		{
			name: "production allows public endpoints",
			config: Config{
				Env:            "production",
				RPCURL:         "http://203.0.113.10:8545",
				WeatherBaseURL: "http://203.0.113.11/v1",
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Env = "production"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}

func TestGetEnv(t *testing.T) {
	setEnv(t, "TEST_VAR", "custom_value")

	assert.Equal(t, "custom_value", getEnv("TEST_VAR", "default"))
	assert.Equal(t, "default", getEnv("NONEXISTENT_VAR", "default"))
}

func TestGetEnvInt64(t *testing.T) {
	setEnv(t, "TEST_INT", "42")
	setEnv(t, "TEST_INVALID", "not_a_number")

	assert.Equal(t, int64(42), getEnvInt64("TEST_INT", 0))
	assert.Equal(t, int64(99), getEnvInt64("NONEXISTENT_VAR", 99))
	assert.Equal(t, int64(99), getEnvInt64("TEST_INVALID", 99)) // Falls back on parse error
}

func TestGetEnvDuration(t *testing.T) {
	setEnv(t, "TEST_DURATION", "45s")
	setEnv(t, "TEST_BAD_DURATION", "soon")

	assert.Equal(t, 45*time.Second, getEnvDuration("TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, getEnvDuration("NONEXISTENT_VAR", time.Minute))
	assert.Equal(t, time.Minute, getEnvDuration("TEST_BAD_DURATION", time.Minute))
}
