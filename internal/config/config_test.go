package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 50, cfg.PageSize)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:5173")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{
			name: "bad port",
			env:  map[string]string{"DB_DRIVER": "sqlite", "PORT": "eighty"},
			msg:  "invalid PORT",
		},
		{
			name: "bad duration",
			env:  map[string]string{"DB_DRIVER": "sqlite", "ACCESS_TOKEN_TTL": "5 minutes"},
			msg:  "invalid ACCESS_TOKEN_TTL",
		},
		{
			name: "unknown driver",
			env:  map[string]string{"DB_DRIVER": "oracle"},
			msg:  "invalid DB_DRIVER",
		},
		{
			name: "postgres without url",
			env:  map[string]string{"DB_DRIVER": "postgres", "DATABASE_URL": ""},
			msg:  "DATABASE_URL is required",
		},
		{
			name: "missing secret in production",
			env:  map[string]string{"DB_DRIVER": "sqlite", "ENVIRONMENT": "production", "JWT_SECRET": ""},
			msg:  "JWT_SECRET",
		},
		{
			name: "bad currency",
			env:  map[string]string{"DB_DRIVER": "sqlite", "DEFAULT_CURRENCY": "XYZW"},
			msg:  "invalid DEFAULT_CURRENCY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseCSVEnv(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, parseCSVEnv("ALLOWED_ORIGINS", nil))

	t.Setenv("ALLOWED_ORIGINS", "")
	assert.Equal(t, []string{"x"}, parseCSVEnv("ALLOWED_ORIGINS", []string{"x"}))
}
