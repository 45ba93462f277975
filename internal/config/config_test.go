package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "значения по умолчанию",
			envVars: map[string]string{
				"GEMINI_API_KEY": "key",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8080", cfg.Server.Port)
				assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
				assert.Equal(t, "barber.db", cfg.Storage.Path)
				assert.Equal(t, "gemini-3-flash-preview", cfg.Assistant.Model)
				assert.Equal(t, "LA CASA BARBER", cfg.Shop.Name)
				assert.Equal(t, "Danilo", cfg.Shop.Owner)
				assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
				assert.False(t, cfg.Telegram.Enabled())
			},
		},
		{
			name: "полная конфигурация",
			envVars: map[string]string{
				"GEMINI_API_KEY":       "key",
				"TELEGRAM_TOKEN":       "123456:ABC",
				"WEBHOOK_URL":          "https://example.com/webhook",
				"ADMIN_IDS":            "42, 1001",
				"PORT":                 "9000",
				"STORAGE_DRIVER":       "Redis",
				"REDIS_ADDR":           "localhost:6379",
				"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
				"TOKEN_TTL":            "2h",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "9000", cfg.Server.Port)
				assert.Equal(t, DriverRedis, cfg.Storage.Driver)
				assert.Equal(t, []int64{42, 1001}, cfg.Telegram.AdminIDs)
				assert.True(t, cfg.Telegram.IsAdmin(1001))
				assert.False(t, cfg.Telegram.IsAdmin(7))
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
				assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
			},
		},
		{
			name:        "нет ключа ассистента",
			envVars:     map[string]string{},
			expectError: true,
		},
		{
			name: "redis без адреса",
			envVars: map[string]string{
				"GEMINI_API_KEY": "key",
				"STORAGE_DRIVER": "redis",
			},
			expectError: true,
		},
		{
			name: "неизвестный драйвер",
			envVars: map[string]string{
				"GEMINI_API_KEY": "key",
				"STORAGE_DRIVER": "mongo",
			},
			expectError: true,
		},
		{
			name: "некорректный ADMIN_IDS",
			envVars: map[string]string{
				"GEMINI_API_KEY": "key",
				"ADMIN_IDS":      "42,abc",
			},
			expectError: true,
		},
		{
			name: "webhook без токена",
			envVars: map[string]string{
				"GEMINI_API_KEY": "key",
				"WEBHOOK_URL":    "https://example.com/webhook",
			},
			expectError: true,
		},
	}

	keys := []string{
		"GEMINI_API_KEY", "API_KEY", "TELEGRAM_TOKEN", "WEBHOOK_URL", "ADMIN_IDS", "PORT",
		"STORAGE_DRIVER", "REDIS_ADDR", "POSTGRES_DSN", "CORS_ALLOWED_ORIGINS", "TOKEN_TTL",
		"RATE_LIMIT", "SHOP_TIMEZONE", "JWT_SECRET",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Очищаем окружение, t.Setenv восстановит значения после теста
			for _, k := range keys {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}
