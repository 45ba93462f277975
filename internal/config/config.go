package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Server    ServerConfig    `json:"server"`
	Storage   StorageConfig   `json:"storage"`
	Assistant AssistantConfig `json:"assistant"`
	Shop      ShopConfig      `json:"shop"`
	Auth      AuthConfig      `json:"-"`
	Events    EventsConfig    `json:"events"`
	LogLevel  string          `json:"log_level"`
}

// TelegramConfig содержит настройки Telegram бота. Пустой токен отключает бота.
type TelegramConfig struct {
	Token       string  `json:"-"`
	WebhookURL  string  `json:"webhook_url"`
	SecretToken string  `json:"-"`
	AdminIDs    []int64 `json:"admin_ids"`
}

// Enabled сообщает, настроен ли бот
func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

// IsAdmin проверяет, входит ли чат в список администраторов
func (t TelegramConfig) IsAdmin(chatID int64) bool {
	for _, id := range t.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port               string        `json:"port"`
	ReadTimeout        time.Duration `json:"read_timeout"`
	WriteTimeout       time.Duration `json:"write_timeout"`
	IdleTimeout        time.Duration `json:"idle_timeout"`
	CORSAllowedOrigins []string      `json:"cors_allowed_origins"`
	RateLimit          int           `json:"rate_limit"`
}

// StorageConfig содержит настройки хранилища
type StorageConfig struct {
	Driver        string `json:"driver"`
	Path          string `json:"path"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`
	PostgresDSN   string `json:"-"`
}

// AssistantConfig содержит настройки Gemini
type AssistantConfig struct {
	APIKey string `json:"-"`
	Model  string `json:"model"`
}

// ShopConfig описывает барбершоп
type ShopConfig struct {
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	WhatsApp string `json:"whatsapp"`
	Address  string `json:"address"`
	Timezone string `json:"timezone"`
}

// AuthConfig содержит настройки токенов и входа администратора
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminPassword string
	AdminPhone    string
}

// EventsConfig содержит настройки NATS. Пустой URL отключает публикацию.
type EventsConfig struct {
	NATSURL       string `json:"nats_url"`
	SubjectPrefix string `json:"subject_prefix"`
}

// Load загружает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	adminIDs, err := getEnvAsInt64List("ADMIN_IDS")
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:       os.Getenv("TELEGRAM_TOKEN"),
			WebhookURL:  os.Getenv("WEBHOOK_URL"),
			SecretToken: os.Getenv("TELEGRAM_SECRET_TOKEN"),
			AdminIDs:    adminIDs,
		},
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:       getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			IdleTimeout:        getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimit:          getEnvAsInt("RATE_LIMIT", 100),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite)),
			Path:          getEnv("DB_FILE", "barber.db"),
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		},
		Assistant: AssistantConfig{
			APIKey: getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
			Model:  getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		},
		Shop: ShopConfig{
			Name:     getEnv("SHOP_NAME", "LA CASA BARBER"),
			Owner:    getEnv("SHOP_OWNER", "Danilo"),
			WhatsApp: getEnv("SHOP_WHATSAPP", "5511942572525"),
			Address:  getEnv("SHOP_ADDRESS", "R. do Cepo, 64 - Eldorado, São Paulo"),
			Timezone: getEnv("SHOP_TIMEZONE", "America/Sao_Paulo"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "dev-only-secret-change-in-prod"),
			TokenTTL:      getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
			AdminPhone:    getEnv("ADMIN_PHONE", "00000000000"),
		},
		Events: EventsConfig{
			NATSURL:       os.Getenv("NATS_URL"),
			SubjectPrefix: getEnv("EVENTS_SUBJECT_PREFIX", "barber"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Assistant.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("DB_FILE is required for sqlite storage")
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis storage")
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if _, err := time.LoadLocation(c.Shop.Timezone); err != nil {
		return fmt.Errorf("invalid SHOP_TIMEZONE: %w", err)
	}
	if c.Telegram.WebhookURL != "" && !c.Telegram.Enabled() {
		return fmt.Errorf("WEBHOOK_URL requires TELEGRAM_TOKEN")
	}

	return nil
}

// Location возвращает часовой пояс барбершопа
func (s ShopConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvAsInt получает переменную окружения как число
func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvAsDuration получает переменную окружения как duration
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvAsList разбирает список через запятую
func getEnvAsList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt64List(key string) ([]int64, error) {
	var ids []int64
	for _, part := range getEnvAsList(key, nil) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s contains invalid chat id %q", key, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
