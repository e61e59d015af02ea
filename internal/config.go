package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"ENV" validate:"oneof=dev prod"`
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Port     uint16 `mapstructure:"PORT" validate:"required"`

	Google  GoogleConfig  `mapstructure:",squash"`
	Cache   CacheConfig   `mapstructure:",squash"`
	Redis   RedisConfig   `mapstructure:",squash"`
	NATS    NATSConfig    `mapstructure:",squash"`
	Metrics MetricsConfig `mapstructure:",squash"`
	Server  ServerConfig  `mapstructure:",squash"`

	DatabaseUrl string `mapstructure:"DATABASE_URL"`
}

// GoogleConfig configures the address validation API client.
type GoogleConfig struct {
	APIKey                    string        `mapstructure:"GOOGLE_API_KEY" validate:"required"`
	Endpoint                  string        `mapstructure:"GOOGLE_ENDPOINT" validate:"omitempty,url"`
	Timeout                   time.Duration `mapstructure:"GOOGLE_TIMEOUT" validate:"gt=0"`
	EnableUSPSCASS            bool          `mapstructure:"ENABLE_USPS_CASS"`
	ReturnEnglishLatinAddress bool          `mapstructure:"LANGUAGE_RETURN_ENGLISH_LATIN"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"CACHE_BACKEND" validate:"oneof=none memory redis postgres"`
	TTL     time.Duration `mapstructure:"CACHE_TTL" validate:"gt=0"`
	Size    int           `mapstructure:"CACHE_SIZE" validate:"gte=0"`

	// EncryptionKey is a base64 AES-256 key. When set, cached responses
	// are encrypted before they reach the backend.
	EncryptionKey string `mapstructure:"CACHE_ENCRYPTION_KEY" validate:"omitempty,base64"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"REDIS_ADDR"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" validate:"gte=0"`
	Prefix   string `mapstructure:"REDIS_PREFIX"`
}

// NATSConfig enables validation events when URL is set.
type NATSConfig struct {
	URL     string `mapstructure:"NATS_URL"`
	Subject string `mapstructure:"NATS_SUBJECT"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"METRICS_NAMESPACE"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// AdminToken guards DELETE /api/cache when set.
	AdminToken string `mapstructure:"ADMIN_TOKEN"`

	// CORSAllowedOrigins is a comma separated list; "*" allows any origin.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// CORSOrigins splits CORSAllowedOrigins.
func (c ServerConfig) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

var configKeys = map[string]any{
	"ENV":                           "dev",
	"LOG_LEVEL":                     "info",
	"PORT":                          3000,
	"GOOGLE_API_KEY":                "",
	"GOOGLE_ENDPOINT":               "https://addressvalidation.googleapis.com/v1",
	"GOOGLE_TIMEOUT":                "15s",
	"ENABLE_USPS_CASS":              false,
	"LANGUAGE_RETURN_ENGLISH_LATIN": false,
	"CACHE_BACKEND":                 "memory",
	"CACHE_TTL":                     "24h",
	"CACHE_SIZE":                    10000,
	"CACHE_ENCRYPTION_KEY":          "",
	"REDIS_ADDR":                    "localhost:6379",
	"REDIS_PASSWORD":                "",
	"REDIS_DB":                      0,
	"REDIS_PREFIX":                  "addressvalidation:",
	"DATABASE_URL":                  "",
	"NATS_URL":                      "",
	"NATS_SUBJECT":                  "addressvalidation.validated",
	"METRICS_NAMESPACE":             "addressvalidation",
	"ADMIN_TOKEN":                   "",
	"CORS_ALLOWED_ORIGINS":          "",
}

// NewConfig reads configuration from .env, an optional file named by
// CONFIG_FILE, and the environment, in increasing precedence.
func NewConfig() (*Config, error) {
	loadDotEnv()
	return LoadConfig(os.Getenv("CONFIG_FILE"))
}

// LoadConfig reads configuration without touching .env files.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	for key, def := range configKeys {
		v.SetDefault(key, def)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Env = strings.ToLower(cfg.Env)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, configError(err)
	}
	if cfg.Cache.Backend == "postgres" && cfg.DatabaseUrl == "" {
		return nil, errors.New("invalid config: DATABASE_URL is required when CACHE_BACKEND is postgres")
	}

	return &cfg, nil
}

// loadDotEnv tries the working directory, then up to two parents.
func loadDotEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	dir, _ := os.Getwd()
	for i := 0; i < 2; i++ {
		dir = filepath.Join(dir, "..")
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			return
		}
	}
	slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
}

func configError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
