package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service and the web view host.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseDriver      string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	AssignmentsCacheTTL time.Duration
	Web                 WebConfig
}

// WebConfig configures the server-rendered assignment list.
type WebConfig struct {
	Port           string
	APIBaseURL     string
	RequestTimeout time.Duration
	ReloadDelay    time.Duration
	SessionTTL     time.Duration
	Timezone       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	return listenAddress(c.AppPort)
}

// HTTPAddress returns the address the web host should listen on.
func (c WebConfig) HTTPAddress() string {
	return listenAddress(c.Port)
}

func listenAddress(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}

	return fmt.Sprintf(":%s", port)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Assignments")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("assignments.cache_ttl", "2m")
	v.SetDefault("web.port", "8081")
	v.SetDefault("web.api_base_url", "http://localhost:8080")
	v.SetDefault("web.request_timeout", "10s")
	v.SetDefault("web.reload_delay", "1s")
	v.SetDefault("web.session_ttl", "30m")
	v.SetDefault("web.timezone", "UTC")

	cacheTTL, err := parseDuration(v, "assignments.cache_ttl", "2m")
	if err != nil {
		return Config{}, err
	}
	requestTimeout, err := parseDuration(v, "web.request_timeout", "10s")
	if err != nil {
		return Config{}, err
	}
	reloadDelay, err := parseDuration(v, "web.reload_delay", "1s")
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := parseDuration(v, "web.session_ttl", "30m")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseDriver:      strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		AssignmentsCacheTTL: cacheTTL,
		Web: WebConfig{
			Port:           v.GetString("web.port"),
			APIBaseURL:     strings.TrimRight(v.GetString("web.api_base_url"), "/"),
			RequestTimeout: requestTimeout,
			ReloadDelay:    reloadDelay,
			SessionTTL:     sessionTTL,
			Timezone:       v.GetString("web.timezone"),
		},
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite", "mysql":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

// Validate checks the settings the API binary cannot run without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be provided")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url must be provided")
	}
	return nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}

	return d, nil
}
