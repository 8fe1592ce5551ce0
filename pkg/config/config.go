package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting of the API, read from the environment.
type Config struct {
	Port        string   `envconfig:"PORT" default:"5003"`
	Env         string   `envconfig:"APP_ENV" default:"development"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	ClientURL   []string `envconfig:"CLIENT_URL"` // CORS origins, empty allows all
	BodyLimitMB int      `envconfig:"BODY_LIMIT_MB" default:"50"`

	// Database
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	DBHost           string        `envconfig:"DB_HOST" default:"localhost"`
	DBUser           string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword       string        `envconfig:"DB_PASSWORD"`
	DBName           string        `envconfig:"DB_NAME" default:"shopingmall"`
	DBPort           string        `envconfig:"DB_PORT" default:"5432"`
	DBConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
	DBHealthInterval time.Duration `envconfig:"DB_HEALTH_INTERVAL" default:"30s"`

	// Auth
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"your-secret-key-change-in-production"`
	JWTExpire      time.Duration `envconfig:"JWT_EXPIRE" default:"168h"`
	GoogleClientID string        `envconfig:"GOOGLE_CLIENT_ID"`

	// Order events
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"order-events"`

	// Bootstrap admin
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DBHealthInterval <= 0 {
		return nil, fmt.Errorf("DB_HEALTH_INTERVAL must be positive, got %s", cfg.DBHealthInterval)
	}
	if cfg.JWTExpire <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE must be positive, got %s", cfg.JWTExpire)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable connect_timeout=%d TimeZone=Asia/Seoul",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, int(c.DBConnectTimeout.Seconds()),
	)
}
