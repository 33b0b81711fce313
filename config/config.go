// config.go - Handles configuration for the user service

package config

import (
	"fmt"
	"time"

	"go-user-service/models"

	"github.com/joho/godotenv"             // Optional .env file
	"github.com/kelseyhightower/envconfig" // Typed environment variables
)

// Config holds all configuration values, read from the environment.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	GinMode         string        `envconfig:"GIN_MODE" default:"release"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	DBPath string `envconfig:"DB_PATH" default:"data.db"` // Path to the SQLite database file

	// JWT
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"` // HS256 signing key
	JWTIssuer     string        `envconfig:"JWT_ISSUER" default:"go-user-service"`
	JWTAccessTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"5m"`
	JWTRefreshTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"24h"`

	// MQTT account events, disabled when the broker is empty
	MQTTBroker      string `envconfig:"MQTT_BROKER"`
	MQTTClientID    string `envconfig:"MQTT_CLIENT_ID" default:"go-user-service"`
	MQTTTopicPrefix string `envconfig:"MQTT_TOPIC_PREFIX" default:"users"`

	// Default admin account, created only when explicitly enabled
	CreateAdmin   bool   `envconfig:"CREATE_ADMIN" default:"false"`
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json or console
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would only fail later at startup.
func (c *Config) Validate() error {
	if c.CreateAdmin && len(c.AdminPassword) > models.MaxPasswordBytes {
		return fmt.Errorf("ADMIN_PASSWORD is longer than %d bytes", models.MaxPasswordBytes)
	}
	return nil
}

// AdminSeedEnabled reports whether the default admin should be created.
func (c *Config) AdminSeedEnabled() bool {
	return c.CreateAdmin && c.AdminEmail != "" && c.AdminPassword != "" &&
		len(c.AdminPassword) <= models.MaxPasswordBytes
}
