package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Auth      AuthConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MongoConfig holds database connection configuration.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	RetailDB string `mapstructure:"retail_db"`
	ParaDB   string `mapstructure:"para_db"`
	AuthDB   string `mapstructure:"auth_db"`
}

// AuthConfig holds token and Google sign-in configuration.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	GoogleClientID string        `mapstructure:"google_client_id"`
	AdminEmail     string        `mapstructure:"admin_email"`
}

// MailConfig holds SMTP configuration for account emails.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// RateLimitConfig holds per-client rate limiting configuration.
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per second per client IP
	Burst int `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/priceview/")

	v.SetEnvPrefix("PRICEVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Empty defaults register env-only keys with viper so AutomaticEnv
	// picks them up during Unmarshal.
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.retail_db", "Retails")
	v.SetDefault("mongo.para_db", "PARA")
	v.SetDefault("mongo.auth_db", "Users")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "30m")
	v.SetDefault("auth.google_client_id", "")
	v.SetDefault("auth.admin_email", "")

	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.from_name", "Priceview")

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)
}

// validate validates the configuration.
func validate(config *Config) error {
	if config.Mongo.URI == "" {
		return fmt.Errorf("MongoDB URI is required (set PRICEVIEW_MONGO_URI)")
	}
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set PRICEVIEW_AUTH_JWT_SECRET)")
	}
	if config.RateLimit.PerIP <= 0 || config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive, got per_ip=%d burst=%d",
			config.RateLimit.PerIP, config.RateLimit.Burst)
	}
	return nil
}
