// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the immutable runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"your_jwt_secret_key_here_change_me",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"WATESA_DB_PATH" envDefault:"./data/watesa.db"`
	ServerHost string `env:"WATESA_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"WATESA_SERVER_PORT" envDefault:"5000"`
	Env        string `env:"WATESA_ENV" envDefault:"development"`
	LogLevel   string `env:"WATESA_LOG_LEVEL" envDefault:"info"`

	// Session tokens
	JWTSecret    string        `env:"JWT_SECRET,required"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"1h"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`

	// Password reset
	ResetTokenTTL    time.Duration `env:"RESET_TOKEN_TTL" envDefault:"10m"`
	FrontendURL      string        `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	StaticAdminEmail string        `env:"STATIC_ADMIN_EMAIL"` // Recipient of every reset email

	// SMTP
	EmailHost        string `env:"EMAIL_HOST"`
	EmailPort        int    `env:"EMAIL_PORT" envDefault:"587"`
	EmailUsername    string `env:"EMAIL_USERNAME"`
	EmailPassword    string `env:"EMAIL_PASSWORD"`
	EmailFromName    string `env:"EMAIL_FROM_NAME" envDefault:"Admin Watesa"`
	EmailFromAddress string `env:"EMAIL_FROM_ADDRESS"`

	// Uploads and image pipeline
	MaxUploadSize        int64         `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"`
	ArticleImageMaxWidth int           `env:"ARTICLE_IMAGE_MAX_WIDTH" envDefault:"800"`
	ArticleImageQuality  int           `env:"ARTICLE_IMAGE_QUALITY" envDefault:"80"`
	ProductImageMaxWidth int           `env:"PRODUCT_IMAGE_MAX_WIDTH" envDefault:"600"`
	ProductImageQuality  int           `env:"PRODUCT_IMAGE_QUALITY" envDefault:"75"`
	ImageCacheMaxAge     time.Duration `env:"IMAGE_CACHE_MAX_AGE" envDefault:"1h"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	CORSAllowedOrigins   []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Cache configuration
	RedisURL     string        `env:"WATESA_REDIS_URL"`                         // Optional Redis URL for the image cache
	CachePrefix  string        `env:"WATESA_CACHE_PREFIX" envDefault:"watesa:"` // Redis key prefix
	CacheTTL     time.Duration `env:"WATESA_CACHE_TTL" envDefault:"1h"`
	CacheMaxSize int           `env:"WATESA_CACHE_MAX_SIZE" envDefault:"256"` // Max memory cache entries

	// Chatbot
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL"`
	ChatbotModel      string `env:"CHATBOT_MODEL" envDefault:"gpt-4o-mini"`
	ChatbotPrompt     string `env:"CHATBOT_SYSTEM_PROMPT"`
	ChatbotMaxHistory int    `env:"CHATBOT_MAX_HISTORY" envDefault:"20"`

	// Seeding configuration
	SeedAdminUsername string `env:"WATESA_SEED_ADMIN_USERNAME" envDefault:"admin"`
	SeedAdminPassword string `env:"WATESA_SEED_ADMIN_PASSWORD"` // Seeding runs only when set
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MailConfigured returns true if an SMTP host is set.
func (c Config) MailConfigured() bool {
	return c.EmailHost != ""
}

// ChatbotEnabled returns true if an upstream model API key is set.
func (c Config) ChatbotEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// SeedEnabled returns true if an initial admin should be seeded at startup.
func (c Config) SeedEnabled() bool {
	return c.SeedAdminUsername != "" && c.SeedAdminPassword != ""
}

// SenderAddress returns the envelope sender, falling back to the SMTP username.
func (c Config) SenderAddress() string {
	if c.EmailFromAddress != "" {
		return c.EmailFromAddress
	}
	return c.EmailUsername
}

// MinJWTSecretLength is the minimum required length for the token signing secret.
// HS256 keys shorter than the hash output weaken the signature.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(c.JWTSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.JWTSecret == weak {
			return errors.New("JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}
	if !hasMinimumEntropy(c.JWTSecret) {
		slog.Warn("JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("server port %d out of range", c.ServerPort)
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWTExpiresIn)
	}
	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive, got %s", c.ResetTokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	if c.ArticleImageMaxWidth <= 0 || c.ProductImageMaxWidth <= 0 {
		return errors.New("image max widths must be positive")
	}
	for name, q := range map[string]int{
		"ARTICLE_IMAGE_QUALITY": c.ArticleImageQuality,
		"PRODUCT_IMAGE_QUALITY": c.ProductImageQuality,
	} {
		if q < 1 || q > 100 {
			return fmt.Errorf("%s must be between 1 and 100, got %d", name, q)
		}
	}
	if c.EmailPort < 1 || c.EmailPort > 65535 {
		return fmt.Errorf("EMAIL_PORT %d out of range", c.EmailPort)
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
