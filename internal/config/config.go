package config

import (
	"fmt"
	"os"
)

type Config struct {
	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	// Astria (face training + generation)
	AstriaAPIKey  string
	AstriaBaseURL string

	// Replicate (fallback generation + upscaling)
	ReplicateAPIToken      string
	ReplicateBaseURL       string
	ReplicateFallbackModel string
	ReplicateUpscaleModel  string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseStorageBucket  string

	// Webhook
	WebhookCallbackURL string

	// Mail
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	// Admin auth
	AdminJWTSecret string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	cfg := &Config{
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/success"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/pricing"),

		AstriaAPIKey:  getEnv("ASTRIA_API_KEY", ""),
		AstriaBaseURL: getEnv("ASTRIA_API_BASE_URL", "https://api.astria.ai/"),

		ReplicateAPIToken:      getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateBaseURL:       getEnv("REPLICATE_API_BASE_URL", "https://api.replicate.com/v1/"),
		ReplicateFallbackModel: getEnv("REPLICATE_FALLBACK_MODEL", "instant-id"),
		ReplicateUpscaleModel:  getEnv("REPLICATE_UPSCALE_MODEL", "real-esrgan"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "headshots"),

		WebhookCallbackURL: getEnv("WEBHOOK_CALLBACK_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "hello@iheadshot.app"),
		MailFromName: getEnv("MAIL_FROM_NAME", "iHeadshot"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if c.StripeWebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if c.AstriaAPIKey == "" {
		return fmt.Errorf("ASTRIA_API_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
