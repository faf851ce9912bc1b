package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Hosted table store (Collaborator A)
	StoreURL string
	StoreKey string

	// Workflow webhooks (Collaborators B-E)
	AnalysisWebhookURL       string
	PromptGenWebhookURL      string
	RecommendationWebhookURL string
	ChatWebhookURL           string
	WebhookAuthSecret        string

	// Scan dispatch
	ScanConcurrency int

	// Auto-scan scheduling
	EnableAutoScan bool
	TimeZone       string

	// Report delivery
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Azure Storage report archive (optional)
	StorageAccount   string
	StorageContainer string

	// Supported LLM providers
	Providers []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		StoreURL: getEnv("SUPABASE_URL", ""),
		StoreKey: getEnv("SUPABASE_KEY", ""),

		AnalysisWebhookURL:       getEnv("ANALYSIS_WEBHOOK_URL", ""),
		PromptGenWebhookURL:      getEnv("PROMPT_GEN_WEBHOOK_URL", ""),
		RecommendationWebhookURL: getEnv("RECOMMENDATION_WEBHOOK_URL", ""),
		ChatWebhookURL:           getEnv("CHAT_WEBHOOK_URL", ""),
		WebhookAuthSecret:        getEnv("WEBHOOK_AUTH_SECRET", ""),

		ScanConcurrency: getIntEnv("SCAN_CONCURRENCY", 3),

		EnableAutoScan: getBoolEnv("ENABLE_AUTO_SCAN", true),
		TimeZone:       getEnv("TIMEZONE", "UTC"),

		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "reports"),

		Providers: getSliceEnv("LLM_PROVIDERS", []string{
			"gpt-4o",
			"gemini-1.5-pro",
			"perplexity",
		}),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.StoreURL == "" || c.StoreKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required")
	}

	if c.AnalysisWebhookURL == "" {
		return fmt.Errorf("ANALYSIS_WEBHOOK_URL is required")
	}

	if c.ScanConcurrency < 1 {
		return fmt.Errorf("SCAN_CONCURRENCY must be at least 1")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
