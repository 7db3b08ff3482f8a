package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// WhatsApp Cloud API (inbound webhook + outbound replies)
	WhatsAppVerifyToken   string
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppGraphBaseURL  string

	// LLM (conversational reply + dedicated extraction)
	GeminiAPIKey    string
	GeminiModelID   string
	ChatTemperature float64
	ChatMaxTokens   int

	// Magicline booking provider
	MagiclineBaseURL       string
	MagiclineAPIKey        string
	MagiclineStudioID      int64
	MagiclineBookableID    int64
	MagiclineTrialConfigID int64
	MagiclineTimeout       time.Duration

	// Booking behavior
	SlotDurationMinutes int
	StudioTimezone      string

	// Redis (profile + conversation history)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	HistoryLimit int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppGraphBaseURL:  getEnv("WHATSAPP_GRAPH_BASE_URL", "https://graph.facebook.com/v21.0"),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:   getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		ChatTemperature: getEnvAsFloat("CHAT_TEMPERATURE", 0.8),
		ChatMaxTokens:   getEnvAsInt("CHAT_MAX_TOKENS", 300),

		MagiclineBaseURL:       getEnv("MAGICLINE_BASE_URL", "https://open-api.magicline.com/v1"),
		MagiclineAPIKey:        getEnv("MAGICLINE_API_KEY", ""),
		MagiclineStudioID:      getEnvAsInt64("MAGICLINE_STUDIO_ID", 0),
		MagiclineBookableID:    getEnvAsInt64("MAGICLINE_BOOKABLE_ID", 0),
		MagiclineTrialConfigID: getEnvAsInt64("MAGICLINE_TRIAL_OFFER_CONFIG_ID", 0),
		MagiclineTimeout:       getEnvAsDuration("MAGICLINE_TIMEOUT", 10*time.Second),

		SlotDurationMinutes: getEnvAsInt("SLOT_DURATION_MINUTES", 30),
		StudioTimezone:      getEnv("STUDIO_TIMEZONE", "Europe/Berlin"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 12),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
